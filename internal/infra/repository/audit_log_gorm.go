package repository

import (
	"context"

	"catalogadmin/internal/domain/model"
	repo "catalogadmin/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type auditLogGormRepository struct {
	db *gorm.DB
}

// DI
func NewAuditLogGormRepository(db *gorm.DB) repo.AuditLogRepository {
	return &auditLogGormRepository{db: db}
}

func (r *auditLogGormRepository) Create(ctx context.Context, log model.AuditLog) error {
	return r.db.WithContext(ctx).Create(&log).Error
}

func (r *auditLogGormRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	logs := []model.AuditLog{}
	err := r.db.WithContext(ctx).
		Scopes(auditConditions(filter), auditPage(filter.Limit, filter.Offset)).
		Order("created_at desc").
		Order("id desc").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func auditConditions(f repo.AuditLogFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if f.Action != nil {
			tx = tx.Where("action = ?", *f.Action)
		}
		if f.ResourceType != nil {
			tx = tx.Where("resource_type = ?", *f.ResourceType)
		}
		if f.ResourceID != nil {
			tx = tx.Where("resource_id = ?", *f.ResourceID)
		}
		if f.RequestID != "" {
			tx = tx.Where("request_id = ?", f.RequestID)
		}
		return tx
	}
}

// limitは1〜200に丸める
func auditPage(limit, offset int) func(*gorm.DB) *gorm.DB {
	if limit <= 0 || limit > maxAuditLimit {
		limit = defaultAuditLimit
	}
	if offset < 0 {
		offset = 0
	}
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Limit(limit).Offset(offset)
	}
}
