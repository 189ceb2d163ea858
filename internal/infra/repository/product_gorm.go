package repository

import (
	"context"
	"errors"
	"time"

	"catalogadmin/internal/domain/model"
	repo "catalogadmin/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// バリアントは登録順
func orderedVariants(tx *gorm.DB) *gorm.DB {
	return tx.Order("position asc").Order("id asc")
}

// 全商品をバリアント付きで返す（絞り込みはアプリ側で行う）
func (r *ProductGormRepository) ListAll(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", orderedVariants).
		Order("id asc").
		Find(&products).Error
	if err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Variants", orderedVariants).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の作成（バリアントも一緒に保存される）
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	for i := range p.Variants {
		p.Variants[i].Position = i
	}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の更新（バリアントは同じトランザクションで入れ替え）
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) (model.Product, error) {
	var updated model.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price,
			"category":    p.Category,
			"stock":       p.Stock,
			"image_url":   p.ImageURL,
			"updated_at":  time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}

		if err := tx.Where("product_id = ?", p.ID).Delete(&model.ProductVariant{}).Error; err != nil {
			return err
		}
		if len(p.Variants) > 0 {
			variants := make([]model.ProductVariant, 0, len(p.Variants))
			for i, v := range p.Variants {
				variants = append(variants, model.ProductVariant{ProductID: p.ID, Name: v.Name, Position: i})
			}
			if err := tx.Create(&variants).Error; err != nil {
				return err
			}
		}

		return tx.Preload("Variants", orderedVariants).First(&updated, p.ID).Error
	})
	if err != nil {
		return model.Product{}, err
	}
	return updated, nil
}

// 商品の完全削除
func (r *ProductGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//バリアントを先に消す
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductVariant{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}
