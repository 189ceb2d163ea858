package repository

import (
	"context"

	"catalogadmin/internal/domain/model"
)

// 監査ログの検索条件。nilと空文字は条件なし。
type AuditLogFilter struct {
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	RequestID    string // X-Request-IDで1リクエスト分を引く
	Limit        int
	Offset       int
}

// 商品操作の監査ログ
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
