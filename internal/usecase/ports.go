package usecase

import (
	"context"
	"time"

	"catalogadmin/internal/domain/model"
)

// 一覧の元データ（スナップショット）
type ProductDataSource interface {
	Products() []model.Product
	Loading() bool
	Refetch(ctx context.Context) error
}

// トースト通知の送り先。送りっぱなし。
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

// 商品登録の入力チェック
type ProductValidator interface {
	ValidateCreate(ctx context.Context, in AdminCreateProductInput) error
}

type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}
