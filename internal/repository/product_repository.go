package repository

import (
	"catalogadmin/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 商品の永続化（保存・取得・削除）だけを約束。
type ProductRepository interface {
	//全商品をバリアント付きでID順に返す
	ListAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	//商品の項目を上書きし、バリアントを丸ごと入れ替える
	Update(ctx context.Context, p model.Product) (model.Product, error)
	//商品とバリアントを完全に削除する
	Delete(ctx context.Context, id int64) error
}
