package repository

import "context"

// 削除リクエスト中の商品IDの集合。
// 同じ商品への削除が同時に2つ走らないようにする。
type DeletionTracker interface {
	//Idle→Pending。すでにPendingならacquired=false。
	//releaseは何回呼んでもよい。
	TryAcquire(ctx context.Context, productID int64) (release func(), acquired bool, err error)

	IsPending(ctx context.Context, productID int64) (bool, error)

	//Pending中のIDを昇順で返す
	Pending(ctx context.Context) ([]int64, error)
}
