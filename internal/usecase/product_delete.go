package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"catalogadmin/internal/domain/model"

	"go.uber.org/zap"
)

const (
	deleteSucceededTitle   = "Success"
	deleteSucceededMessage = "Product has been permanently deleted"
	deleteFailedTitle      = "Something went wrong"
	deleteFailedMessage    = "Failed to delete product"
)

type DeleteStatus string

const (
	DeleteStatusDeleted   DeleteStatus = "deleted"
	DeleteStatusFailed    DeleteStatus = "failed"
	DeleteStatusCancelled DeleteStatus = "cancelled"
)

type DeleteResult struct {
	Status       DeleteStatus        `json:"status"`
	Notification *model.Notification `json:"notification,omitempty"`
}

// 確認済みの削除を実行する。
//
// 同じ商品の削除は同時に1つだけ。削除の失敗は通知に変えて返し、errorにはしない。
// errorになるのは入力不正・削除中・トラッカー障害のときだけ。
func (u *ProductUsecase) DeleteProduct(ctx context.Context, productID int64, confirmed bool) (DeleteResult, error) {
	if productID <= 0 {
		return DeleteResult{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	//確認ダイアログでキャンセルされた
	if !confirmed {
		return DeleteResult{Status: DeleteStatusCancelled}, nil
	}

	release, acquired, err := u.tracker.TryAcquire(ctx, productID)
	if err != nil {
		u.log.Error("failed to mark product as deleting", zap.Int64("product_id", productID), zap.Error(err))
		return DeleteResult{}, NewHTTPError(http.StatusInternalServerError, "tracker error")
	}
	if !acquired {
		return DeleteResult{}, NewHTTPError(http.StatusConflict, "delete already in progress")
	}
	defer release()

	//リクエストが切れても削除は最後まで待つ
	ctx = context.WithoutCancel(ctx)

	before := u.snapshotJSON(productID)
	if err := u.callDelete(ctx, productID); err != nil {
		u.log.Error("error deleting product", zap.Int64("product_id", productID), zap.Error(err))
		n := u.notify(ctx, model.NotificationError, deleteFailedTitle, deleteFailedMessage, productID)
		return DeleteResult{Status: DeleteStatusFailed, Notification: &n}, nil
	}

	u.recordAudit(ctx, model.AuditActionDeleteProduct, productID, before, nil)

	n := u.notify(ctx, model.NotificationSuccess, deleteSucceededTitle, deleteSucceededMessage, productID)

	if err := u.source.Refetch(ctx); err != nil {
		u.log.Warn("failed to refetch products after delete", zap.Int64("product_id", productID), zap.Error(err))
	}

	return DeleteResult{Status: DeleteStatusDeleted, Notification: &n}, nil
}

// 削除サービスのpanicも削除失敗として扱う
func (u *ProductUsecase) callDelete(ctx context.Context, productID int64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("delete panicked: %v", r)
		}
	}()
	return u.productRepo.Delete(ctx, productID)
}

// 削除前の商品（監査ログ用）
func (u *ProductUsecase) snapshotJSON(productID int64) string {
	for _, p := range u.source.Products() {
		if p.ID != productID {
			continue
		}
		b, err := json.Marshal(p)
		if err != nil {
			return ""
		}
		return string(b)
	}
	return ""
}

func (u *ProductUsecase) notify(ctx context.Context, kind model.NotificationKind, title, message string, productID int64) model.Notification {
	n := model.Notification{
		ID:        u.idGen.NewID(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		ProductID: productID,
		CreatedAt: u.clock.Now(),
	}
	u.notifier.Notify(ctx, n)
	return n
}
