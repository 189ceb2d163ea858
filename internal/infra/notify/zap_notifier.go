package notify

import (
	"context"

	"catalogadmin/internal/domain/model"

	"go.uber.org/zap"
)

// 通知をログに流す。送りっぱなしで失敗しない。
type ZapNotifier struct {
	log *zap.Logger
}

func NewZapNotifier(log *zap.Logger) *ZapNotifier {
	return &ZapNotifier{log: log.Named("notify")}
}

func (n *ZapNotifier) Notify(_ context.Context, nt model.Notification) {
	fields := []zap.Field{
		zap.String("notification_id", nt.ID),
		zap.String("kind", string(nt.Kind)),
		zap.String("title", nt.Title),
		zap.String("message", nt.Message),
	}
	if nt.ProductID != 0 {
		fields = append(fields, zap.Int64("product_id", nt.ProductID))
	}

	if nt.Kind == model.NotificationError {
		n.log.Warn("notification", fields...)
		return
	}
	n.log.Info("notification", fields...)
}
