package model

import "time"

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// 管理画面に出すトースト通知。
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	ProductID int64            `json:"product_id,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
