package model

import (
	"time"
)

// 画像が無い商品に使う画像
const PlaceholderImageURL = "/placeholder.svg"

// 在庫バッジの区分
type StockLevel string

const (
	StockLevelHigh StockLevel = "high" // 10個より多い
	StockLevelLow  StockLevel = "low"  // 1〜10個
	StockLevelOut  StockLevel = "out"  // 在庫なし
)

type Product struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string           `gorm:"type:varchar(255);not null" json:"name"`
	Description *string          `gorm:"type:text" json:"description,omitempty"`
	Price       int64            `gorm:"not null" json:"price"`
	Category    string           `gorm:"type:varchar(100);not null;index" json:"category"`
	Stock       int64            `gorm:"not null" json:"stock"`
	ImageURL    *string          `gorm:"type:text" json:"image_url,omitempty"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants"`
	CreatedAt   time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// サイズ・色などの選択肢。価格と在庫は商品側で持つ。
type ProductVariant struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	Position  int    `gorm:"not null;default:0" json:"position"`
}

// 画像URL（未設定ならプレースホルダー）
func (p Product) DisplayImageURL() string {
	if p.ImageURL == nil || *p.ImageURL == "" {
		return PlaceholderImageURL
	}
	return *p.ImageURL
}

func (p Product) StockLevel() StockLevel {
	switch {
	case p.Stock > 10:
		return StockLevelHigh
	case p.Stock > 0:
		return StockLevelLow
	default:
		return StockLevelOut
	}
}
