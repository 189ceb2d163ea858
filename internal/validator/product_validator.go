package validator

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"catalogadmin/internal/domain/catalog"
	"catalogadmin/internal/usecase"
)

var (
	ErrNameRequired       = errors.New("name required")
	ErrNameTooLong        = errors.New("name too long")
	ErrInvalidPrice       = errors.New("price must be >= 0")
	ErrInvalidStock       = errors.New("stock must be >= 0")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrInvalidImageURL    = errors.New("invalid image_url")
	ErrVariantNameMissing = errors.New("variant name required")
)

const maxNameLength = 255

type productValidator struct {
	categories catalog.CategoryRegistry
}

// Usecaseは interface を依存注入
func NewProductValidator(categories catalog.CategoryRegistry) usecase.ProductValidator {
	return &productValidator{categories: categories}
}

// 商品登録の入力を検証
func (v *productValidator) ValidateCreate(ctx context.Context, in usecase.AdminCreateProductInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ErrNameRequired
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	if in.Price < 0 {
		return ErrInvalidPrice
	}
	if in.Stock < 0 {
		return ErrInvalidStock
	}

	//カテゴリは登録済みのものだけ
	if !catalog.IsKnownCategory(v.categories, in.Category) {
		return ErrUnknownCategory
	}

	if in.ImageURL != nil && *in.ImageURL != "" && !isImageURL(*in.ImageURL) {
		return ErrInvalidImageURL
	}

	for _, name := range in.Variants {
		if strings.TrimSpace(name) == "" {
			return ErrVariantNameMissing
		}
	}
	return nil
}

// http(s)の絶対URLか、/から始まるパス
func isImageURL(s string) bool {
	if strings.HasPrefix(s, "/") {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
