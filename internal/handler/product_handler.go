package handler

import (
	"net/http"
	"strconv"
	"time"

	"catalogadmin/internal/domain/model"
	"catalogadmin/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 商品詳細ページ用
type ProductDetailResponse struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Price       int64            `json:"price"`
	Category    string           `json:"category"`
	Stock       int64            `json:"stock"`
	StockLevel  model.StockLevel `json:"stock_level"`
	ImageURL    string           `json:"image_url"`
	Variants    []string         `json:"variants"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toProductDetail(p model.Product) ProductDetailResponse {
	variants := make([]string, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, v.Name)
	}
	return ProductDetailResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Stock:       p.Stock,
		StockLevel:  p.StockLevel(),
		ImageURL:    p.DisplayImageURL(),
		Variants:    variants,
		UpdatedAt:   p.UpdatedAt,
	}
}

// 一覧の「見る」リンク先
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/products/:id", h.detail)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, toProductDetail(p))
}
