package handler

import (
	"net/http"
	"strconv"

	"catalogadmin/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ProductCreateRequest は商品登録の入力です。
type ProductCreateRequest struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Price       int64    `json:"price"`
	Category    string   `json:"category"`
	Stock       int64    `json:"stock"`
	ImageURL    *string  `json:"image_url"`
	Variants    []string `json:"variants"`
}

func (r ProductCreateRequest) toInput() usecase.AdminCreateProductInput {
	return usecase.AdminCreateProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		Variants:    r.Variants,
	}
}

// 削除中の商品ID
type DeletingResponse struct {
	ProductIDs []int64 `json:"product_ids"`
}

// /admin/products と /admin/categories をまとめる
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo) {
	admin := e.Group("/admin")

	admin.GET("/products", h.listProducts)
	admin.POST("/products", h.createProduct)
	admin.GET("/products/deleting", h.deletingProducts)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.GET("/categories", h.listCategories)
	admin.GET("/audit-logs", h.listAuditLogs)
}

func (h *AdminProductHandler) listProducts(c echo.Context) error {
	out, err := h.uc.ListAdminProducts(c.Request().Context(), usecase.ListAdminProductsInput{
		Q:        c.QueryParam("q"),
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

// 編集画面からの保存
func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), id, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

// confirm=trueのときだけ削除する（確認ダイアログの「削除」）
func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid id")
	}

	confirmed := false
	if v := c.QueryParam("confirm"); v != "" {
		confirmed, err = strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "invalid confirm")
		}
	}

	res, err := h.uc.DeleteProduct(c.Request().Context(), id, confirmed)
	if err != nil {
		return writeError(c, err)
	}

	//失敗も通知つきで返す
	if res.Status == usecase.DeleteStatusFailed {
		return c.JSON(http.StatusInternalServerError, res)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AdminProductHandler) deletingProducts(c echo.Context) error {
	ids, err := h.uc.PendingDeletes(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, DeletingResponse{ProductIDs: ids})
}

func (h *AdminProductHandler) listCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.CategoryOptions())
}

func (h *AdminProductHandler) listAuditLogs(c echo.Context) error {
	in := usecase.ListAuditLogsInput{RequestID: c.QueryParam("request_id")}

	if v := c.QueryParam("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid resource_id")
		}
		in.ResourceID = &id
	}
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid limit")
		}
		in.Limit = l
	}
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "invalid offset")
		}
		in.Offset = o
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, logs)
}
