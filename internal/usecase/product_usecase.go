package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"catalogadmin/internal/domain/catalog"
	"catalogadmin/internal/domain/model"
	repo "catalogadmin/internal/repository"
	"catalogadmin/internal/requestid"

	"go.uber.org/zap"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

const (
	EmptyMessageNoProducts = "No products have been added yet"
	EmptyMessageNoMatch    = "No products found"

	allCategoriesLabel = "All categories"
	variantPreviewSize = 3
	maxQueryLength     = 100
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	source      ProductDataSource
	tracker     repo.DeletionTracker
	auditRepo   repo.AuditLogRepository
	categories  catalog.CategoryRegistry
	validator   ProductValidator
	notifier    Notifier
	idGen       IDGenerator
	clock       Clock
	log         *zap.Logger
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	source ProductDataSource,
	tracker repo.DeletionTracker,
	auditRepo repo.AuditLogRepository,
	categories catalog.CategoryRegistry,
	validator ProductValidator,
	notifier Notifier,
	idGen IDGenerator,
	clock Clock,
	log *zap.Logger,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		source:      source,
		tracker:     tracker,
		auditRepo:   auditRepo,
		categories:  categories,
		validator:   validator,
		notifier:    notifier,
		idGen:       idGen,
		clock:       clock,
		log:         log.Named("product"),
	}
}

// GET /admin/productsの入力DTO
type ListAdminProductsInput struct {
	Q        string
	Category string
}

type CategoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

// 一覧の1行分
type AdminProductListItem struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Price          int64            `json:"price"`
	Category       string           `json:"category"`
	CategoryIcon   string           `json:"category_icon"`
	Stock          int64            `json:"stock"`
	StockLevel     model.StockLevel `json:"stock_level"`
	ImageURL       string           `json:"image_url"`
	VariantCount   int              `json:"variant_count"`
	VariantPreview []string         `json:"variant_preview"`
	MoreVariants   int              `json:"more_variants"`
	Deleting       bool             `json:"deleting"`
	ViewPath       string           `json:"view_path"`
	EditPath       string           `json:"edit_path"`
}

type AdminProductListView struct {
	Loading      bool                   `json:"loading"`
	Items        []AdminProductListItem `json:"items"`
	Total        int                    `json:"total"`
	EmptyMessage string                 `json:"empty_message,omitempty"`
	Categories   []CategoryOption       `json:"categories"`
}

// 管理画面の商品一覧。スナップショットをアプリ側で絞り込む。
func (u *ProductUsecase) ListAdminProducts(ctx context.Context, in ListAdminProductsInput) (AdminProductListView, error) {
	//バイト数ではなく文字数
	if utf8.RuneCountInString(in.Q) > maxQueryLength {
		return AdminProductListView{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	criteria := catalog.Criteria{Term: in.Q, Category: in.Category}
	if !criteria.AnyCategory() && !catalog.IsKnownCategory(u.categories, in.Category) {
		return AdminProductListView{}, NewHTTPError(http.StatusBadRequest, "invalid category")
	}

	view := AdminProductListView{
		Items:      []AdminProductListItem{},
		Categories: u.CategoryOptions(),
	}
	if u.source.Loading() {
		view.Loading = true
		return view, nil
	}

	all := u.source.Products()
	filtered := catalog.Filter(all, criteria)

	deleting := u.pendingSet(ctx)
	for _, p := range filtered {
		view.Items = append(view.Items, u.toListItem(p, deleting[p.ID]))
	}
	view.Total = len(view.Items)

	//0件の理由で文言を分ける
	if view.Total == 0 {
		if len(all) == 0 {
			view.EmptyMessage = EmptyMessageNoProducts
		} else {
			view.EmptyMessage = EmptyMessageNoMatch
		}
	}
	return view, nil
}

// 削除中の商品ID。取れなければ全部Idle扱い。
func (u *ProductUsecase) pendingSet(ctx context.Context) map[int64]bool {
	ids, err := u.tracker.Pending(ctx)
	if err != nil {
		u.log.Warn("failed to read pending deletes", zap.Error(err))
		return map[int64]bool{}
	}
	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func (u *ProductUsecase) toListItem(p model.Product, deleting bool) AdminProductListItem {
	preview := []string{}
	for i, v := range p.Variants {
		if i >= variantPreviewSize {
			break
		}
		preview = append(preview, v.Name)
	}

	more := 0
	if len(p.Variants) > variantPreviewSize {
		more = len(p.Variants) - variantPreviewSize
	}

	id := strconv.FormatInt(p.ID, 10)
	return AdminProductListItem{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price,
		Category:       p.Category,
		CategoryIcon:   u.categories.IconFor(p.Category),
		Stock:          p.Stock,
		StockLevel:     p.StockLevel(),
		ImageURL:       p.DisplayImageURL(),
		VariantCount:   len(p.Variants),
		VariantPreview: preview,
		MoreVariants:   more,
		Deleting:       deleting,
		ViewPath:       "/products/" + id,
		EditPath:       "/admin/edit-product/" + id,
	}
}

// カテゴリ選択肢（先頭は絞り込みなし）
func (u *ProductUsecase) CategoryOptions() []CategoryOption {
	names := u.categories.ListCategories()
	out := make([]CategoryOption, 0, len(names)+1)
	out = append(out, CategoryOption{Value: catalog.AllCategories, Label: allCategoriesLabel})
	for _, c := range names {
		out = append(out, CategoryOption{Value: c, Label: c, Icon: u.categories.IconFor(c)})
	}
	return out
}

// 削除中の商品ID一覧
func (u *ProductUsecase) PendingDeletes(ctx context.Context) ([]int64, error) {
	ids, err := u.tracker.Pending(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "tracker error")
	}
	return ids, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

type AdminCreateProductInput struct {
	Name        string
	Description *string
	Price       int64
	Category    string
	Stock       int64
	ImageURL    *string
	Variants    []string
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, in AdminCreateProductInput) (model.Product, error) {
	if err := u.validator.ValidateCreate(ctx, in); err != nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	created, err := u.productRepo.Create(ctx, buildProduct(in))
	if err != nil {
		u.log.Error("failed to create product", zap.Error(err))
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.recordAudit(ctx, model.AuditActionCreateProduct, created.ID, "", created)

	if err := u.source.Refetch(ctx); err != nil {
		u.log.Warn("failed to refetch products after create", zap.Error(err))
	}
	return created, nil
}

// 編集画面（/admin/edit-product/{id}）からの更新
func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, productID int64, in AdminCreateProductInput) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := u.validator.ValidateCreate(ctx, in); err != nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	//削除中の商品は触らない
	pending, err := u.tracker.IsPending(ctx, productID)
	if err != nil {
		u.log.Warn("failed to read pending delete", zap.Int64("product_id", productID), zap.Error(err))
	}
	if pending {
		return model.Product{}, NewHTTPError(http.StatusConflict, "delete in progress")
	}

	before, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p := buildProduct(in)
	p.ID = productID
	updated, err := u.productRepo.Update(ctx, p)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		u.log.Error("failed to update product", zap.Int64("product_id", productID), zap.Error(err))
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	beforeJSON := ""
	if b, err := json.Marshal(before); err == nil {
		beforeJSON = string(b)
	}
	u.recordAudit(ctx, model.AuditActionUpdateProduct, productID, beforeJSON, updated)

	if err := u.source.Refetch(ctx); err != nil {
		u.log.Warn("failed to refetch products after update", zap.Error(err))
	}
	return updated, nil
}

// 入力からProductを組み立てる（IDは呼び出し側）
func buildProduct(in AdminCreateProductInput) model.Product {
	p := model.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
		Variants:    make([]model.ProductVariant, 0, len(in.Variants)),
	}
	for i, name := range in.Variants {
		p.Variants = append(p.Variants, model.ProductVariant{Name: strings.TrimSpace(name), Position: i})
	}
	return p
}

type ListAuditLogsInput struct {
	ResourceID *int64
	RequestID  string
	Limit      int
	Offset     int
}

// 商品に対する監査ログ
func (u *ProductUsecase) ListAuditLogs(ctx context.Context, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if in.ResourceID != nil && *in.ResourceID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid resource_id")
	}
	if in.Limit < 0 || in.Limit > 200 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	rt := model.AuditResourceProduct
	logs, err := u.auditRepo.List(ctx, repo.AuditLogFilter{
		ResourceType: &rt,
		ResourceID:   in.ResourceID,
		RequestID:    in.RequestID,
		Limit:        in.Limit,
		Offset:       in.Offset,
	})
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}

// 監査ログを残す。失敗しても操作自体は成功扱い。
func (u *ProductUsecase) recordAudit(ctx context.Context, action model.AuditAction, productID int64, beforeJSON string, after any) {
	afterJSON := ""
	if after != nil {
		b, err := json.Marshal(after)
		if err == nil {
			afterJSON = string(b)
		}
	}

	err := u.auditRepo.Create(ctx, model.AuditLog{
		RequestID:    requestid.From(ctx),
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    u.clock.Now(),
	})
	if err != nil {
		u.log.Warn("failed to write audit log",
			zap.String("action", string(action)),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
	}
}
