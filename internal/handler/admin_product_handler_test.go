package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"catalogadmin/internal/domain/catalog"
	"catalogadmin/internal/domain/model"
	infraRepo "catalogadmin/internal/infra/repository"
	repo "catalogadmin/internal/repository"
	"catalogadmin/internal/usecase"
	"catalogadmin/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =====================
// テスト用のインメモリ実装
// =====================

type fakeProductRepo struct {
	mu        sync.Mutex
	products  []model.Product
	nextID    int64
	deleteErr error
}

func (r *fakeProductRepo) ListAll(ctx context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id int64) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

func (r *fakeProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	r.products = append(r.products, p)
	return p, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p model.Product) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.products {
		if r.products[i].ID == p.ID {
			p.CreatedAt = r.products[i].CreatedAt
			r.products[i] = p
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

func (r *fakeProductRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []model.AuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, log model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AuditLog
	for _, l := range r.logs {
		if filter.ResourceID != nil && l.ResourceID != *filter.ResourceID {
			continue
		}
		if filter.RequestID != "" && l.RequestID != filter.RequestID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, model.Notification) {}

type seqIDGen struct{}

func (seqIDGen) NewID() string { return "notification-id" }

type testEnv struct {
	e       *echo.Echo
	repo    *fakeProductRepo
	tracker repo.DeletionTracker
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	desc := "cotton"
	r := &fakeProductRepo{
		products: []model.Product{
			{ID: 1, Name: "Red Shirt", Category: "Fashion", Description: &desc, Price: 1200, Stock: 20},
			{ID: 2, Name: "Blue Hat", Category: "Fashion", Price: 800, Stock: 3},
		},
		nextID: 2,
	}
	source := usecase.NewProductSource(r)
	require.NoError(t, source.Refetch(context.Background()))

	categories := catalog.DefaultCategoryRegistry()
	tracker := infraRepo.NewMemoryDeletionTracker()
	uc := usecase.NewProductUsecase(
		r, source, tracker, &fakeAuditRepo{}, categories, validator.NewProductValidator(categories),
		nopNotifier{}, seqIDGen{}, realClockForTest{}, zap.NewNop(),
	)

	e := echo.New()
	NewAdminProductHandler(uc).RegisterRoutes(e)
	NewProductHandler(uc).RegisterRoutes(e)

	return &testEnv{e: e, repo: r, tracker: tracker}
}

func (env *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body=%s", rec.Body.String())
	return v
}

// =====================
// 一覧
// =====================

func TestAdminProducts_List(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/admin/products?q=red&category=all", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[usecase.AdminProductListView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Red Shirt", view.Items[0].Name)
	assert.Equal(t, "/placeholder.svg", view.Items[0].ImageURL)
	assert.Equal(t, "all", view.Categories[0].Value)
}

func TestAdminProducts_List_NoMatch(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/admin/products?q=shoe", "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[usecase.AdminProductListView](t, rec)
	assert.Empty(t, view.Items)
	assert.Equal(t, usecase.EmptyMessageNoMatch, view.EmptyMessage)
}

func TestAdminProducts_List_InvalidCategory(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/admin/products?category=Shoes", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"invalid category"}`, rec.Body.String())
}

// =====================
// 削除
// =====================

func TestAdminProducts_Delete_RequiresConfirm(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/admin/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"cancelled"}`, rec.Body.String())

	_, err := env.repo.FindByID(context.Background(), 1)
	assert.NoError(t, err)
}

func TestAdminProducts_Delete_Success(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/admin/products/1?confirm=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[usecase.DeleteResult](t, rec)
	assert.Equal(t, usecase.DeleteStatusDeleted, res.Status)
	require.NotNil(t, res.Notification)
	assert.Equal(t, model.NotificationSuccess, res.Notification.Kind)

	//一覧から消えている（Refetch済み）
	rec = env.do(t, http.MethodGet, "/admin/products", "")
	view := decode[usecase.AdminProductListView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(2), view.Items[0].ID)

	//監査ログが残る
	rec = env.do(t, http.MethodGet, "/admin/audit-logs?resource_id=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[[]model.AuditLog](t, rec)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionDeleteProduct, logs[0].Action)
}

func TestAdminProducts_Delete_Failure(t *testing.T) {
	env := newTestEnv(t)
	env.repo.deleteErr = errors.New("connection refused")

	rec := env.do(t, http.MethodDelete, "/admin/products/2?confirm=true", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	res := decode[usecase.DeleteResult](t, rec)
	assert.Equal(t, usecase.DeleteStatusFailed, res.Status)
	require.NotNil(t, res.Notification)
	assert.Equal(t, model.NotificationError, res.Notification.Kind)
	assert.Equal(t, "Failed to delete product", res.Notification.Message)

	rec = env.do(t, http.MethodGet, "/admin/products", "")
	view := decode[usecase.AdminProductListView](t, rec)
	assert.Len(t, view.Items, 2)
}

func TestAdminProducts_Delete_InProgress(t *testing.T) {
	env := newTestEnv(t)

	release, ok, err := env.tracker.TryAcquire(context.Background(), 1)
	require.NoError(t, err)
	require.True(t, ok)
	defer release()

	rec := env.do(t, http.MethodDelete, "/admin/products/1?confirm=true", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/products/deleting", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"product_ids":[1]}`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/admin/products", "")
	view := decode[usecase.AdminProductListView](t, rec)
	assert.True(t, view.Items[0].Deleting)
	assert.False(t, view.Items[1].Deleting)
}

func TestAdminProducts_Delete_BadInput(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, "/admin/products/abc?confirm=true", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, "/admin/products/1?confirm=yes-please", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, "/admin/products/0?confirm=true", "").Code)
}

// =====================
// 登録・詳細・カテゴリ
// =====================

func TestAdminProducts_Create(t *testing.T) {
	env := newTestEnv(t)

	body := `{"name":"Ramen","price":500,"category":"Food","stock":40,"variants":["Shoyu","Miso"]}`
	rec := env.do(t, http.MethodPost, "/admin/products", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	p := decode[model.Product](t, rec)
	assert.Equal(t, int64(3), p.ID)
	require.Len(t, p.Variants, 2)
	assert.Equal(t, "Shoyu", p.Variants[0].Name)

	rec = env.do(t, http.MethodGet, "/admin/products?category=Food", "")
	view := decode[usecase.AdminProductListView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, []string{"Shoyu", "Miso"}, view.Items[0].VariantPreview)
}

func TestAdminProducts_Create_Invalid(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/admin/products", `{"name":"x","price":1,"category":"Nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"unknown category"}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/admin/products", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminProducts_Update(t *testing.T) {
	env := newTestEnv(t)

	body := `{"name":"Red Shirt","price":1400,"category":"Fashion","stock":0,"variants":["S","M","L","XL"]}`
	rec := env.do(t, http.MethodPut, "/admin/products/1", body)
	require.Equal(t, http.StatusOK, rec.Code)

	//一覧に反映されている
	rec = env.do(t, http.MethodGet, "/admin/products?q=red", "")
	view := decode[usecase.AdminProductListView](t, rec)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(1400), view.Items[0].Price)
	assert.Equal(t, model.StockLevelOut, view.Items[0].StockLevel)
	assert.Equal(t, []string{"S", "M", "L"}, view.Items[0].VariantPreview)
	assert.Equal(t, 1, view.Items[0].MoreVariants)
	assert.Equal(t, "/admin/edit-product/1", view.Items[0].EditPath)

	rec = env.do(t, http.MethodGet, "/admin/audit-logs?resource_id=1", "")
	logs := decode[[]model.AuditLog](t, rec)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionUpdateProduct, logs[0].Action)
}

func TestAdminProducts_Update_Errors(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/admin/products/99", `{"name":"x","price":1,"category":"Food"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPut, "/admin/products/1", `{"name":"","price":1,"category":"Food"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"name required"}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/admin/products/abc", `{"name":"x","price":1,"category":"Food"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProducts_Detail(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/products/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[ProductDetailResponse](t, rec)
	assert.Equal(t, "Blue Hat", detail.Name)
	assert.Equal(t, model.StockLevelLow, detail.StockLevel)
	assert.Equal(t, model.PlaceholderImageURL, detail.ImageURL)
	assert.Empty(t, detail.Variants)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/products/99", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/products/x", "").Code)
}

func TestAdminCategories(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/admin/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	opts := decode[[]usecase.CategoryOption](t, rec)
	require.Len(t, opts, 9)
	assert.Equal(t, "all", opts[0].Value)
	assert.Equal(t, "Fashion", opts[1].Value)
}

type realClockForTest struct{}

func (realClockForTest) Now() time.Time { return time.Now() }

func TestWriteError(t *testing.T) {
	e := echo.New()

	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"usecase error", usecase.NewHTTPError(http.StatusConflict, "delete already in progress"), http.StatusConflict, `{"error":"delete already in progress"}`},
		{"echo 4xx", echo.NewHTTPError(http.StatusUnsupportedMediaType), http.StatusUnsupportedMediaType, `{"error":"Unsupported Media Type"}`},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, `{"error":"internal error"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			require.NoError(t, writeError(c, tc.err))
			assert.Equal(t, tc.code, rec.Code)
			assert.JSONEq(t, tc.body, rec.Body.String())
		})
	}
}
