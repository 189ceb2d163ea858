package usecase_test

import (
	"context"
	"time"

	"catalogadmin/internal/domain/catalog"
	"catalogadmin/internal/domain/model"
	repo "catalogadmin/internal/repository"
	"catalogadmin/internal/usecase"

	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	updated, _ := args.Get(0).(model.Product)
	return updated, args.Error(1)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ repo.ProductRepository = (*ProductRepoMock)(nil)

type SourceMock struct{ mock.Mock }

func (m *SourceMock) Products() []model.Product {
	args := m.Called()
	items, _ := args.Get(0).([]model.Product)
	return items
}

func (m *SourceMock) Loading() bool {
	return m.Called().Bool(0)
}

func (m *SourceMock) Refetch(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ usecase.ProductDataSource = (*SourceMock)(nil)

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Notify(ctx context.Context, n model.Notification) {
	m.Called(ctx, n)
}

type ValidatorMock struct{ mock.Mock }

func (m *ValidatorMock) ValidateCreate(ctx context.Context, in usecase.AdminCreateProductInput) error {
	return m.Called(ctx, in).Error(0)
}

type TrackerMock struct{ mock.Mock }

func (m *TrackerMock) TryAcquire(ctx context.Context, productID int64) (func(), bool, error) {
	args := m.Called(ctx, productID)
	release, _ := args.Get(0).(func())
	return release, args.Bool(1), args.Error(2)
}

func (m *TrackerMock) IsPending(ctx context.Context, productID int64) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func (m *TrackerMock) Pending(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

type fixedIDGen struct{ id string }

func (g fixedIDGen) NewID() string { return g.id }

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return fixedNow }

func testCategories() catalog.CategoryRegistry {
	r, err := catalog.NewCategoryRegistry([]catalog.Category{
		{Name: "Apparel", Icon: "👕"},
		{Name: "Electronics", Icon: "📱"},
	})
	if err != nil {
		panic(err)
	}
	return r
}

func strPtr(s string) *string { return &s }
