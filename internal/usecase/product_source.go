package usecase

import (
	"context"
	"sync"

	"catalogadmin/internal/domain/model"
	repo "catalogadmin/internal/repository"
)

// 全商品のスナップショットを持ち、Refetchで入れ替える。
type ProductSource struct {
	productRepo repo.ProductRepository

	mu       sync.RWMutex
	products []model.Product
	loaded   bool
	started  uint64 // 開始したRefetchの通し番号
	applied  uint64 // 反映済みのRefetchの通し番号
}

// DI
func NewProductSource(productRepo repo.ProductRepository) *ProductSource {
	return &ProductSource{
		productRepo: productRepo,
		products:    []model.Product{},
	}
}

// 現在のスナップショットのコピー
func (s *ProductSource) Products() []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out
}

// 最初の読み込みが終わるまでtrue
func (s *ProductSource) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loaded
}

// DBから読み直す。失敗したら前のスナップショットを残す。
func (s *ProductSource) Refetch(ctx context.Context) error {
	s.mu.Lock()
	s.started++
	seq := s.started
	s.mu.Unlock()

	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	//後から始まったRefetchがすでに反映済みなら捨てる
	if seq < s.applied {
		return nil
	}
	s.products = products
	s.applied = seq
	s.loaded = true
	return nil
}
