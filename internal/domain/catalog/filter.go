package catalog

import (
	"strings"

	"catalogadmin/internal/domain/model"
)

// カテゴリ絞り込みなしを表す値
const AllCategories = "all"

// 管理画面の検索条件
type Criteria struct {
	Term     string // 商品名・説明の部分一致（大文字小文字を区別しない）
	Category string // AllCategories または完全一致するカテゴリ名
}

// カテゴリが絞り込みなしか
func (c Criteria) AnyCategory() bool {
	return c.Category == "" || c.Category == AllCategories
}

// 条件に合う商品だけを元の順番のまま返す。
// 入力のスライスは変更しない。
func Filter(products []model.Product, c Criteria) []model.Product {
	out := make([]model.Product, 0, len(products))
	term := strings.ToLower(c.Term)

	for _, p := range products {
		if !matchesCategory(p, c) {
			continue
		}
		if !matchesTerm(p, term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesCategory(p model.Product, c Criteria) bool {
	if c.AnyCategory() {
		return true
	}
	return p.Category == c.Category
}

// termは小文字化済み。空白だけのtermもそのまま使う。
func matchesTerm(p model.Product, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), term) {
		return true
	}
	//説明がない商品は説明側では一致しない
	if p.Description == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*p.Description), term)
}
