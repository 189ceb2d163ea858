package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// 未登録カテゴリのアイコン
const DefaultCategoryIcon = "📦"

var ErrInvalidCategoryFile = errors.New("invalid category file")

type Category struct {
	Name string `yaml:"name" json:"name"`
	Icon string `yaml:"icon" json:"icon"`
}

// カテゴリ一覧とアイコンの参照だけを約束。
type CategoryRegistry interface {
	ListCategories() []string
	IconFor(category string) string
}

type staticRegistry struct {
	names []string
	icons map[string]string
}

// 組み込みのカテゴリ
var defaultCategories = []Category{
	{Name: "Fashion", Icon: "👕"},
	{Name: "Electronics", Icon: "📱"},
	{Name: "Food", Icon: "🍜"},
	{Name: "Beauty", Icon: "💄"},
	{Name: "Home", Icon: "🏠"},
	{Name: "Sports", Icon: "⚽"},
	{Name: "Books", Icon: "📚"},
	{Name: "Toys", Icon: "🧸"},
}

func DefaultCategoryRegistry() CategoryRegistry {
	r, _ := NewCategoryRegistry(defaultCategories)
	return r
}

// 宣言順を保ったレジストリを作る。
func NewCategoryRegistry(categories []Category) (CategoryRegistry, error) {
	r := &staticRegistry{
		names: make([]string, 0, len(categories)),
		icons: make(map[string]string, len(categories)),
	}
	for i, c := range categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category #%d has no name", ErrInvalidCategoryFile, i+1)
		}
		if name == AllCategories {
			return nil, fmt.Errorf("%w: %q is reserved", ErrInvalidCategoryFile, name)
		}
		if _, dup := r.icons[name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCategoryFile, name)
		}
		icon := c.Icon
		if icon == "" {
			icon = DefaultCategoryIcon
		}
		r.names = append(r.names, name)
		r.icons[name] = icon
	}
	return r, nil
}

type categoryFile struct {
	Categories []Category `yaml:"categories"`
}

// YAMLファイルからレジストリを読む。
//
//	categories:
//	  - name: Fashion
//	    icon: 👕
func LoadCategoryRegistry(path string) (CategoryRegistry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f categoryFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCategoryFile, err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidCategoryFile)
	}
	return NewCategoryRegistry(f.Categories)
}

func (r *staticRegistry) ListCategories() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *staticRegistry) IconFor(category string) string {
	if icon, ok := r.icons[category]; ok {
		return icon
	}
	return DefaultCategoryIcon
}

// 登録済みカテゴリか
func IsKnownCategory(r CategoryRegistry, category string) bool {
	for _, c := range r.ListCategories() {
		if c == category {
			return true
		}
	}
	return false
}
