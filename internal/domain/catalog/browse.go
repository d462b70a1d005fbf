// internal/domain/catalog/browse.go
package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Sort orders understood by Browse
const (
	SortNewest    = "newest"
	SortName      = "name"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
)

const (
	defaultPerPage = 12
	maxPerPage     = 100
)

// Query describes a client-side catalog view
type Query struct {
	Search     string
	CategoryID int64
	MinPrice   decimal.NullDecimal
	MaxPrice   decimal.NullDecimal
	InStock    bool
	Sort       string
	Page       int
	PerPage    int
}

// Pagination represents pagination information
type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Page is one page of a browse result
type Page struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Browse applies search, filters, sorting and pagination over an in-memory
// product list. The input slice is not modified.
func Browse(products []Product, q Query) Page {
	term := strings.ToLower(strings.TrimSpace(q.Search))

	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if term != "" && !p.matches(term) {
			continue
		}
		if q.CategoryID > 0 && p.CategoryID != q.CategoryID {
			continue
		}
		price := p.EffectivePrice()
		if q.MinPrice.Valid && price.LessThan(q.MinPrice.Decimal) {
			continue
		}
		if q.MaxPrice.Valid && price.GreaterThan(q.MaxPrice.Decimal) {
			continue
		}
		if q.InStock && !p.InStock() {
			continue
		}
		filtered = append(filtered, p)
	}

	switch q.Sort {
	case SortName:
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
		})
	case SortPriceAsc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].EffectivePrice().LessThan(filtered[j].EffectivePrice())
		})
	case SortPriceDesc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].EffectivePrice().GreaterThan(filtered[j].EffectivePrice())
		})
	default:
		sort.SliceStable(filtered, func(i, j int) bool {
			if !filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
				return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
			}
			return filtered[i].ID > filtered[j].ID
		})
	}

	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := q.Page
	if page < 1 {
		page = 1
	}

	total := len(filtered)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return Page{
		Products: filtered[start:end],
		Pagination: Pagination{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}
