package catalog

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size used when none is chosen
const DefaultPerPage = 10

// PerPageChoices are the page sizes accepted by the list endpoint
var PerPageChoices = []int{10, 25, 50, 100}

// IsValidPerPage checks n against PerPageChoices
func IsValidPerPage(n int) bool {
	return slices.Contains(PerPageChoices, n)
}

// SortField is a column the list can be ordered by
type SortField string

const (
	SortByName      SortField = "name"
	SortBySKU       SortField = "sku"
	SortByPrice     SortField = "price"
	SortByStock     SortField = "stock"
	SortByCreatedAt SortField = "created_at"
)

// IsValid checks if the SortField is a valid value
func (s SortField) IsValid() bool {
	switch s {
	case SortByName, SortBySKU, SortByPrice, SortByStock, SortByCreatedAt:
		return true
	}
	return false
}

// SortDir is the ordering direction
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// IsValid checks if the SortDir is a valid value
func (d SortDir) IsValid() bool {
	return d == SortAsc || d == SortDesc
}

// StatusFilter narrows the list by availability
type StatusFilter string

const (
	StatusAll        StatusFilter = ""
	StatusActive     StatusFilter = "active"
	StatusInactive   StatusFilter = "inactive"
	StatusLowStock   StatusFilter = "low_stock"
	StatusOutOfStock StatusFilter = "out_of_stock"
)

// IsValid checks if the StatusFilter is a valid value
func (s StatusFilter) IsValid() bool {
	switch s {
	case StatusAll, StatusActive, StatusInactive, StatusLowStock, StatusOutOfStock:
		return true
	}
	return false
}

// ListQuery is the full set of list parameters owned by the controller
type ListQuery struct {
	Search   string
	Page     int
	PerPage  int
	Sort     SortField
	Dir      SortDir
	Status   StatusFilter
	Category string
}

// DefaultListQuery returns the query used before any user interaction
func DefaultListQuery() ListQuery {
	return ListQuery{
		Page:    1,
		PerPage: DefaultPerPage,
		Sort:    SortByName,
		Dir:     SortAsc,
	}
}

// WithSearch returns a copy with a new search string and the page reset to 1
func (q ListQuery) WithSearch(search string) ListQuery {
	q.Search = strings.TrimSpace(search)
	q.Page = 1
	return q
}

// Params returns the query string parameters for the list endpoint
func (q ListQuery) Params() map[string]string {
	params := map[string]string{
		"search":   q.Search,
		"page":     strconv.Itoa(max(q.Page, 1)),
		"per_page": strconv.Itoa(q.PerPage),
	}
	if q.Sort != "" {
		params["sort"] = string(q.Sort)
	}
	if q.Dir != "" {
		params["dir"] = string(q.Dir)
	}
	if q.Status != StatusAll {
		params["status"] = string(q.Status)
	}
	if q.Category != "" {
		params["category"] = q.Category
	}
	return params
}
