package catalog

// Page is one page of the product list together with its pagination counters.
// CurrentPage always lies within [1, max(Pages, 1)].
type Page struct {
	Products    []Product
	CurrentPage int
	PerPage     int
	Total       int
	Pages       int
}

// TotalPages returns ceil(total / perPage); zero when there are no items
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// NewPage builds a page, deriving the page count and clamping the current page
func NewPage(products []Product, currentPage, perPage, total int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total < 0 {
		total = 0
	}
	pages := TotalPages(total, perPage)
	return Page{
		Products:    products,
		CurrentPage: ClampPage(currentPage, pages),
		PerPage:     perPage,
		Total:       total,
		Pages:       pages,
	}
}

// EmptyPage is the state before the first load
func EmptyPage(perPage int) Page {
	return NewPage(nil, 1, perPage, 0)
}

// ClampPage limits page to [1, max(pages, 1)]
func ClampPage(page, pages int) int {
	last := max(pages, 1)
	if page < 1 {
		return 1
	}
	if page > last {
		return last
	}
	return page
}

// HasPrev returns true if there is a page before the current one
func (p Page) HasPrev() bool {
	return p.CurrentPage > 1
}

// HasNext returns true if there is a page after the current one
func (p Page) HasNext() bool {
	return p.CurrentPage < p.Pages
}

// IsEmpty returns true if the page has no products
func (p Page) IsEmpty() bool {
	return len(p.Products) == 0
}

// Contains reports whether a product with the given SKU is on the page
func (p Page) Contains(sku string) bool {
	for _, prod := range p.Products {
		if prod.SKU == sku {
			return true
		}
	}
	return false
}
