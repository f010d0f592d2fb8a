package catalogserver

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
)

const maxUpload = 8 << 20

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func reply(c *gin.Context, status int, ok bool, message string) {
	c.JSON(status, envelope{Success: ok, Message: message})
}

func (s *Server) list(c *gin.Context) {
	perPage, err := strconv.Atoi(c.Query("per_page"))
	if err != nil || !catalog.IsValidPerPage(perPage) {
		perPage = catalog.DefaultPerPage
	}
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = 1
	}

	s.mu.Lock()
	matched := filterProducts(s.products,
		c.Query("search"),
		catalog.StatusFilter(c.Query("status")),
		c.Query("category"))
	s.mu.Unlock()

	sortProducts(matched, catalog.SortField(c.DefaultQuery("sort", "name")), catalog.SortDir(c.DefaultQuery("dir", "asc")))

	total := len(matched)
	pages := catalog.TotalPages(total, perPage)
	page = catalog.ClampPage(page, pages)

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	c.JSON(http.StatusOK, gin.H{
		"products":     matched[start:end],
		"total":        total,
		"pages":        pages,
		"current_page": page,
		"per_page":     perPage,
	})
}

func (s *Server) stats(c *gin.Context) {
	s.mu.Lock()
	stats := catalog.ComputeStats(s.products)
	s.mu.Unlock()
	c.JSON(http.StatusOK, stats)
}

// listCategories returns the categories by sort order then name, each with
// the number of products filed under it
func (s *Server) listCategories(c *gin.Context) {
	s.mu.Lock()
	out := make([]catalog.Category, len(s.categories))
	for i, cat := range s.categories {
		cat.ProductCount = 0
		for _, p := range s.products {
			if cat.Matches(p) {
				cat.ProductCount++
			}
		}
		out[i] = cat
	}
	s.mu.Unlock()

	slices.SortStableFunc(out, func(a, b catalog.Category) int {
		if a.SortOrder != b.SortOrder {
			return a.SortOrder - b.SortOrder
		}
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

func (s *Server) create(c *gin.Context) {
	p, msg := parseProductForm(c)
	if msg != "" {
		reply(c, http.StatusBadRequest, false, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfSKU(p.SKU, uuid.Nil) >= 0 {
		reply(c, http.StatusBadRequest, false, "Product with this SKU already exists.")
		return
	}
	p.ID = uuid.New()
	s.products = append(s.products, p)
	reply(c, http.StatusOK, true, "Product created")
}

func (s *Server) edit(c *gin.Context) {
	id, ok := s.productID(c)
	if !ok {
		return
	}
	p, msg := parseProductForm(c)
	if msg != "" {
		reply(c, http.StatusBadRequest, false, msg)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		reply(c, http.StatusNotFound, false, "Product not found")
		return
	}
	if s.indexOfSKU(p.SKU, id) >= 0 {
		reply(c, http.StatusBadRequest, false, "Product with this SKU already exists.")
		return
	}
	if p.ImageURL == "" {
		p.ImageURL = s.products[i].ImageURL
	}
	p.ID = id
	s.products[i] = p
	reply(c, http.StatusOK, true, "Product updated")
}

func (s *Server) delete(c *gin.Context) {
	id, ok := s.productID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		reply(c, http.StatusNotFound, false, "Product not found")
		return
	}
	s.products = slices.Delete(s.products, i, i+1)
	reply(c, http.StatusOK, true, "Product deleted")
}

func (s *Server) toggle(c *gin.Context) {
	id, ok := s.productID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		reply(c, http.StatusNotFound, false, "Product not found")
		return
	}
	s.products[i].IsActive = !s.products[i].IsActive
	state := "deactivated"
	if s.products[i].IsActive {
		state = "activated"
	}
	reply(c, http.StatusOK, true, "Product "+state)
}

func (s *Server) bulk(c *gin.Context) {
	action := catalog.BulkAction(c.PostForm("action"))
	if !action.IsValid() {
		reply(c, http.StatusBadRequest, false, "Unknown action")
		return
	}
	ids := make(map[uuid.UUID]bool)
	for _, raw := range strings.Split(c.PostForm("ids"), ",") {
		if id, err := uuid.Parse(strings.TrimSpace(raw)); err == nil {
			ids[id] = true
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	kept := s.products[:0]
	for _, p := range s.products {
		if !ids[p.ID] {
			kept = append(kept, p)
			continue
		}
		n++
		switch action {
		case catalog.BulkActivate:
			p.IsActive = true
		case catalog.BulkDeactivate:
			p.IsActive = false
		case catalog.BulkDelete:
			continue
		}
		kept = append(kept, p)
	}
	s.products = kept
	reply(c, http.StatusOK, true, fmt.Sprintf("%d products updated", n))
}

var exportHeader = []string{"Name", "SKU", "EAN-13", "Category", "Price", "Cost", "Stock", "Low Stock Threshold", "Active"}

// export writes CSV for both kinds; the excel variant only differs in
// content type and file name
func (s *Server) export(c *gin.Context) {
	kind := catalog.FileKind(c.Param("kind"))
	if !kind.IsValid() {
		c.String(http.StatusNotFound, "Not Found")
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(exportHeader)
	s.mu.Lock()
	for _, p := range s.products {
		_ = w.Write([]string{
			p.Name, p.SKU, p.EAN13, p.Category,
			p.Price.StringFixed(2), p.Cost.StringFixed(2),
			strconv.Itoa(p.Stock), strconv.Itoa(p.LowStockThreshold),
			strconv.FormatBool(p.IsActive),
		})
	}
	s.mu.Unlock()
	w.Flush()

	contentType := "text/csv; charset=utf-8"
	if kind == catalog.FileExcel {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="products.%s"`, kind.Extension()))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) importFile(c *gin.Context) {
	kind := catalog.FileKind(c.Param("kind"))
	if !kind.IsValid() {
		reply(c, http.StatusNotFound, false, "Unsupported format")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		reply(c, http.StatusBadRequest, false, "No file uploaded")
		return
	}
	f, err := fh.Open()
	if err != nil {
		reply(c, http.StatusBadRequest, false, "Could not read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUpload))
	if err != nil {
		reply(c, http.StatusBadRequest, false, "Could not read file")
		return
	}

	rows, message, ok := s.importFn(kind, data)
	if !ok {
		reply(c, http.StatusBadRequest, false, message)
		return
	}

	s.mu.Lock()
	for _, row := range rows {
		p := productFromFields(row)
		if i := s.indexOfSKU(p.SKU, uuid.Nil); i >= 0 {
			p.ID = s.products[i].ID
			p.ImageURL = s.products[i].ImageURL
			s.products[i] = p
			continue
		}
		p.ID = uuid.New()
		s.products = append(s.products, p)
	}
	s.mu.Unlock()
	reply(c, http.StatusOK, true, message)
}

func (s *Server) productID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		reply(c, http.StatusNotFound, false, "Product not found")
		return uuid.Nil, false
	}
	return id, true
}

// indexOf must be called with mu held
func (s *Server) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(s.products, func(p catalog.Product) bool {
		return p.ID == id
	})
}

// indexOfSKU finds another product with sku; must be called with mu held
func (s *Server) indexOfSKU(sku string, except uuid.UUID) int {
	return slices.IndexFunc(s.products, func(p catalog.Product) bool {
		return p.ID != except && strings.EqualFold(p.SKU, sku)
	})
}

func parseProductForm(c *gin.Context) (catalog.Product, string) {
	if err := c.Request.ParseMultipartForm(maxUpload); err != nil && err != http.ErrNotMultipart {
		return catalog.Product{}, "Malformed form"
	}

	fields := catalog.ProductFields{
		Name:        c.PostForm("name"),
		SKU:         c.PostForm("sku"),
		EAN13:       c.PostForm("ean13"),
		Category:    c.PostForm("category"),
		ProductType: catalog.ProductType(c.PostForm("product_type")),
	}
	var err error
	if fields.Price, err = decimal.NewFromString(c.DefaultPostForm("price", "0")); err != nil {
		return catalog.Product{}, "Price: Enter a number."
	}
	if fields.Cost, err = decimal.NewFromString(c.DefaultPostForm("cost", "0")); err != nil {
		return catalog.Product{}, "Cost: Enter a number."
	}
	if fields.Stock, err = strconv.Atoi(c.DefaultPostForm("stock", "0")); err != nil {
		return catalog.Product{}, "Stock: Enter a whole number."
	}
	if fields.LowStockThreshold, err = strconv.Atoi(c.DefaultPostForm("low_stock_threshold", "10")); err != nil {
		return catalog.Product{}, "Low stock threshold: Enter a whole number."
	}
	if raw := c.PostForm("is_active"); raw != "" {
		active, _ := strconv.ParseBool(raw)
		fields.IsActive = &active
	}

	fields = fields.Normalize()
	if err := fields.Validate(); err != nil {
		return catalog.Product{}, err.Error()
	}

	p := productFromFields(fields)
	if fh, err := c.FormFile("image"); err == nil {
		p.ImageURL = "/media/inventory/products/" + fh.Filename
	}
	return p, ""
}

func productFromFields(f catalog.ProductFields) catalog.Product {
	active := true
	if f.IsActive != nil {
		active = *f.IsActive
	}
	return catalog.Product{
		Name:              f.Name,
		SKU:               f.SKU,
		EAN13:             f.EAN13,
		Category:          f.Category,
		ProductType:       f.ProductType,
		Price:             f.Price,
		Cost:              f.Cost,
		Stock:             f.Stock,
		LowStockThreshold: f.LowStockThreshold,
		IsActive:          active,
	}
}
