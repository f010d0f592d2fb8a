package catalogapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
	"github.com/ERPlora/module-inventory/internal/domain/shared"
)

type listResponse struct {
	Products    []catalog.Product `json:"products"`
	Total       int               `json:"total"`
	Pages       int               `json:"pages"`
	CurrentPage int               `json:"current_page"`
	PerPage     int               `json:"per_page"`
}

// List fetches one page of products
func (c *Client) List(ctx context.Context, q catalog.ListQuery) (catalog.Page, error) {
	resp, err := c.do(ctx, request{
		endpoint: "list",
		method:   http.MethodGet,
		path:     "list",
		query:    q.Params(),
	})
	if err != nil {
		return catalog.Page{}, err
	}

	var out listResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return catalog.Page{}, shared.WrapDomainError(shared.CodeNetwork, "Malformed product list", err)
	}
	perPage := q.PerPage
	if out.PerPage > 0 {
		perPage = out.PerPage
	}
	current := out.CurrentPage
	if current == 0 {
		current = q.Page
	}
	return catalog.NewPage(out.Products, current, perPage, out.Total), nil
}

// Stats fetches the catalog summary
func (c *Client) Stats(ctx context.Context) (catalog.Stats, error) {
	resp, err := c.do(ctx, request{
		endpoint: "stats",
		method:   http.MethodGet,
		path:     "stats",
	})
	if err != nil {
		return catalog.Stats{}, err
	}

	var out catalog.Stats
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return catalog.Stats{}, shared.WrapDomainError(shared.CodeNetwork, "Malformed catalog stats", err)
	}
	return out, nil
}

// Categories fetches every category, in display order
func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	resp, err := c.do(ctx, request{
		endpoint: "categories",
		method:   http.MethodGet,
		path:     "categories",
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Categories []catalog.Category `json:"categories"`
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, shared.WrapDomainError(shared.CodeNetwork, "Malformed category list", err)
	}
	return out.Categories, nil
}

// Create submits a new product
func (c *Client) Create(ctx context.Context, fields catalog.ProductFields) (string, error) {
	return c.submitProduct(ctx, "create", "create", fields)
}

// Update submits changes to an existing product
func (c *Client) Update(ctx context.Context, id uuid.UUID, fields catalog.ProductFields) (string, error) {
	return c.submitProduct(ctx, "edit", "edit/"+id.String(), fields)
}

func (c *Client) submitProduct(ctx context.Context, endpoint, path string, fields catalog.ProductFields) (string, error) {
	body, contentType, err := encodeForm(fields.FormValues(), formFile{field: "image", file: fields.Image})
	if err != nil {
		return "", shared.WrapDomainError(shared.CodeInvalidInput, "Could not encode product form", err)
	}
	return c.mutate(ctx, request{
		endpoint:    endpoint,
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: contentType,
	})
}

// Delete removes a product
func (c *Client) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	return c.postForm(ctx, "delete", "delete/"+id.String(), nil)
}

// Toggle flips a product between active and inactive
func (c *Client) Toggle(ctx context.Context, id uuid.UUID) (string, error) {
	return c.postForm(ctx, "toggle", "toggle/"+id.String(), nil)
}

// Bulk applies action to every product in ids
func (c *Client) Bulk(ctx context.Context, ids []uuid.UUID, action catalog.BulkAction) (string, error) {
	if !action.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Unknown bulk action: "+string(action))
	}
	if len(ids) == 0 {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "No products selected")
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return c.postForm(ctx, "bulk", "bulk", map[string]string{
		"ids":    strings.Join(parts, ","),
		"action": string(action),
	})
}

func (c *Client) postForm(ctx context.Context, endpoint, path string, values map[string]string) (string, error) {
	body, contentType, err := encodeForm(values)
	if err != nil {
		return "", shared.WrapDomainError(shared.CodeInvalidInput, "Could not encode form", err)
	}
	return c.mutate(ctx, request{
		endpoint:    endpoint,
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: contentType,
	})
}

func (c *Client) mutate(ctx context.Context, req request) (string, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}
	return envelopeResult(resp.body)
}

// Export streams the catalog in the given format into w and returns the
// number of bytes written
func (c *Client) Export(ctx context.Context, kind catalog.FileKind, w io.Writer) (int64, error) {
	if !kind.IsValid() {
		return 0, shared.NewDomainError(shared.CodeInvalidInput, "Unsupported export format: "+string(kind))
	}
	resp, err := c.do(ctx, request{
		endpoint: "export",
		method:   http.MethodGet,
		path:     "export/" + string(kind),
		sink:     w,
	})
	if err != nil {
		return 0, err
	}
	return resp.written, nil
}

// ExportURL returns the address a browser can navigate to for a download
func (c *Client) ExportURL(kind catalog.FileKind) string {
	return c.buildURL("export/"+string(kind), nil).String()
}

// Import uploads a spreadsheet. The server applies it all or nothing and
// reports a summary message.
func (c *Client) Import(ctx context.Context, kind catalog.FileKind, file catalog.Attachment) (string, error) {
	if !kind.IsValid() {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Unsupported import format: "+string(kind))
	}
	if len(file.Data) == 0 {
		return "", shared.NewDomainError(shared.CodeInvalidInput, "Import file is empty")
	}
	if file.Filename == "" {
		file.Filename = fmt.Sprintf("import.%s", kind.Extension())
	}
	body, contentType, err := encodeForm(nil, formFile{field: "file", file: &file})
	if err != nil {
		return "", shared.WrapDomainError(shared.CodeInvalidInput, "Could not encode import file", err)
	}
	return c.mutate(ctx, request{
		endpoint:    "import",
		method:      http.MethodPost,
		path:        "import/" + string(kind),
		body:        body,
		contentType: contentType,
	})
}
