// Package catalog contains the Catalog bounded context as seen from the
// point-of-sale console: products, list pages, list queries and the stock
// summary. Values here are rebuilt from server responses and never patched
// locally.
package catalog
