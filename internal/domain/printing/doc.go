// Package printing contains the label printing context: barcode formats,
// encoded symbols and the outcome of a print attempt.
package printing
