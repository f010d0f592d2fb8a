// Package barcode turns product codes into printable SVG barcodes.
//
// Bar patterns come from github.com/boombuler/barcode; this package only
// validates input and lays the modules out on a millimeter grid, so the
// output matches the labels produced by the back office.
package barcode
