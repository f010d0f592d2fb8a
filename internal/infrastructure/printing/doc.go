// Package printing dispatches encoded barcodes to a printer.
//
// Every dispatch starts by probing for a native print bridge. When one is
// available the symbol is handed to it and the bridge's answer is final:
// errors, refusals and timeouts are reported as PRINT_DISPATCH_FAILED with no
// second attempt on another path. When no bridge is available the symbol is
// wrapped in a small HTML document and opened on a fallback surface, either a
// Chrome tab that raises the print dialog or a headless renderer that archives
// a PDF. The fallback cannot observe whether the operator actually printed, so
// it reports fallback-opened.
package printing
