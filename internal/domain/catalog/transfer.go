package catalog

// FileKind is a spreadsheet format accepted by import and export
type FileKind string

const (
	FileCSV   FileKind = "csv"
	FileExcel FileKind = "excel"
)

// IsValid checks if the FileKind is a valid value
func (k FileKind) IsValid() bool {
	return k == FileCSV || k == FileExcel
}

// Extension returns the usual file extension for the kind
func (k FileKind) Extension() string {
	if k == FileExcel {
		return "xlsx"
	}
	return "csv"
}

// BulkAction is an operation applied to several products at once
type BulkAction string

const (
	BulkActivate   BulkAction = "activate"
	BulkDeactivate BulkAction = "deactivate"
	BulkDelete     BulkAction = "delete"
)

// IsValid checks if the BulkAction is a valid value
func (a BulkAction) IsValid() bool {
	switch a {
	case BulkActivate, BulkDeactivate, BulkDelete:
		return true
	}
	return false
}

// IsDestructive returns true for actions that require confirmation
func (a BulkAction) IsDestructive() bool {
	return a == BulkDelete
}
