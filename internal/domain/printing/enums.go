package printing

// BarcodeFormat is the symbology used to encode a label
type BarcodeFormat string

const (
	FormatCode128 BarcodeFormat = "code128"
	FormatEAN13   BarcodeFormat = "ean13"
)

// DefaultFormat is used when no format is requested
const DefaultFormat = FormatCode128

// IsValid checks if the BarcodeFormat is a valid value
func (f BarcodeFormat) IsValid() bool {
	switch f {
	case FormatCode128, FormatEAN13:
		return true
	}
	return false
}

// String returns the string representation of BarcodeFormat
func (f BarcodeFormat) String() string {
	return string(f)
}

// DisplayName returns the human readable name of the format
func (f BarcodeFormat) DisplayName() string {
	switch f {
	case FormatCode128:
		return "Code 128"
	case FormatEAN13:
		return "EAN-13"
	default:
		return string(f)
	}
}

// ParseFormat returns the format for s, DefaultFormat when s is empty
func ParseFormat(s string) (BarcodeFormat, bool) {
	if s == "" {
		return DefaultFormat, true
	}
	f := BarcodeFormat(s)
	return f, f.IsValid()
}

// JobStatus is the outcome of a print attempt
type JobStatus string

const (
	JobStatusNativeSuccess  JobStatus = "native-success"
	JobStatusFallbackOpened JobStatus = "fallback-opened"
	JobStatusFailed         JobStatus = "failed"
)

// IsValid checks if the JobStatus is a valid value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusNativeSuccess, JobStatusFallbackOpened, JobStatusFailed:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// DispatchPath is the route a print attempt took
type DispatchPath string

const (
	PathNative   DispatchPath = "native"
	PathFallback DispatchPath = "fallback"
)

// String returns the string representation of DispatchPath
func (p DispatchPath) String() string {
	return string(p)
}
