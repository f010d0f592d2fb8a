package catalog

import "context"

// Level is the severity of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// String returns the string representation of Level
func (l Level) String() string {
	return string(l)
}

// Operations reported in notifications
const (
	OpLoad   = "load"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpToggle = "toggle"
	OpBulk   = "bulk"
	OpExport = "export"
	OpImport = "import"
	OpPrint  = "print"

	OpCategories = "categories"
)

// Notification is a message for the operator
type Notification struct {
	Level     Level
	Operation string
	Message   string
	// Err is set for warnings and errors
	Err error
}

// Notifier shows notifications to the operator
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, Notification) {}
