package console

import (
	"errors"

	"github.com/ERPlora/module-inventory/internal/domain/shared"
)

// Exit codes returned by catalogctl
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitRejected  = 3 // the server or local validation refused the input
	ExitNetwork   = 4
	ExitPrint     = 5
	ExitCancelled = 130
)

// ExitCode maps an error to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch shared.CodeOf(err) {
	case shared.CodeValidation, shared.CodeInvalidInput, shared.CodeInvalidSymbolInput:
		return ExitRejected
	case shared.CodeNetwork, shared.CodeMissingToken:
		return ExitNetwork
	case shared.CodePrintDispatchFailed:
		return ExitPrint
	case shared.CodeCancelled:
		return ExitCancelled
	}
	if errors.Is(err, ErrNoAnswer) {
		return ExitCancelled
	}
	return ExitFailure
}
