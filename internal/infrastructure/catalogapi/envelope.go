package catalogapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ERPlora/module-inventory/internal/domain/shared"
)

// Envelope is the reply of every mutating endpoint
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// maxErrorBody limits how much of an unexpected body ends up in an error
const maxErrorBody = 200

func decodeEnvelope(body []byte) (*Envelope, bool) {
	var env struct {
		Success *bool   `json:"success"`
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil || env.Success == nil {
		return nil, false
	}
	out := &Envelope{Success: *env.Success}
	if env.Message != nil {
		out.Message = *env.Message
	}
	return out, true
}

// statusError converts a non-2xx reply into a domain error
func statusError(status int, body []byte) error {
	if env, ok := decodeEnvelope(body); ok && !env.Success && env.Message != "" {
		return shared.NewDomainError(shared.CodeValidation, env.Message)
	}
	msg := fmt.Sprintf("Request failed with status %d %s", status, http.StatusText(status))
	if snippet := strings.TrimSpace(string(body)); snippet != "" && len(snippet) <= maxErrorBody && !strings.HasPrefix(snippet, "<") {
		msg += ": " + snippet
	}
	return shared.NewDomainError(shared.CodeNetwork, msg)
}

// envelopeResult interprets a 2xx mutation reply and returns the server message
func envelopeResult(body []byte) (string, error) {
	env, ok := decodeEnvelope(body)
	if !ok {
		return "", shared.NewDomainError(shared.CodeNetwork, "Unexpected response from server")
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "Request was rejected"
		}
		return "", shared.NewDomainError(shared.CodeValidation, msg)
	}
	return env.Message, nil
}
