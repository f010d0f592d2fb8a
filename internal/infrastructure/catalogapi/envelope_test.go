package catalogapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ERPlora/module-inventory/internal/domain/shared"
)

func TestStatusError(t *testing.T) {
	err := statusError(http.StatusBadRequest, []byte(`{"success":false,"message":"Row 4 invalid"}`))
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	assert.Equal(t, "Row 4 invalid", err.Error())

	err = statusError(http.StatusBadGateway, []byte("<html>bad gateway</html>"))
	assert.Equal(t, shared.CodeNetwork, shared.CodeOf(err))
	assert.Equal(t, "Request failed with status 502 Bad Gateway", err.Error())

	err = statusError(http.StatusInternalServerError, []byte("Internal Server Error"))
	assert.Equal(t, "Request failed with status 500 Internal Server Error: Internal Server Error", err.Error())
}

func TestEnvelopeResult(t *testing.T) {
	res, err := envelopeResult([]byte(`{"success":true,"message":"Imported 3 products"}`))
	require.NoError(t, err)
	assert.Equal(t, "Imported 3 products", res)

	_, err = envelopeResult([]byte(`{"success":false}`))
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))

	_, err = envelopeResult([]byte(`{"ok":true}`))
	assert.Equal(t, shared.CodeNetwork, shared.CodeOf(err))
}
