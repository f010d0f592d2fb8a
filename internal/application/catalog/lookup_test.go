package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ERPlora/module-inventory/internal/domain/shared"
	"github.com/ERPlora/module-inventory/internal/testutil/catalogserver"
)

func TestFindBySKU(t *testing.T) {
	ctx := context.Background()

	// refills name the target SKU and sort ahead of it, pushing it to page 2
	seed := products(13)
	for i := range seed[:12] {
		seed[i].Name = fmt.Sprintf("Refill X-1 #%02d", i+1)
		seed[i].SKU = fmt.Sprintf("RF-%02d", i+1)
	}
	seed[12].Name = "Zeta"
	seed[12].SKU = "X-1"

	t.Run("match on a later page", func(t *testing.T) {
		c, rec, _ := newServerController(t, nil, catalogserver.WithProducts(seed...))

		p, err := c.FindBySKU(ctx, " x-1 ")
		require.NoError(t, err)
		assert.Equal(t, seed[12].ID, p.ID)
		assert.Equal(t, 2, c.Page().CurrentPage)
		assert.Empty(t, rec.all())
	})

	t.Run("missing SKU is reported once", func(t *testing.T) {
		c, rec, _ := newServerController(t, nil, catalogserver.WithProducts(seed...))

		_, err := c.FindBySKU(ctx, "X-9")
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
		got := rec.all()
		require.Len(t, got, 1)
		assert.Equal(t, LevelError, got[0].Level)
		assert.Equal(t, "No product with SKU X-9", got[0].Message)
	})
}
