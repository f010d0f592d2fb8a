package printing

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRenderer is a mock implementation of DocumentRenderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, doc *Document) ([]byte, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandProbe_MissingCommand(t *testing.T) {
	original := lookPath
	defer func() { lookPath = original }()
	lookPath = func(string) (string, error) {
		return "", errors.New("not found")
	}

	probe := CommandProbe(CommandBridgeConfig{Command: "lp"})
	assert.Nil(t, probe())
}

func TestCommandProbe_EmptyCommand(t *testing.T) {
	assert.Nil(t, CommandProbe(CommandBridgeConfig{})())
}

func TestCommandProbe_ResolvesEachCall(t *testing.T) {
	original := lookPath
	defer func() { lookPath = original }()

	calls := 0
	lookPath = func(file string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + file, nil
	}

	probe := CommandProbe(CommandBridgeConfig{Command: "lp"})
	assert.Nil(t, probe())
	assert.NotNil(t, probe())
	assert.Equal(t, 2, calls)
}

func TestCommandBridge_Print(t *testing.T) {
	requireShell(t)

	b, err := NewCommandBridge(CommandBridgeConfig{
		Command: "sh",
		Args:    []string{"-c", `grep -q "<svg" && echo "request id is labels-1"`},
	})
	require.NoError(t, err)

	res, err := b.Print(context.Background(), "<svg></svg>")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "request id is labels-1", res.Message)
}

func TestCommandBridge_NonZeroExit(t *testing.T) {
	requireShell(t)

	b, err := NewCommandBridge(CommandBridgeConfig{
		Command: "sh",
		Args:    []string{"-c", `cat >/dev/null; echo "printer offline" >&2; exit 3`},
	})
	require.NoError(t, err)

	res, err := b.Print(context.Background(), "<svg></svg>")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "printer offline", res.Message)
}

func TestCommandBridge_Cancelled(t *testing.T) {
	requireShell(t)

	b, err := NewCommandBridge(CommandBridgeConfig{
		Command: "sh",
		Args:    []string{"-c", "sleep 5"},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = b.Print(ctx, "<svg></svg>")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCommandBridge_PrintDocumentPipesRenderedPDF(t *testing.T) {
	requireShell(t)

	doc, err := BuildDocument(uuid.New(), testSymbol())
	require.NoError(t, err)
	renderer := new(MockRenderer)
	renderer.On("Render", mock.Anything, doc).Return([]byte("%PDF-1.7\nlabel\n"), nil).Once()

	b, err := NewCommandBridge(CommandBridgeConfig{
		Command:  "sh",
		Args:     []string{"-c", `head -n 1 | grep -q "^%PDF" && echo "request id is labels-2"`},
		Renderer: renderer,
	})
	require.NoError(t, err)

	res, err := b.PrintDocument(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "request id is labels-2", res.Message)
	renderer.AssertExpectations(t)
}

func TestCommandBridge_PrintDocumentWithoutRenderer(t *testing.T) {
	requireShell(t)

	b, err := NewCommandBridge(CommandBridgeConfig{
		Command: "sh",
		Args:    []string{"-c", `grep -q "<svg" && echo queued`},
	})
	require.NoError(t, err)

	res, err := b.PrintDocument(context.Background(), &Document{Markup: "<svg></svg>"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "queued", res.Message)
}

func TestCommandBridge_RenderFailure(t *testing.T) {
	requireShell(t)

	renderer := new(MockRenderer)
	renderer.On("Render", mock.Anything, mock.Anything).Return(nil, errors.New("chrome not found")).Once()
	b, err := NewCommandBridge(CommandBridgeConfig{
		Command:  "sh",
		Args:     []string{"-c", "cat >/dev/null"},
		Renderer: renderer,
	})
	require.NoError(t, err)

	_, err = b.PrintDocument(context.Background(), &Document{HTML: "<html></html>"})
	assert.ErrorContains(t, err, "chrome not found")
}
