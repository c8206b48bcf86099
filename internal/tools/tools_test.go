package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geminigui/toolhost/internal/storage"
)

func newTestStore(t *testing.T) *storage.OSStore {
	t.Helper()
	store, err := storage.NewOSStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	tool := Tool{
		Name:   "noop",
		Schema: `{"type": "object"}`,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			return nil, nil
		},
	}
	require.NoError(t, registry.Register(tool))
	require.Error(t, registry.Register(tool))
}

func TestRegistryValidatesArguments(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	store := newTestStore(t)
	require.NoError(t, registry.Register(NewReadFileTool(store)))

	_, err := registry.Invoke(context.Background(), "read_file", json.RawMessage(`{"path": 42}`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "read_file", validationErr.Tool)

	_, err = registry.Invoke(context.Background(), "read_file", json.RawMessage(`{}`))
	require.ErrorAs(t, err, &validationErr)
}

func TestRegistryRejectsExtraArguments(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	store := newTestStore(t)
	require.NoError(t, registry.Register(NewReadFileTool(store)))

	_, err := registry.Invoke(context.Background(), "read_file",
		json.RawMessage(`{"path": "a.txt", "bogus": true}`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestRegistryUnknownTool(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	_, err := registry.Invoke(context.Background(), "nope", nil)
	var unknownErr *UnknownToolError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "nope", unknownErr.Tool)
}

func TestRegistryDescribePreservesRegistrationOrder(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	store := newTestStore(t)
	require.NoError(t, registry.Register(NewReadFileTool(store)))
	require.NoError(t, registry.Register(NewWriteFileTool(store)))

	infos := registry.Describe()
	require.Len(t, infos, 2)
	assert.Equal(t, "read_file", infos[0].Name)
	assert.Equal(t, "write_file", infos[1].Name)
}

func TestFileToolsRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	write := NewWriteFileTool(store)
	_, err := write.Handler(ctx, json.RawMessage(`{"path": "notes/todo.txt", "content": "alpha"}`))
	require.NoError(t, err)

	read := NewReadFileTool(store)
	result, err := read.Handler(ctx, json.RawMessage(`{"path": "notes/todo.txt"}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"content": "alpha"}, result)

	move := NewMoveFileTool(store)
	_, err = move.Handler(ctx, json.RawMessage(`{"source": "notes/todo.txt", "destination": "done/todo.txt"}`))
	require.NoError(t, err)

	del := NewDeleteFileTool(store)
	_, err = del.Handler(ctx, json.RawMessage(`{"path": "done/todo.txt"}`))
	require.NoError(t, err)

	_, err = read.Handler(ctx, json.RawMessage(`{"path": "done/todo.txt"}`))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDirectoryTools(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t)

	create := NewCreateDirectoryTool(store)
	_, err := create.Handler(ctx, json.RawMessage(`{"path": "src/pkg"}`))
	require.NoError(t, err)

	write := NewWriteFileTool(store)
	_, err = write.Handler(ctx, json.RawMessage(`{"path": "src/main.go", "content": "package main"}`))
	require.NoError(t, err)

	list := NewListDirectoryTool(store)
	result, err := list.Handler(ctx, json.RawMessage(`{"path": "src", "recursive": true}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"entries": []string{"main.go", "pkg/"}}, result)
}
