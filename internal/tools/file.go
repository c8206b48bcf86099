package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/geminigui/toolhost/internal/storage"
)

const pathOnlySchema = `{
	"type": "object",
	"required": ["path"],
	"additionalProperties": false,
	"properties": {
		"path": {"type": "string", "minLength": 1}
	}
}`

const writeFileSchema = `{
	"type": "object",
	"required": ["path", "content"],
	"additionalProperties": false,
	"properties": {
		"path": {"type": "string", "minLength": 1},
		"content": {"type": "string"}
	}
}`

const moveFileSchema = `{
	"type": "object",
	"required": ["source", "destination"],
	"additionalProperties": false,
	"properties": {
		"source": {"type": "string", "minLength": 1},
		"destination": {"type": "string", "minLength": 1}
	}
}`

type pathArgs struct {
	Path string `json:"path"`
}

// NewReadFileTool returns the read_file tool.
func NewReadFileTool(store storage.Store) Tool {
	return Tool{
		Name:        "read_file",
		Description: "Read a file's contents as text.",
		Schema:      pathOnlySchema,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args pathArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode read_file arguments: %w", err)
			}
			content, err := store.ReadText(args.Path)
			if err != nil {
				return nil, err
			}
			return map[string]any{"content": content}, nil
		},
	}
}

// NewWriteFileTool returns the write_file tool. Parent directories are created
// as needed.
func NewWriteFileTool(store storage.Store) Tool {
	return Tool{
		Name:        "write_file",
		Description: "Write text content to a file, creating parent directories.",
		Schema:      writeFileSchema,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args struct {
				Path    string `json:"path"`
				Content string `json:"content"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode write_file arguments: %w", err)
			}
			release := store.Lock(args.Path)
			defer release()
			if err := store.WriteText(args.Path, args.Content); err != nil {
				return nil, err
			}
			return map[string]any{"success": true}, nil
		},
	}
}

// NewDeleteFileTool returns the delete_file tool. Directories are removed with
// their contents, mirroring the original tool's behavior.
func NewDeleteFileTool(store storage.Store) Tool {
	return Tool{
		Name:        "delete_file",
		Description: "Delete a file, or a directory together with its contents.",
		Schema:      pathOnlySchema,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args pathArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode delete_file arguments: %w", err)
			}
			release := store.Lock(args.Path)
			defer release()
			if err := store.Delete(args.Path); err != nil {
				return nil, err
			}
			return map[string]any{"success": true}, nil
		},
	}
}

// NewMoveFileTool returns the move_file tool.
func NewMoveFileTool(store storage.Store) Tool {
	return Tool{
		Name:        "move_file",
		Description: "Move or rename a file, creating destination parent directories.",
		Schema:      moveFileSchema,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args struct {
				Source      string `json:"source"`
				Destination string `json:"destination"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode move_file arguments: %w", err)
			}
			release := store.Lock(args.Source)
			defer release()
			if err := store.Move(args.Source, args.Destination); err != nil {
				return nil, err
			}
			return map[string]any{"success": true}, nil
		},
	}
}
