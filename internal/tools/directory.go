package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/geminigui/toolhost/internal/storage"
)

const listDirectorySchema = `{
	"type": "object",
	"required": ["path"],
	"additionalProperties": false,
	"properties": {
		"path": {"type": "string", "minLength": 1},
		"recursive": {"type": "boolean"}
	}
}`

// NewListDirectoryTool returns the list_directory tool. Directory entries are
// suffixed with a slash; recursive listings are relative to the listed path.
func NewListDirectoryTool(store storage.Store) Tool {
	return Tool{
		Name:        "list_directory",
		Description: "List directory contents, optionally recursively.",
		Schema:      listDirectorySchema,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args struct {
				Path      string `json:"path"`
				Recursive bool   `json:"recursive"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode list_directory arguments: %w", err)
			}
			entries, err := store.List(args.Path, args.Recursive)
			if err != nil {
				return nil, err
			}
			if entries == nil {
				entries = []string{}
			}
			return map[string]any{"entries": entries}, nil
		},
	}
}

// NewCreateDirectoryTool returns the create_directory tool.
func NewCreateDirectoryTool(store storage.Store) Tool {
	return Tool{
		Name:        "create_directory",
		Description: "Create a directory and any missing parents.",
		Schema:      pathOnlySchema,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args pathArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode create_directory arguments: %w", err)
			}
			if err := store.MkdirAll(args.Path); err != nil {
				return nil, err
			}
			return map[string]any{"success": true}, nil
		},
	}
}
