package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/geminigui/toolhost/internal/storage"
)

const searchFilesSchema = `{
	"type": "object",
	"required": ["path", "pattern"],
	"additionalProperties": false,
	"properties": {
		"path": {"type": "string", "minLength": 1},
		"pattern": {"type": "string", "minLength": 1}
	}
}`

// NewSearchFilesTool returns the search_files tool. Patterns use doublestar
// glob syntax, so "**/*.go" walks the whole subtree.
func NewSearchFilesTool(store storage.Store) Tool {
	return Tool{
		Name:        "search_files",
		Description: "Find files under a directory matching a glob pattern.",
		Schema:      searchFilesSchema,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args struct {
				Path    string `json:"path"`
				Pattern string `json:"pattern"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode search_files arguments: %w", err)
			}

			if !doublestar.ValidatePattern(args.Pattern) {
				return nil, fmt.Errorf("invalid glob pattern: %q", args.Pattern)
			}

			base, err := store.Resolve(args.Path)
			if err != nil {
				return nil, err
			}
			if info, statErr := os.Stat(base); statErr != nil || !info.IsDir() {
				return nil, fmt.Errorf("search base is not a directory: %s", args.Path)
			}

			matches, err := doublestar.Glob(os.DirFS(base), args.Pattern)
			if err != nil {
				return nil, fmt.Errorf("glob %q: %w", args.Pattern, err)
			}

			results := make([]string, 0, len(matches))
			for _, match := range matches {
				results = append(results, path.Join(args.Path, match))
			}
			sort.Strings(results)
			return map[string]any{"matches": results}, nil
		},
	}
}
