package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gitdiff "github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/geminigui/toolhost/internal/logging"
	"github.com/geminigui/toolhost/internal/storage"
	"github.com/geminigui/toolhost/pkg/unidiff"
)

const applyDiffSchema = `{
	"type": "object",
	"required": ["path", "diff_content"],
	"additionalProperties": false,
	"properties": {
		"path": {"type": "string", "minLength": 1},
		"diff_content": {"type": "string"},
		"strict": {"type": "boolean"}
	}
}`

type applyDiffArgs struct {
	Path        string `json:"path"`
	DiffContent string `json:"diff_content"`
	Strict      bool   `json:"strict"`
}

// NewApplyDiffTool builds the apply_diff tool.
//
// The default mode is the lenient line-cursor engine in pkg/unidiff: malformed
// hunks and out-of-range operations are skipped and whatever applied is
// persisted. Passing "strict": true switches to all-or-nothing application via
// go-gitdiff, which verifies context lines and leaves the file untouched on any
// conflict. The two modes have observably different behavior, which is why
// strict is an explicit opt-in rather than a default.
func NewApplyDiffTool(store storage.Store, log logging.Logger) Tool {
	return Tool{
		Name:        "apply_diff",
		Description: "Apply a unified diff to a file and report line change counts.",
		Schema:      applyDiffSchema,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args applyDiffArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode apply_diff arguments: %w", err)
			}

			release := store.Lock(args.Path)
			defer release()

			original, err := store.ReadText(args.Path)
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("file does not exist: %s", args.Path)
			}
			if err != nil {
				return nil, err
			}

			var (
				patched string
				result  unidiff.Result
			)
			if args.Strict {
				patched, result, err = applyStrict(original, args.DiffContent)
				if err != nil {
					return nil, err
				}
			} else {
				patched, result = unidiff.Apply(original, args.DiffContent)
			}

			if err := store.WriteText(args.Path, patched); err != nil {
				return nil, err
			}

			result.Message = fmt.Sprintf("Successfully applied diff to %s", args.Path)
			log.Info("applied diff",
				logging.F("path", args.Path),
				logging.F("strict", args.Strict),
				logging.F("lines_changed", result.LinesChanged))
			return result, nil
		},
	}
}

// applyStrict parses the payload with go-gitdiff and applies it with full
// context verification. Any conflict fails the whole call.
func applyStrict(original, diffContent string) (string, unidiff.Result, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(diffContent))
	if err != nil {
		return "", unidiff.Result{}, fmt.Errorf("parse diff: %w", err)
	}
	if len(files) == 0 {
		return "", unidiff.Result{}, errors.New("diff contained no file changes")
	}
	if len(files) > 1 {
		return "", unidiff.Result{}, fmt.Errorf("diff touches %d files, expected exactly one", len(files))
	}

	var buf bytes.Buffer
	if err := gitdiff.Apply(&buf, strings.NewReader(original), files[0]); err != nil {
		return "", unidiff.Result{}, fmt.Errorf("apply diff: %w", err)
	}

	var added, removed int
	for _, fragment := range files[0].TextFragments {
		added += int(fragment.LinesAdded)
		removed += int(fragment.LinesDeleted)
	}

	return buf.String(), unidiff.Result{
		Success:      true,
		LinesChanged: added + removed,
		LinesAdded:   added,
		LinesRemoved: removed,
	}, nil
}
