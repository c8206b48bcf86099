package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"

	"github.com/geminigui/toolhost/internal/storage"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CheckResult is the structured outcome of file_check.
type CheckResult struct {
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
	FileType  string   `json:"file_type"`
	LineCount int      `json:"line_count"`
	Encoding  string   `json:"encoding"`
}

var fileTypeByExtension = map[string]string{
	"go":   "Go",
	"rs":   "Rust",
	"ts":   "TypeScript",
	"tsx":  "TypeScript",
	"js":   "JavaScript",
	"jsx":  "JavaScript",
	"json": "JSON",
	"toml": "TOML",
	"md":   "Markdown",
	"txt":  "Text",
}

// NewFileCheckTool returns the file_check tool: encoding detection plus
// lightweight syntax and lint checks keyed off the file extension.
func NewFileCheckTool(store storage.Store) Tool {
	return Tool{
		Name:        "file_check",
		Description: "Check a file for syntax errors, encoding problems and lint warnings.",
		Schema:      pathOnlySchema,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args pathArgs
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode file_check arguments: %w", err)
			}
			data, err := store.ReadBytes(args.Path)
			if err != nil {
				return nil, err
			}
			return checkFile(args.Path, data), nil
		},
	}
}

func checkFile(path string, data []byte) CheckResult {
	encoding := "Unknown/Binary"
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		encoding = "UTF-8 BOM"
	case utf8.Valid(data):
		encoding = "UTF-8"
	}

	text := string(bytes.TrimPrefix(data, utf8BOM))
	lines := splitTextLines(text)

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	fileType, ok := fileTypeByExtension[extension]
	if !ok {
		fileType = "Unknown"
	}

	result := CheckResult{
		Errors:    []string{},
		Warnings:  []string{},
		FileType:  fileType,
		LineCount: len(lines),
		Encoding:  encoding,
	}

	switch extension {
	case "json":
		var value any
		if err := json.Unmarshal([]byte(text), &value); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON syntax: %v", err))
		}
	case "toml":
		var value any
		if err := toml.Unmarshal([]byte(text), &value); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Invalid TOML syntax: %v", err))
		}
	case "ts", "tsx", "js", "jsx":
		if strings.Contains(text, "console.log") {
			result.Warnings = append(result.Warnings, "Found console.log statement")
		}
		if strings.Contains(text, "debugger") {
			result.Warnings = append(result.Warnings, "Found debugger statement")
		}
		openBraces := strings.Count(text, "{")
		closeBraces := strings.Count(text, "}")
		if openBraces != closeBraces {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Unbalanced braces: %d open, %d close", openBraces, closeBraces))
		}
	}

	var trailing []int
	var long []int
	for i, line := range lines {
		if strings.HasSuffix(line, " ") || strings.HasSuffix(line, "\t") {
			trailing = append(trailing, i+1)
		}
		if len(line) > 120 {
			long = append(long, i+1)
		}
	}
	if len(trailing) > 0 && len(trailing) < 10 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Trailing whitespace on lines: %v", trailing))
	}
	if len(long) > 0 && len(long) < 10 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Lines longer than 120 characters: %v", long))
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func splitTextLines(text string) []string {
	if text == "" {
		return nil
	}
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.TrimSuffix(normalized, "\n")
	return strings.Split(normalized, "\n")
}
