package unidiff

import (
	"fmt"
	"strings"
)

// Result reports the aggregate outcome of applying a diff payload.
type Result struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	LinesChanged int    `json:"lines_changed"`
	LinesAdded   int    `json:"lines_added"`
	LinesRemoved int    `json:"lines_removed"`
}

// Apply replays the hunks described by diff against original and returns the
// patched text together with change counters.
//
// The engine is trusting and lenient: deleted lines are not compared against the
// file content at the cursor, malformed "@@" markers are skipped with the cursor
// left in place, and a deletion whose cursor sits past the end of the file is a
// no-op. Each hunk header reseeds the cursor from its old-start value adjusted by
// the net number of lines earlier hunks in the same payload inserted or removed,
// so later hunks stay anchored even after the file length has changed.
func Apply(original, diff string) (string, Result) {
	lines := splitLines(original)
	var (
		cursor  int
		offset  int
		added   int
		removed int
	)

	for _, raw := range strings.Split(normalizeNewlines(diff), "\n") {
		switch {
		case strings.HasPrefix(raw, "@@"):
			header, ok := parseHunkHeader(raw)
			if !ok {
				continue
			}
			cursor = header.oldStart - 1 + offset
			if cursor < 0 {
				cursor = 0
			}
		case strings.HasPrefix(raw, "---"), strings.HasPrefix(raw, "+++"):
			// File-identity headers carry no operations.
		case strings.HasPrefix(raw, "-"):
			if cursor < 0 || cursor >= len(lines) {
				continue
			}
			// The next line slides into the cursor slot, so the cursor stays put.
			lines = append(lines[:cursor], lines[cursor+1:]...)
			removed++
			offset--
		case strings.HasPrefix(raw, "+"):
			if cursor < 0 || cursor > len(lines) {
				continue
			}
			lines = insertLine(lines, cursor, raw[1:])
			cursor++
			added++
			offset++
		case strings.HasPrefix(raw, " "):
			cursor++
		default:
			// Anything else (blank lines, truncated markers) is inert.
		}
	}

	text := strings.Join(lines, lineSeparator(original))
	// Keyed off the line count, not the joined text: a file holding a single
	// blank line joins to "" yet still owns its trailing newline.
	if endsWithNewline(original) && len(lines) > 0 {
		text += lineSeparator(original)
	}

	return text, Result{
		Success:      true,
		Message:      fmt.Sprintf("%d lines added, %d lines removed", added, removed),
		LinesChanged: added + removed,
		LinesAdded:   added,
		LinesRemoved: removed,
	}
}

func insertLine(lines []string, index int, line string) []string {
	result := make([]string, 0, len(lines)+1)
	result = append(result, lines[:index]...)
	result = append(result, line)
	result = append(result, lines[index:]...)
	return result
}

func normalizeNewlines(text string) string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(normalized, "\r", "\n")
}

// lineSeparator keeps the target file's own convention: content that arrived
// with CRLF endings is joined back with CRLF.
func lineSeparator(original string) string {
	if strings.Contains(original, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

func endsWithNewline(original string) bool {
	return strings.HasSuffix(original, "\n")
}
