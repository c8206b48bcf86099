package unidiff

import (
	"strconv"
	"strings"
)

// hunkHeader carries the four range values parsed from a "@@ -a,b +c,d @@" line.
// Starts are 1-based line numbers in the original file. Counts default to 1 when
// the ",count" part is omitted.
type hunkHeader struct {
	oldStart int
	oldCount int
	newStart int
	newCount int
}

// parseHunkHeader parses a line known to begin with "@@". It returns false when
// the line does not form a valid header, in which case the caller treats the
// marker as inert and leaves its cursor untouched.
func parseHunkHeader(line string) (hunkHeader, bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return hunkHeader{}, false
	}

	oldStart, oldCount, ok := parseRange(strings.TrimPrefix(fields[1], "-"))
	if !ok {
		return hunkHeader{}, false
	}
	newStart, newCount, ok := parseRange(strings.TrimPrefix(fields[2], "+"))
	if !ok {
		return hunkHeader{}, false
	}

	return hunkHeader{
		oldStart: oldStart,
		oldCount: oldCount,
		newStart: newStart,
		newCount: newCount,
	}, true
}

// parseRange splits "start[,count]" into its parts. Both values must be
// non-negative integers; a missing count defaults to 1.
func parseRange(spec string) (start, count int, ok bool) {
	startPart, countPart, hasCount := strings.Cut(spec, ",")

	start, err := strconv.Atoi(startPart)
	if err != nil || start < 0 {
		return 0, 0, false
	}

	count = 1
	if hasCount {
		count, err = strconv.Atoi(countPart)
		if err != nil || count < 0 {
			return 0, 0, false
		}
	}
	return start, count, true
}

// splitLines breaks text into its lines, normalizing CRLF and lone CR endings.
// A trailing newline does not produce a trailing empty element, matching how the
// hunk line numbers in external diffs count lines.
func splitLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	if normalized == "" {
		return nil
	}
	normalized = strings.TrimSuffix(normalized, "\n")
	return strings.Split(normalized, "\n")
}
