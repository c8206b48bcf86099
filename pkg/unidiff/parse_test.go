package unidiff

import "testing"

func TestParseHunkHeaderFullForm(t *testing.T) {
	t.Parallel()

	header, ok := parseHunkHeader("@@ -3,7 +3,8 @@")
	if !ok {
		t.Fatalf("expected header to parse")
	}
	want := hunkHeader{oldStart: 3, oldCount: 7, newStart: 3, newCount: 8}
	if header != want {
		t.Fatalf("unexpected header: got %+v want %+v", header, want)
	}
}

func TestParseHunkHeaderDefaultsCountsToOne(t *testing.T) {
	t.Parallel()

	header, ok := parseHunkHeader("@@ -5 +9 @@")
	if !ok {
		t.Fatalf("expected header to parse")
	}
	if header.oldCount != 1 || header.newCount != 1 {
		t.Fatalf("expected counts to default to 1, got %+v", header)
	}
}

func TestParseHunkHeaderIgnoresTrailingContext(t *testing.T) {
	t.Parallel()

	header, ok := parseHunkHeader("@@ -10,2 +12,2 @@ func main() {")
	if !ok {
		t.Fatalf("expected header to parse")
	}
	if header.oldStart != 10 || header.newStart != 12 {
		t.Fatalf("unexpected starts: %+v", header)
	}
}

func TestParseHunkHeaderRejectsGarbage(t *testing.T) {
	t.Parallel()

	cases := []string{
		"@@ garbage @@",
		"@@",
		"@@ -a,1 +1,1 @@",
		"@@ -1,b +1,1 @@",
		"@@ -1,1 +x,1 @@",
	}
	for _, line := range cases {
		if _, ok := parseHunkHeader(line); ok {
			t.Fatalf("expected %q to be rejected", line)
		}
	}
}

func TestSplitLinesDropsTrailingNewlineSentinel(t *testing.T) {
	t.Parallel()

	lines := splitLines("a\nb\n")
	if got, want := len(lines), 2; got != want {
		t.Fatalf("unexpected line count: got %d want %d", got, want)
	}
	if lines[0] != "a" || lines[1] != "b" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestSplitLinesEmptyInput(t *testing.T) {
	t.Parallel()

	if lines := splitLines(""); len(lines) != 0 {
		t.Fatalf("expected no lines for empty input, got %v", lines)
	}
}

func TestSplitLinesNormalizesCRLF(t *testing.T) {
	t.Parallel()

	lines := splitLines("a\r\nb\rc\n")
	if got, want := len(lines), 3; got != want {
		t.Fatalf("unexpected line count: got %d want %d", got, want)
	}
	if lines[1] != "b" || lines[2] != "c" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}
