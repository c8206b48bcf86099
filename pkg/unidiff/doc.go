// Package unidiff applies unified-diff payloads to in-memory text.
//
// The package implements the lenient, best-effort patch semantics used by the
// apply_diff tool: malformed hunk markers and out-of-range operations are skipped
// instead of aborting, so partially matching diffs still apply as far as they can.
// It performs no I/O; callers own reading and persisting the patched text.
package unidiff
