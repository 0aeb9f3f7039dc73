// Package diff maps unified-diff patch text onto the diff-relative positions
// that review-comment APIs use to anchor comments.
package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// noNewlineMarker is the literal trailer git emits after the last line of a
// file that does not end with a newline. It appears in patch text but not in
// the rendered diff, so it must not advance the position counter.
const noNewlineMarker = `\ No newline at end of file`

var hunkHeaderRE = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// ParseError reports a patch line that does not conform to unified-diff
// syntax. Callers should treat the whole patch as unusable rather than use a
// partial mapping.
type ParseError struct {
	LineNum int // 1-based index of the offending line within the patch
	Line    string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed patch at line %d: %s: %q", e.LineNum, e.Reason, e.Line)
}

// LineMap maps post-change line numbers to 0-based diff positions. Only lines
// the patch adds appear as keys.
type LineMap map[int]int

// AddedLines scans a single file's patch and returns a mapping from each
// added line's number in the post-change file to its position within the
// diff. Positions count every line of the patch body, hunk headers and
// removals included, and keep counting across hunks; they are what the GitHub
// review API expects as a comment anchor.
func AddedLines(patch string) (LineMap, error) {
	added := LineMap{}
	lineno := 0
	seenHunk := false
	position := 0

	lines := strings.Split(patch, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "@@"):
			m := hunkHeaderRE.FindStringSubmatch(line)
			if m == nil {
				return nil, &ParseError{LineNum: i + 1, Line: line, Reason: "bad hunk header"}
			}
			start, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, &ParseError{LineNum: i + 1, Line: line, Reason: "bad hunk start line"}
			}
			lineno = start
			seenHunk = true
		case line == noNewlineMarker:
			// Not part of the diff view; skip without advancing position.
			continue
		case !seenHunk:
			return nil, &ParseError{LineNum: i + 1, Line: line, Reason: "content before first hunk header"}
		case strings.HasPrefix(line, " "):
			lineno++
		case strings.HasPrefix(line, "+"):
			added[lineno] = position
			lineno++
		case strings.HasPrefix(line, "-"):
			// Removed lines exist only in the pre-change file.
		default:
			return nil, &ParseError{LineNum: i + 1, Line: line, Reason: "unrecognized line prefix"}
		}
		position++
	}

	return added, nil
}
