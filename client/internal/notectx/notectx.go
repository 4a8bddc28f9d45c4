// Package notectx assembles the context string sent with every save and
// every question: one "<title>: <content>" pair per note, in sequence order,
// separated by a blank line.
package notectx

import (
	"strings"

	"github.com/quillmind/quillmind/client/internal/types"
)

// Separator joins consecutive note pairs.
const Separator = "\n\n"

// Pair formats a single note.
func Pair(title, content string) string {
	return title + ": " + content
}

// Build joins every note exactly once. An empty slice yields "".
func Build(notes []types.Note) string {
	if len(notes) == 0 {
		return ""
	}
	var b strings.Builder
	for i, n := range notes {
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(Pair(n.Title, n.Content))
	}
	return b.String()
}
