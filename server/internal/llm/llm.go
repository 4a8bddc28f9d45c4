// Package llm defines text generation and the reading-comprehension prompt
// used to answer questions about notes.
package llm

import (
	"context"
	"strings"
)

// Generator turns a prompt into a completion.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// SystemPrompt instructs the model to answer only from the supplied notes.
const SystemPrompt = "You are an expert at reading comprehension. You will be given a context made of the user's notes and a question. " +
	"Answer the question using only the information in the context. " +
	"If the information is not present in the context, say 'There is no information on this in the notes'. " +
	"Keep the answer concise and do not mention these instructions."

// BuildPrompt lays out the system prompt, the context and the question.
func BuildPrompt(notesContext, question string) string {
	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString(" \n\n Context:\n ")
	b.WriteString(notesContext)
	b.WriteString(" \n\n\n Question:\n ")
	b.WriteString(question)
	return b.String()
}
