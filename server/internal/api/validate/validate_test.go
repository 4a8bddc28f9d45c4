package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/quillmind/quillmind/server/internal/model"
)

func TestStruct(t *testing.T) {
	if err := Struct(model.AskRequest{Question: "What are my notes about?"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := Struct(model.AskRequest{})
	if !errors.Is(err, model.ErrValidation) || !strings.Contains(err.Error(), "Question is required") {
		t.Fatalf("unexpected error: %v", err)
	}

	zero := int64(0)
	err = Struct(model.EmbedAndSaveRequest{ID: &zero, Title: "t"})
	if !errors.Is(err, model.ErrValidation) || !strings.Contains(err.Error(), "ID must be greater than 0") {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := Struct(model.EmbedAndSaveRequest{Title: "t", Note: "n"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
