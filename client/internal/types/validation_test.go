package types

import (
	"errors"
	"testing"
)

func TestValidateNoteID(t *testing.T) {
	t.Parallel()
	for _, id := range []int64{0, -1} {
		if err := ValidateNoteID(id); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument for %d, got %v", id, err)
		}
	}
	if err := ValidateNoteID(42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateQuestion(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in string
		ok bool
	}{
		{"", false}, {"   ", false}, {"\t\n", false}, {"What are my notes about?", true}, {"  x ", true},
	}
	for _, c := range cases {
		err := ValidateQuestion(c.in)
		if c.ok && err != nil {
			t.Fatalf("expected ok for %q, got %v", c.in, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("expected error for %q", c.in)
		}
	}
}
