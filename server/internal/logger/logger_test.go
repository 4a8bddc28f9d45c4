package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithFile_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.log")
	log := NewWithFile("notes-service", path)
	log.Info().Msg("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"service":"notes-service"`) || !strings.Contains(line, `"message":"hello"`) {
		t.Fatalf("unexpected log line: %s", line)
	}
}
