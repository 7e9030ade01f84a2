package download

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaver_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "downloads")
	s := NewSaver(dir)

	path, err := s.Save("notes.md", strings.NewReader("# Notes\n"))
	if err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	expected := filepath.Join(dir, "notes.md")
	if path != expected {
		t.Errorf("Expected path '%s', got '%s'", expected, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if string(data) != "# Notes\n" {
		t.Errorf("Unexpected content: %q", string(data))
	}

	entries, err := os.ReadDir(filepath.Join(dir, ".partial"))
	if err != nil {
		t.Fatalf("Failed to read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected temp dir to be empty, found %d entries", len(entries))
	}
}

func TestSaver_SaveDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)

	first, err := s.Save("transcript.txt", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	second, err := s.Save("transcript.txt", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	third, err := s.Save("transcript.txt", strings.NewReader("three"))
	if err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	if first == second || second == third {
		t.Fatal("Expected distinct paths for repeated saves")
	}
	if filepath.Base(second) != "transcript (1).txt" {
		t.Errorf("Unexpected second name: %s", filepath.Base(second))
	}
	if filepath.Base(third) != "transcript (2).txt" {
		t.Errorf("Unexpected third name: %s", filepath.Base(third))
	}

	data, _ := os.ReadFile(first)
	if string(data) != "one" {
		t.Errorf("First file was overwritten: %q", string(data))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestSaver_SaveFailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)

	if _, err := s.Save("broken.bin", failingReader{}); err == nil {
		t.Fatal("Expected error from failing reader")
	}

	if _, err := os.Stat(filepath.Join(dir, "broken.bin")); !os.IsNotExist(err) {
		t.Error("Expected no final file after failed save")
	}
	entries, _ := os.ReadDir(filepath.Join(dir, ".partial"))
	if len(entries) != 0 {
		t.Errorf("Expected temp file to be removed, found %d entries", len(entries))
	}
}

func TestSanitizeFilename(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\notes.md`, "notes.md"},
		{"what?.txt", "what_.txt"},
		{"", DefaultFilename},
		{"  ", DefaultFilename},
		{"..", DefaultFilename},
		{"/", DefaultFilename},
		{"播客笔记.md", "播客笔记.md"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			if got := SanitizeFilename(tc.input); got != tc.expected {
				t.Errorf("SanitizeFilename(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}
