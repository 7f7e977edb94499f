package test

import (
	"os"
	"path/filepath"
	"testing"
)

//WriteToFile writes an array of lines to a file
func WriteToFile(file *os.File, lines []string) error {

	for _, line := range lines {
		if _, err := file.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	return nil
}

// WriteTempFile writes lines to a new file in the test's temp dir and returns its path
func WriteTempFile(t testing.TB, name string, lines []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := WriteToFile(f, lines); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
