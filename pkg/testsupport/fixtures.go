package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFixture writes content to name under dir and returns the file path.
func WriteFixture(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
