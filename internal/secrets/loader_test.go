package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromValue(t *testing.T) {
	secret, err := Load(Source{Name: "api key", Value: "  token-123  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "token-123" {
		t.Fatalf("expected trimmed value, got %q", secret)
	}
}

func TestLoadFileTakesPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("file-token\n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	secret, err := Load(Source{Name: "api key", Value: "inline-token", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "file-token" {
		t.Fatalf("expected file content to win, got %q", secret)
	}
}

func TestLoadEmptyFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := Load(Source{Name: "api key", File: path}); err == nil {
		t.Fatal("expected error for empty secret file")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(Source{Name: "api key", File: "/nonexistent/key"}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadUnconfiguredFails(t *testing.T) {
	if _, err := Load(Source{Name: "api key"}); err == nil {
		t.Fatal("expected error when nothing is configured")
	}
}
