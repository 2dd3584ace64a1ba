package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}

func TestDefaults(t *testing.T) {
	ResetForTesting()
	t.Setenv("ISSUE_REPO_BACKEND", "")
	t.Setenv("ISSUE_DB_PATH", "")
	os.Unsetenv("ISSUE_REPO_BACKEND")
	os.Unsetenv("ISSUE_DB_PATH")
	chdir(t, t.TempDir())

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if Backend() != DefaultBackend {
		t.Errorf("Backend() = %q, want %q", Backend(), DefaultBackend)
	}
	if DBPath() != DefaultDBPath {
		t.Errorf("DBPath() = %q, want %q", DBPath(), DefaultDBPath)
	}
}

func TestEnvOverridesDefaults(t *testing.T) {
	ResetForTesting()
	t.Setenv("ISSUE_REPO_BACKEND", "memory")
	t.Setenv("ISSUE_DB_PATH", "/tmp/elsewhere.db")
	chdir(t, t.TempDir())

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if Backend() != "memory" {
		t.Errorf("Backend() = %q, want memory", Backend())
	}
	if DBPath() != "/tmp/elsewhere.db" {
		t.Errorf("DBPath() = %q, want /tmp/elsewhere.db", DBPath())
	}
}

func TestUnknownBackendFallsBackToSQLite(t *testing.T) {
	for _, value := range []string{"postgres", "dolt", " MEMORY ", "memory"} {
		ResetForTesting()
		t.Setenv("ISSUE_REPO_BACKEND", value)
		chdir(t, t.TempDir())

		if err := Initialize(); err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		want := DefaultBackend
		if value == "memory" || value == " MEMORY " {
			want = "memory"
		}
		if Backend() != want {
			t.Errorf("Backend() with ISSUE_REPO_BACKEND=%q = %q, want %q", value, Backend(), want)
		}
	}
}

func TestFileDiscoveryAndEnvPrecedence(t *testing.T) {
	ResetForTesting()
	dir := t.TempDir()
	if err := WriteFile(filepath.Join(dir, FileName), File{Backend: "memory", DBPath: "from-file.db"}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// The file is found by walking up from a subdirectory.
	sub := filepath.Join(dir, "nested", "deeper")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	chdir(t, sub)
	t.Setenv("ISSUE_DB_PATH", "from-env.db")

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if Backend() != "memory" {
		t.Errorf("Backend() = %q, want memory (from file)", Backend())
	}
	if DBPath() != "from-env.db" {
		t.Errorf("DBPath() = %q, want from-env.db (env beats file)", DBPath())
	}
	if ConfigFileUsed() == "" {
		t.Errorf("ConfigFileUsed() = \"\", want discovered path")
	}
}

func TestWriteFileRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := WriteFile(path, File{Backend: "sqlite"}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(path, File{Backend: "memory"}); err == nil {
		t.Fatalf("second WriteFile succeeded, want error")
	}

	f, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if f.Backend != "sqlite" {
		t.Errorf("Backend = %q, want sqlite", f.Backend)
	}
}
