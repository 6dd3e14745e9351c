package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestRunExtension(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extension script requires a posix shell")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	script := "#!/bin/sh\necho \"$TAXLOTS_VERBOSE $TAXLOTS_CONFIG $1\" > \"$EXT_OUT\"\nexit 3\n"
	if err := os.WriteFile(filepath.Join(dir, ExtensionName("hello")), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("EXT_OUT", out)

	found, code := RunExtension("hello", []string{"world"})
	if !found {
		t.Fatal("RunExtension() did not find taxlots-hello")
	}
	if code != 3 {
		t.Errorf("RunExtension() exit code = %d, want 3", code)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if want := "false taxlots.toml world"; strings.TrimSpace(string(got)) != want {
		t.Errorf("extension output = %q, want %q", got, want)
	}

	if found, _ := RunExtension("does-not-exist", nil); found {
		t.Error("RunExtension() found a missing extension")
	}
}
