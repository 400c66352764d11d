package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestExtensionMechanism(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extensions are tested with a shell script")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	script := "#!/bin/sh\necho \"$STX_RULES $STX_VERBOSE $*\" > " + out + "\nexit 3\n"
	if err := os.WriteFile(filepath.Join(dir, ExtensionPrefix+"hello"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	defer func(old []string) { rulePaths.paths = old }(rulePaths.paths)
	rulePaths.paths = []string{"a.yaml", "b.yaml"}

	found, code := RunExtension("hello", []string{"x", "y"})
	if !found || code != 3 {
		t.Fatalf("RunExtension(hello) = %v, %d, want true, 3", found, code)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "a.yaml" + string(filepath.ListSeparator) + "b.yaml false x y"
	if strings.TrimSpace(string(got)) != want {
		t.Errorf("extension got %q, want %q", strings.TrimSpace(string(got)), want)
	}

	if found, _ := RunExtension("missing", nil); found {
		t.Errorf("RunExtension(missing) found an extension")
	}
}

func TestIsCommand(t *testing.T) {
	for _, name := range []string{"extract", "identify", "rules", "topic"} {
		if !IsCommand(name) {
			t.Errorf("IsCommand(%q) = false", name)
		}
	}
	if IsCommand("hello") {
		t.Errorf("IsCommand(hello) = true")
	}
}
