package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samcharles93/mkmsgf/internal/compiler"
)

func TestResolveOutput(t *testing.T) {
	t.Run("explicit output wins", func(t *testing.T) {
		t.Setenv(envOutDir, t.TempDir())
		outPath := filepath.Join(t.TempDir(), "nested", "oso001.msg")

		got, derived := resolveOutput("oso001.txt", outPath, compiler.ModeCatalog, "")
		if derived {
			t.Fatalf("expected explicit output to not be derived")
		}
		if got != filepath.Clean(outPath) {
			t.Fatalf("unexpected output path: got %q want %q", got, outPath)
		}
		if _, err := os.Stat(filepath.Dir(got)); !os.IsNotExist(err) {
			t.Fatalf("output directory created before compiling: %v", err)
		}
	})

	t.Run("env output dir overrides config", func(t *testing.T) {
		envDir := filepath.Join(t.TempDir(), "msg-out")
		t.Setenv(envOutDir, envDir)

		got, derived := resolveOutput(filepath.Join("src", "oso001.txt"), "", compiler.ModeAsm, "ignored")
		if !derived {
			t.Fatalf("expected output to be derived")
		}
		if want := filepath.Join(envDir, "oso001.asm"); got != want {
			t.Fatalf("unexpected output path: got %q want %q", got, want)
		}
	})

	t.Run("config dir used without env", func(t *testing.T) {
		t.Setenv(envOutDir, "")
		cfgDir := filepath.Join(t.TempDir(), "cfg")

		got, _ := resolveOutput("oso001.txt", "", compiler.ModeCatalog, cfgDir)
		if want := filepath.Join(cfgDir, "oso001.msg"); got != want {
			t.Fatalf("unexpected output path: got %q want %q", got, want)
		}
	})

	t.Run("current directory by default", func(t *testing.T) {
		t.Setenv(envOutDir, "")

		got, derived := resolveOutput(filepath.Join("a", "b", "OSO001.TXT"), "", compiler.ModeCatalog, "")
		if !derived || got != "OSO001.msg" {
			t.Fatalf("unexpected output path: got %q derived=%v", got, derived)
		}
	})
}
