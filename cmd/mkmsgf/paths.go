package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/samcharles93/mkmsgf/internal/compiler"
)

const (
	envInclude = "INCLUDE"
	envOutDir  = "MKMSGF_OUT_DIR"
)

// resolveOutput picks the output path for input. An explicit path wins;
// otherwise the name is derived from input and placed in $MKMSGF_OUT_DIR,
// the configured directory, or the current directory, in that order.
// derived reports whether the name was derived. Directories are created
// by the compiler only once the output has been written.
func resolveOutput(input, outArg string, mode compiler.Mode, cfgDir string) (string, bool) {
	outArg = strings.TrimSpace(outArg)
	if outArg != "" {
		return filepath.Clean(outArg), false
	}

	outDir := strings.TrimSpace(os.Getenv(envOutDir))
	if outDir == "" {
		outDir = strings.TrimSpace(cfgDir)
	}
	return compiler.DefaultOutput(input, mode, outDir), true
}
