package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// runBatch runs one compilation per non-empty line of the control file.
// Every line is attempted; the status is 1 if any line failed.
func runBatch(ctx context.Context, prog, path string, stdout, stderr io.Writer) int {
	f, err := os.Open(path)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "mkmsgf: control file: %v\n", err)
		return 1
	}
	defer func() { _ = f.Close() }()

	failed := 0
	lineNo := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			_, _ = fmt.Fprintf(stderr, "mkmsgf: %s:%d: %v\n", path, lineNo, err)
			return 1
		}
		if strings.HasPrefix(fields[0], "@") {
			_, _ = fmt.Fprintf(stderr, "mkmsgf: %s:%d: nested control files are not supported\n", path, lineNo)
			failed++
			continue
		}

		argv := append([]string{prog}, fields...)
		if err := runOnce(ctx, argv, stdout, stderr); err != nil {
			_, _ = fmt.Fprintf(stderr, "mkmsgf: %s:%d: %v\n", path, lineNo, err)
			failed++
		}
	}
	if err := sc.Err(); err != nil {
		_, _ = fmt.Fprintf(stderr, "mkmsgf: %s: %v\n", path, err)
		return 1
	}
	if failed > 0 {
		_, _ = fmt.Fprintf(stderr, "mkmsgf: %d of the control file entries failed\n", failed)
		return 1
	}
	return 0
}
