package compiler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutput derives the output path from the input name: the base
// name with its extension replaced by ".msg" or ".asm", placed in dir,
// or in the current directory when dir is empty.
func DefaultOutput(input string, mode Mode, dir string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + mode.Ext()
	if dir == "" {
		return base
	}
	return filepath.Join(dir, base)
}

// samePath reports whether a and b name the same file, either by
// cleaned absolute path or, when both exist, by identity.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	sa, errA := os.Stat(a)
	sb, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(sa, sb)
}

// writeAtomic creates a temporary file next to dest, hands it to fill and
// renames it over dest only when fill and the final sync succeed. Missing
// parent directories are created. On any failure the temporary file and
// any directories created here are removed and dest is left untouched.
func writeAtomic(dest string, fill func(f *os.File) error) (n int64, err error) {
	dir := filepath.Dir(dest)
	created, err := mkdirAll(dir)
	if err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	defer func() {
		if err != nil {
			removeDirs(created)
		}
	}()

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create output: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err = fill(tmp); err != nil {
		return 0, err
	}
	st, err := tmp.Stat()
	if err != nil {
		return 0, err
	}
	if err = tmp.Sync(); err != nil {
		return 0, err
	}
	if err = tmp.Close(); err != nil {
		return 0, err
	}
	if err = os.Chmod(tmpPath, 0o644); err != nil {
		return 0, err
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		return 0, fmt.Errorf("replace output: %w", err)
	}
	syncDir(dir)
	return st.Size(), nil
}

// mkdirAll creates dir and its missing parents and returns the
// directories it created, deepest first.
func mkdirAll(dir string) ([]string, error) {
	var missing []string
	for d := filepath.Clean(dir); ; d = filepath.Dir(d) {
		if _, err := os.Stat(d); err == nil {
			break
		}
		missing = append(missing, d)
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		removeDirs(missing)
		return nil, err
	}
	return missing, nil
}

// removeDirs removes dirs in order. Directories that are not empty are
// left alone.
func removeDirs(dirs []string) {
	for _, d := range dirs {
		_ = os.Remove(d)
	}
}

func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = f.Sync()
	_ = f.Close()
}

// bufferedFile gives the catalog writer buffered writes while keeping the
// io.Seeker it needs for patching the index and header.
type bufferedFile struct {
	f *os.File
	w *bufio.Writer
}

func newBufferedFile(f *os.File) *bufferedFile {
	return &bufferedFile{f: f, w: bufio.NewWriterSize(f, 64<<10)}
}

func (b *bufferedFile) Write(p []byte) (int, error) {
	return b.w.Write(p)
}

func (b *bufferedFile) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekCurrent && offset == 0 {
		pos, err := b.f.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		return pos + int64(b.w.Buffered()), nil
	}
	if err := b.w.Flush(); err != nil {
		return 0, err
	}
	return b.f.Seek(offset, whence)
}

func (b *bufferedFile) Flush() error {
	return b.w.Flush()
}
