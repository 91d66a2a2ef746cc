// Package symtab loads the message number to label mapping used by the
// assembler emitter.
//
// Labels come from BASEMID and UTILMD* include files found on a
// semicolon separated search path, either in assembler syntax
//
//	MSG_FILE_NOT_FOUND	EQU	2
//
// or in C header syntax
//
//	#define MSG_FILE_NOT_FOUND 2
package symtab

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/samcharles93/mkmsgf/internal/logger"
)

// Syntax selects which family of include files is read.
type Syntax int

const (
	Assembler Syntax = iota // BASEMID.INC, UTILMD*.INC
	Header                  // BASEMID.H, UTILMD*.H
)

func (s Syntax) ext() string {
	if s == Header {
		return ".h"
	}
	return ".inc"
}

func (s Syntax) String() string {
	if s == Header {
		return "header"
	}
	return "assembler"
}

const (
	baseName       = "basemid"
	wildcardPrefix = "utilmd"
)

// Options configures Load.
type Options struct {
	Include    string // explicit search path, searched first
	EnvInclude string // value of $INCLUDE
	Syntax     Syntax
	Logger     logger.Logger
}

// Table maps message numbers to labels.
type Table struct {
	labels map[int][]string
	files  []string
}

// Labels returns every label defined for n, in discovery order.
func (t *Table) Labels(n int) []string {
	if t == nil {
		return nil
	}
	return t.labels[n]
}

// Lookup returns the first label defined for n.
func (t *Table) Lookup(n int) (string, bool) {
	l := t.Labels(n)
	if len(l) == 0 {
		return "", false
	}
	return l[0], true
}

// Len returns the number of message numbers with at least one label.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.labels)
}

// Files returns the include files that were read, in order.
func (t *Table) Files() []string {
	if t == nil {
		return nil
	}
	return t.files
}

// New returns an empty table.
func New() *Table {
	return &Table{labels: make(map[int][]string)}
}

// Add records label for n unless it is already present.
func (t *Table) Add(n int, label string) {
	if slices.Contains(t.labels[n], label) {
		return
	}
	t.labels[n] = append(t.labels[n], label)
}

// SearchPath joins the explicit include path and $INCLUDE and splits the
// result into directories. It returns "." when both are empty.
func SearchPath(include, env string) []string {
	var dirs []string
	for _, part := range []string{include, env} {
		for d := range strings.SplitSeq(part, ";") {
			if d = strings.TrimSpace(d); d != "" {
				dirs = append(dirs, d)
			}
		}
	}
	if len(dirs) == 0 {
		return []string{"."}
	}
	return dirs
}

// Load discovers and reads the include files for opts.Syntax. Finding no
// files at all is not an error; the table is empty and a warning is
// logged.
func Load(opts Options) (*Table, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	t := New()

	for _, dir := range SearchPath(opts.Include, opts.EnvInclude) {
		for _, path := range discover(dir, opts.Syntax, log) {
			if err := t.readFile(path, opts.Syntax); err != nil {
				if os.IsNotExist(err) || os.IsPermission(err) {
					log.Warn("skipping symbol file", "path", path, "error", err)
					continue
				}
				return nil, err
			}
			t.files = append(t.files, path)
			log.Debug("loaded symbol file", "path", path)
		}
	}

	if len(t.files) == 0 {
		log.Warn("no symbol files found; labels will be missing",
			"syntax", opts.Syntax.String(),
			"path", strings.Join(SearchPath(opts.Include, opts.EnvInclude), ";"))
	}
	return t, nil
}

// discover returns the base file followed by the wildcard matches of dir,
// sorted by name. Names are matched case-insensitively.
func discover(dir string, syn Syntax, log logger.Logger) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Debug("cannot read include directory", "dir", dir, "error", err)
		return nil
	}
	ext := syn.ext()
	var base string
	var wild []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		switch {
		case name == baseName+ext:
			base = filepath.Join(dir, e.Name())
		case strings.HasPrefix(name, wildcardPrefix) && strings.HasSuffix(name, ext):
			wild = append(wild, filepath.Join(dir, e.Name()))
		}
	}
	slices.SortFunc(wild, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	if base != "" {
		return append([]string{base}, wild...)
	}
	return wild
}

func (t *Table) readFile(path string, syn Syntax) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		var (
			label string
			n     int
			ok    bool
		)
		if syn == Header {
			label, n, ok = parseDefine(sc.Text())
		} else {
			label, n, ok = parseEqu(sc.Text())
		}
		if ok {
			t.Add(n, label)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// parseEqu recognises "SYMBOL EQU N" and "SYMBOL = N". A ';' starts a
// comment.
func parseEqu(line string) (string, int, bool) {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = strings.Replace(line, "=", " = ", 1)
	f := strings.Fields(line)
	if len(f) < 3 || !(strings.EqualFold(f[1], "equ") || f[1] == "=") {
		return "", 0, false
	}
	n, err := strconv.Atoi(f[2])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return f[0], n, true
}

// parseDefine recognises "#define SYMBOL N".
func parseDefine(line string) (string, int, bool) {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "/*"); i >= 0 {
		line = line[:i]
	}
	f := strings.Fields(line)
	if len(f) < 3 || f[0] != "#define" {
		return "", 0, false
	}
	n, err := strconv.Atoi(f[2])
	if err != nil || n < 0 {
		return "", 0, false
	}
	return f[1], n, true
}
