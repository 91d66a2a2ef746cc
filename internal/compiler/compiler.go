// Package compiler drives a single compilation: it scans the definition
// file, replays it through the shared parser and feeds the records to
// either the binary catalog writer or the assembler emitter. Output is
// written to a temporary file and only moved into place on success.
package compiler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samcharles93/mkmsgf/internal/asmgen"
	"github.com/samcharles93/mkmsgf/internal/langid"
	"github.com/samcharles93/mkmsgf/internal/logger"
	"github.com/samcharles93/mkmsgf/internal/source"
	"github.com/samcharles93/mkmsgf/internal/symtab"
	"github.com/samcharles93/mkmsgf/pkg/msgfile"
)

// Mode selects the output format.
type Mode int

const (
	ModeCatalog Mode = iota // binary .msg catalog
	ModeAsm                 // assembler source, labels from .INC files
	ModeHeader              // assembler source, labels from .H files
)

// Ext returns the default output extension for the mode.
func (m Mode) Ext() string {
	if m == ModeCatalog {
		return ".msg"
	}
	return ".asm"
}

func (m Mode) String() string {
	switch m {
	case ModeAsm:
		return "asm"
	case ModeHeader:
		return "header"
	default:
		return "catalog"
	}
}

// Options describes one compilation.
type Options struct {
	Input  string
	Output string // derived from Input when empty
	OutDir string // directory for a derived Output

	Mode      Mode
	Codepages []uint16
	Language  *langid.ID // nil leaves family and sub-id zero
	Extension bool       // append the extension block to a catalog
	DBCS      bool

	Include    string // symbol search path for ModeAsm and ModeHeader
	EnvInclude string

	Logger logger.Logger
}

// Result summarises a successful compilation.
type Result struct {
	Output  string
	Plan    source.Plan
	Header  msgfile.Header // catalog mode only
	Asm     asmgen.Stats   // assembler modes only
	Skipped int            // continuation lines before the first message
	Size    int64
}

// Compile runs one compilation. The context is checked between records.
func Compile(ctx context.Context, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}

	if opts.Input == "" {
		return Result{}, ErrNoInput
	}
	if opts.DBCS {
		return Result{}, ErrDBCSUnsupported
	}
	if len(opts.Codepages) > msgfile.MaxCodepages {
		return Result{}, fmt.Errorf("%w: got %d", ErrTooManyCodepages, len(opts.Codepages))
	}
	if opts.Language != nil {
		if _, err := langid.Validate(opts.Language.Family, opts.Language.Sub); err != nil {
			return Result{}, err
		}
	}

	out := opts.Output
	if out == "" {
		out = DefaultOutput(opts.Input, opts.Mode, opts.OutDir)
	}
	if samePath(opts.Input, out) {
		return Result{}, fmt.Errorf("%w: %s", ErrSameInputOutput, out)
	}

	plan, err := source.Scan(opts.Input)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", opts.Input, err)
	}
	log.Info("scanned source",
		"input", opts.Input,
		"identifier", plan.Identifier,
		"first", plan.First,
		"count", plan.Count,
		"index_width", plan.IndexWidth,
	)

	in, err := os.Open(opts.Input)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", source.ErrOpen, err)
	}
	defer func() { _ = in.Close() }()
	if _, err := in.Seek(plan.BodyStart, io.SeekStart); err != nil {
		return Result{}, err
	}
	parser := source.NewParser(in, plan)

	res := Result{Output: out, Plan: plan}
	switch opts.Mode {
	case ModeCatalog:
		res.Size, err = writeAtomic(out, func(f *os.File) error {
			hdr, err := writeCatalog(ctx, f, parser, plan, catalogCountry(opts, out), opts.Extension)
			res.Header = hdr
			return err
		})
	case ModeAsm, ModeHeader:
		syn := symtab.Assembler
		if opts.Mode == ModeHeader {
			syn = symtab.Header
		}
		var syms *symtab.Table
		syms, err = symtab.Load(symtab.Options{
			Include:    opts.Include,
			EnvInclude: opts.EnvInclude,
			Syntax:     syn,
			Logger:     log,
		})
		if err != nil {
			return Result{}, err
		}
		log.Debug("symbol table loaded", "files", len(syms.Files()), "numbers", syms.Len())
		res.Size, err = writeAtomic(out, func(f *os.File) error {
			stats, err := writeAsm(ctx, f, parser, plan, syms, log)
			res.Asm = stats
			return err
		})
	default:
		return Result{}, fmt.Errorf("unknown output mode %d", opts.Mode)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", opts.Input, err)
	}

	res.Skipped = parser.Skipped()
	if res.Skipped > 0 {
		log.Warn("continuation lines before the first message were ignored", "lines", res.Skipped)
	}
	if res.Asm.Unlabeled > 0 {
		log.Warn("messages written without labels", "count", res.Asm.Unlabeled)
	}
	log.Info("compiled", "output", out, "mode", opts.Mode.String(), "bytes", res.Size)
	return res, nil
}

func catalogCountry(opts Options, out string) msgfile.CountryInfo {
	ci := msgfile.CountryInfo{
		BytesPerChar: 1,
		Codepages:    opts.Codepages,
		Filename:     filepath.Base(out),
	}
	if opts.Language != nil {
		ci.LangFamily = opts.Language.Family
		ci.LangVersion = opts.Language.Sub
	}
	return ci
}

func writeCatalog(ctx context.Context, f *os.File, p *source.Parser, plan source.Plan, ci msgfile.CountryInfo, extension bool) (msgfile.Header, error) {
	var hdr msgfile.Header
	copy(hdr.Identifier[:], plan.Identifier)
	hdr.Count = uint16(plan.Count)
	hdr.First = uint16(plan.First)
	hdr.Index16 = plan.IndexWidth == msgfile.IndexWidth16

	bf := newBufferedFile(f)
	w, err := msgfile.NewWriter(bf, hdr, ci)
	if err != nil {
		return hdr, err
	}
	if err := eachRecord(ctx, p, func(rec source.Record) error {
		_, err := w.WriteMessage(byte(rec.Type), rec.Body)
		return err
	}); err != nil {
		return hdr, err
	}
	if err := w.Finalise(extension); err != nil {
		return hdr, err
	}
	return w.Header(), bf.Flush()
}

func writeAsm(ctx context.Context, f *os.File, p *source.Parser, plan source.Plan, syms *symtab.Table, log logger.Logger) (asmgen.Stats, error) {
	e := asmgen.NewEmitter(f, plan.Identifier, syms, log)
	err := eachRecord(ctx, p, e.Emit)
	if err == nil {
		err = e.Flush()
	}
	return e.Stats(), err
}

func eachRecord(ctx context.Context, p *source.Parser, fn func(source.Record) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := p.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// ParseCodepages converts codepage option values. Each value may itself
// be a comma separated list.
func ParseCodepages(values []string) ([]uint16, error) {
	var out []uint16
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.ParseUint(part, 10, 16)
			if err != nil || n == 0 {
				return nil, fmt.Errorf("%w: %q", ErrInvalidCodepage, part)
			}
			out = append(out, uint16(n))
		}
	}
	if len(out) > msgfile.MaxCodepages {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyCodepages, len(out))
	}
	return out, nil
}
