package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mkmsgf/internal/langid"
	"github.com/samcharles93/mkmsgf/internal/source"
	"github.com/samcharles93/mkmsgf/pkg/msgfile"
)

type catalogReport struct {
	Path          string          `json:"path"`
	Identifier    string          `json:"identifier"`
	First         int             `json:"first"`
	Count         int             `json:"count"`
	Version       uint16          `json:"version"`
	IndexWidth    int             `json:"index_width"`
	IndexOffset   uint16          `json:"index_offset"`
	CountryOffset uint16          `json:"country_offset"`
	ExtOffset     uint32          `json:"extension_offset"`
	Size          int             `json:"size"`
	BytesPerChar  uint8           `json:"bytes_per_char"`
	Country       uint16          `json:"country"`
	LangFamily    uint16          `json:"language_family"`
	LangVersion   uint16          `json:"language_version"`
	Language      string          `json:"language,omitempty"`
	Codepages     []uint16        `json:"codepages"`
	Filename      string          `json:"filename"`
	Messages      []messageReport `json:"messages,omitempty"`
}

type messageReport struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Offset uint32 `json:"offset"`
	Text   string `json:"text"`
}

func inspectCmd(env *runEnv) *cli.Command {
	var (
		asJSON       bool
		showMessages bool
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show the layout of a compiled message catalog",
		ArgsUsage: "<catalog>",
		Before:    env.setupLogging,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the report as JSON",
				Destination: &asJSON,
			},
			&cli.BoolFlag{
				Name:        "messages",
				Usage:       "include every message",
				Destination: &showMessages,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("inspect takes exactly one catalog path")
			}
			path := cmd.Args().First()
			mf, err := msgfile.Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			defer func() { _ = mf.Close() }()

			out := cmd.Root().Writer
			if asJSON {
				rep, err := buildCatalogReport(path, mf, showMessages)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}

			writeCatalogReport(out, path, mf)
			if showMessages {
				return writeMessages(out, mf)
			}
			return nil
		},
	}
}

func buildCatalogReport(path string, mf *msgfile.File, withMessages bool) (catalogReport, error) {
	h, ci := mf.Header, mf.Country
	rep := catalogReport{
		Path:          path,
		Identifier:    mf.Identifier(),
		First:         int(h.First),
		Count:         mf.Len(),
		Version:       h.Version,
		IndexWidth:    h.IndexWidth(),
		IndexOffset:   h.IndexOffset,
		CountryOffset: h.CountryOffset,
		ExtOffset:     h.ExtOffset,
		Size:          len(mf.Data),
		BytesPerChar:  ci.BytesPerChar,
		Country:       ci.Country,
		LangFamily:    ci.LangFamily,
		LangVersion:   ci.LangVersion,
		Codepages:     ci.Codepages,
		Filename:      ci.Filename,
	}
	if l, ok := langid.Lookup(ci.LangFamily, ci.LangVersion); ok {
		rep.Language = l.Code
	}
	if !withMessages {
		return rep, nil
	}
	for i := range mf.Len() {
		m, err := mf.MessageAt(i)
		if err != nil {
			return rep, err
		}
		rep.Messages = append(rep.Messages, messageReport{
			ID:     mf.ID(m.Number),
			Type:   source.MessageType(m.Type).String(),
			Offset: m.Offset,
			Text:   m.String(),
		})
	}
	return rep, nil
}

// writeCatalogReport prints the header and country block in the layout
// of the verbose compile report.
func writeCatalogReport(w io.Writer, path string, mf *msgfile.File) {
	h, ci := mf.Header, mf.Country
	cps := make([]string, len(ci.Codepages))
	for i, cp := range ci.Codepages {
		cps[i] = strconv.Itoa(int(cp))
	}
	lang := "none"
	if l, ok := langid.Lookup(ci.LangFamily, ci.LangVersion); ok {
		lang = fmt.Sprintf("%s (%s, %s)", l.Code, l.Name, l.Country)
	}

	_, _ = fmt.Fprintf(w, "Catalog            %s\n", path)
	_, _ = fmt.Fprintf(w, "Component          %s\n", mf.Identifier())
	_, _ = fmt.Fprintf(w, "First message      %d\n", h.First)
	_, _ = fmt.Fprintf(w, "Messages           %d\n", mf.Len())
	_, _ = fmt.Fprintf(w, "Version            %d\n", h.Version)
	_, _ = fmt.Fprintf(w, "Index width        %d bits\n", h.IndexWidth()*8)
	_, _ = fmt.Fprintf(w, "Index offset       0x%02X\n", h.IndexOffset)
	_, _ = fmt.Fprintf(w, "Country offset     0x%02X\n", h.CountryOffset)
	if h.ExtOffset != 0 {
		_, _ = fmt.Fprintf(w, "Extension offset   0x%02X\n", h.ExtOffset)
	}
	_, _ = fmt.Fprintf(w, "File size          %d\n", len(mf.Data))
	_, _ = fmt.Fprintf(w, "Bytes per char     %d\n", ci.BytesPerChar)
	_, _ = fmt.Fprintf(w, "Country code       %d\n", ci.Country)
	_, _ = fmt.Fprintf(w, "Language           %d,%d %s\n", ci.LangFamily, ci.LangVersion, lang)
	_, _ = fmt.Fprintf(w, "Codepages          %s\n", strings.Join(cps, ", "))
	_, _ = fmt.Fprintf(w, "Filename           %s\n", ci.Filename)
}

func writeMessages(w io.Writer, mf *msgfile.File) error {
	for i := range mf.Len() {
		m, err := mf.MessageAt(i)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s%c 0x%04X %q\n", mf.ID(m.Number), m.Type, m.Offset, m.String())
	}
	return nil
}
