package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/mkmsgf/internal/langid"
	"github.com/samcharles93/mkmsgf/internal/logger"
	"github.com/samcharles93/mkmsgf/internal/source"
	"github.com/samcharles93/mkmsgf/pkg/msgfile"
)

// Server answers message lookups against the catalogs in a CatalogStore.
type Server struct {
	store *CatalogStore
	log   logger.Logger
}

func NewServer(store *CatalogStore, log logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		store: store,
		log:   log,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(requestID)
	e.GET("/v1/catalogs", s.handleListCatalogs)
	e.GET("/v1/catalogs/:name", s.handleGetCatalog)
	e.GET("/v1/catalogs/:name/messages/:number", s.handleGetMessage)
}

func (s *Server) handleListCatalogs(c *echo.Context) error {
	names, err := s.store.List()
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	data := make([]CatalogSummary, 0, len(names))
	for _, name := range names {
		mf, err := s.store.Get(name)
		if err != nil {
			s.log.Warn("skipping unreadable catalog", "name", name, "error", err)
			continue
		}
		data = append(data, summarize(name, mf))
	}
	return c.JSON(http.StatusOK, CatalogList{Object: "list", Data: data})
}

func (s *Server) handleGetCatalog(c *echo.Context) error {
	name := c.Param("name")
	mf, err := s.store.Get(name)
	if err != nil {
		return s.writeStoreError(c, err)
	}

	detail := CatalogDetail{
		CatalogSummary: summarize(name, mf),
		Version:        mf.Header.Version,
		IndexWidth:     mf.Header.IndexWidth(),
		IndexOffset:    mf.Header.IndexOffset,
		CountryOffset:  mf.Header.CountryOffset,
		ExtOffset:      mf.Header.ExtOffset,
		Size:           len(mf.Data),
		Country: CountryDTO{
			BytesPerChar:    mf.Country.BytesPerChar,
			Country:         mf.Country.Country,
			LanguageFamily:  mf.Country.LangFamily,
			LanguageVersion: mf.Country.LangVersion,
			Codepages:       append([]uint16{}, mf.Country.Codepages...),
			Filename:        mf.Country.Filename,
		},
	}
	if l, ok := langid.Lookup(mf.Country.LangFamily, mf.Country.LangVersion); ok {
		detail.Country.Language = l.Code
		detail.Country.Tag = l.Tag.String()
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) handleGetMessage(c *echo.Context) error {
	name := c.Param("name")
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 0 {
		return writeBadRequest(c, "message number must be a non-negative integer")
	}
	mf, err := s.store.Get(name)
	if err != nil {
		return s.writeStoreError(c, err)
	}
	m, err := mf.Message(number)
	if err != nil {
		if errors.Is(err, msgfile.ErrMessageNotFound) {
			return writeNotFound(c, err.Error())
		}
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}

	args := c.Request().URL.Query()["arg"]
	text := m.String()
	s.log.Debug("message lookup", "catalog", name, "number", number, "args", len(args))
	return c.JSON(http.StatusOK, MessageDTO{
		ID:        mf.ID(number),
		Number:    number,
		Type:      source.MessageType(m.Type).String(),
		Letter:    string(rune(m.Type)),
		Text:      text,
		Formatted: msgfile.Substitute(text, args...),
		Args:      args,
		Newline:   m.HasTrailingNewline(),
	})
}

func (s *Server) writeStoreError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return writeBadRequest(c, err.Error())
	case errors.Is(err, ErrCatalogNotFound):
		return writeNotFound(c, err.Error())
	default:
		s.log.Error("catalog load failed", "error", err)
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func summarize(name string, mf *msgfile.File) CatalogSummary {
	return CatalogSummary{
		Name:       name,
		Identifier: mf.Identifier(),
		Count:      mf.Len(),
		First:      int(mf.Header.First),
	}
}
