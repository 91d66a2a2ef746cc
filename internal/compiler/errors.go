package compiler

import "errors"

var (
	ErrNoInput          = errors.New("no input file")
	ErrSameInputOutput  = errors.New("input and output are the same file")
	ErrTooManyCodepages = errors.New("more than 16 codepages")
	ErrInvalidCodepage  = errors.New("invalid codepage")
	ErrDBCSUnsupported  = errors.New("DBCS is not supported")
)
