package msgfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Writer builds a message file in a streaming fashion.
//
// NewWriter writes the header, a zero filled index and the country block
// up front. Messages are then streamed while their offsets are recorded,
// and Finalise rewrites the index in place.
type Writer struct {
	w       io.WriteSeeker
	hdr     Header
	offsets []uint32
	closed  bool
}

// NewWriter starts a message file on w, which must be positioned at the
// start of an empty destination. Only Identifier, Count, First and
// Index16 are taken from hdr; the remaining fields are derived.
func NewWriter(w io.WriteSeeker, hdr Header, ci CountryInfo) (*Writer, error) {
	if w == nil {
		return nil, errors.New("msgfile: nil writer")
	}
	if len(ci.Codepages) > MaxCodepages {
		return nil, fmt.Errorf("msgfile: %d codepages, at most %d allowed", len(ci.Codepages), MaxCodepages)
	}

	hdr.Version = FormatVersion
	hdr.IndexOffset = HeaderSize
	hdr.ExtOffset = 0
	hdr.Reserved = reservedMark

	countryOffset := HeaderSize + hdr.IndexSize()
	if countryOffset > math.MaxUint16 {
		return nil, fmt.Errorf("%w: index of %d entries does not fit the header", ErrIndexOverflow, hdr.Count)
	}
	hdr.CountryOffset = uint16(countryOffset)

	if ci.BytesPerChar == 0 {
		ci.BytesPerChar = 1
	}

	var hdrBuf [HeaderSize]byte
	if !encodeHeader(hdrBuf[:], hdr) {
		return nil, errors.New("msgfile: encode header failed")
	}
	if err := writeFull(w, hdrBuf[:]); err != nil {
		return nil, err
	}

	// Placeholder index, patched in Finalise.
	if err := writeFull(w, make([]byte, hdr.IndexSize())); err != nil {
		return nil, err
	}

	var ciBuf [CountryInfoSize]byte
	if !encodeCountryInfo(ciBuf[:], ci) {
		return nil, errors.New("msgfile: encode country info failed")
	}
	if err := writeFull(w, ciBuf[:]); err != nil {
		return nil, err
	}

	return &Writer{
		w:       w,
		hdr:     hdr,
		offsets: make([]uint32, 0, hdr.Count),
	}, nil
}

// WriteMessage appends one encoded message (type letter followed by text)
// and returns the offset recorded for it in the index.
func (w *Writer) WriteMessage(typ byte, text []byte) (uint32, error) {
	if w.closed {
		return 0, errors.New("msgfile: writer already finalised")
	}
	if len(w.offsets) >= int(w.hdr.Count) {
		return 0, fmt.Errorf("%w: more than %d messages", ErrCountMismatch, w.hdr.Count)
	}

	pos, err := w.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	limit := int64(math.MaxUint32)
	if w.hdr.Index16 {
		limit = math.MaxUint16
	}
	if pos > limit {
		return 0, fmt.Errorf("%w: message %d at offset %d", ErrIndexOverflow, int(w.hdr.First)+len(w.offsets), pos)
	}

	if err := writeFull(w.w, []byte{typ}); err != nil {
		return 0, err
	}
	if err := writeFull(w.w, text); err != nil {
		return 0, err
	}

	off := uint32(pos)
	w.offsets = append(w.offsets, off)
	return off, nil
}

// Offsets returns the offsets recorded so far, in message order.
func (w *Writer) Offsets() []uint32 {
	return append([]uint32(nil), w.offsets...)
}

// Header returns the header as it will appear in the finished file.
func (w *Writer) Header() Header {
	return w.hdr
}

// Finalise rewrites the index with the recorded offsets and, when
// extension is set, appends the extension block and patches its offset
// into the header. After Finalise the writer must not be used again.
func (w *Writer) Finalise(extension bool) error {
	if w.closed {
		return errors.New("msgfile: writer already finalised")
	}
	w.closed = true

	if len(w.offsets) != int(w.hdr.Count) {
		return fmt.Errorf("%w: wrote %d, header declares %d", ErrCountMismatch, len(w.offsets), w.hdr.Count)
	}

	index := make([]byte, w.hdr.IndexSize())
	for i, off := range w.offsets {
		if w.hdr.Index16 {
			binary.LittleEndian.PutUint16(index[i*IndexWidth16:], uint16(off))
		} else {
			binary.LittleEndian.PutUint32(index[i*IndexWidth32:], off)
		}
	}
	if _, err := w.w.Seek(int64(w.hdr.IndexOffset), io.SeekStart); err != nil {
		return err
	}
	if err := writeFull(w.w, index); err != nil {
		return err
	}

	if !extension {
		_, err := w.w.Seek(0, io.SeekEnd)
		return err
	}

	end, err := w.w.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if end > math.MaxUint32 {
		return fmt.Errorf("%w: extension block at offset %d", ErrIndexOverflow, end)
	}
	if err := writeFull(w.w, extensionBlock[:]); err != nil {
		return err
	}
	w.hdr.ExtOffset = uint32(end)

	if _, err := w.w.Seek(extOffsetField, io.SeekStart); err != nil {
		return err
	}
	var ptr [4]byte
	binary.LittleEndian.PutUint32(ptr[:], w.hdr.ExtOffset)
	if err := writeFull(w.w, ptr[:]); err != nil {
		return err
	}
	_, err = w.w.Seek(0, io.SeekEnd)
	return err
}

func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
