package msgfile

import (
	"bytes"
	"encoding/binary"
)

// Header is the fixed file header.
type Header struct {
	Identifier    [3]byte
	Count         uint16
	First         uint16
	Index16       bool // 16-bit index entries when true, 32-bit otherwise
	Version       uint16
	IndexOffset   uint16
	CountryOffset uint16
	ExtOffset     uint32 // 0 when no extension block is present
	Reserved      [5]byte
}

// IndexWidth returns the size in bytes of one index entry.
func (h *Header) IndexWidth() int {
	if h.Index16 {
		return IndexWidth16
	}
	return IndexWidth32
}

// IndexSize returns the size in bytes of the whole index.
func (h *Header) IndexSize() int {
	return int(h.Count) * h.IndexWidth()
}

// MessagesOffset returns the offset of the first encoded message.
func (h *Header) MessagesOffset() int {
	return int(h.CountryOffset) + CountryInfoSize
}

// CountryInfo is the locale block following the index.
type CountryInfo struct {
	BytesPerChar uint8
	Country      uint16
	LangFamily   uint16
	LangVersion  uint16
	Codepages    []uint16
	Filename     string
}

func encodeHeader(dst []byte, h Header) bool {
	if len(dst) < HeaderSize {
		return false
	}
	copy(dst[0:8], Signature[:])
	copy(dst[8:11], h.Identifier[:])
	binary.LittleEndian.PutUint16(dst[0x0B:], h.Count)
	binary.LittleEndian.PutUint16(dst[0x0D:], h.First)
	if h.Index16 {
		dst[0x0F] = 1
	} else {
		dst[0x0F] = 0
	}
	binary.LittleEndian.PutUint16(dst[0x10:], h.Version)
	binary.LittleEndian.PutUint16(dst[0x12:], h.IndexOffset)
	binary.LittleEndian.PutUint16(dst[0x14:], h.CountryOffset)
	binary.LittleEndian.PutUint32(dst[extOffsetField:], h.ExtOffset)
	copy(dst[0x1A:0x1F], h.Reserved[:])
	return true
}

func decodeHeader(src []byte) (Header, bool) {
	var h Header
	if len(src) < HeaderSize {
		return h, false
	}
	copy(h.Identifier[:], src[8:11])
	h.Count = binary.LittleEndian.Uint16(src[0x0B:])
	h.First = binary.LittleEndian.Uint16(src[0x0D:])
	h.Index16 = src[0x0F] != 0
	h.Version = binary.LittleEndian.Uint16(src[0x10:])
	h.IndexOffset = binary.LittleEndian.Uint16(src[0x12:])
	h.CountryOffset = binary.LittleEndian.Uint16(src[0x14:])
	h.ExtOffset = binary.LittleEndian.Uint32(src[extOffsetField:])
	copy(h.Reserved[:], src[0x1A:0x1F])
	return h, true
}

func encodeCountryInfo(dst []byte, ci CountryInfo) bool {
	if len(dst) < CountryInfoSize || len(ci.Codepages) > MaxCodepages {
		return false
	}
	clear(dst[:CountryInfoSize])
	dst[0] = ci.BytesPerChar
	binary.LittleEndian.PutUint16(dst[1:], ci.Country)
	binary.LittleEndian.PutUint16(dst[3:], ci.LangFamily)
	binary.LittleEndian.PutUint16(dst[5:], ci.LangVersion)
	binary.LittleEndian.PutUint16(dst[7:], uint16(len(ci.Codepages)))
	for i, cp := range ci.Codepages {
		binary.LittleEndian.PutUint16(dst[9+2*i:], cp)
	}
	// The name keeps at least one terminating NUL inside the field.
	name := ci.Filename
	if len(name) > FilenameSize-1 {
		name = name[:FilenameSize-1]
	}
	copy(dst[41:41+FilenameSize], name)
	return true
}

func decodeCountryInfo(src []byte) (CountryInfo, bool) {
	var ci CountryInfo
	if len(src) < CountryInfoSize {
		return ci, false
	}
	ci.BytesPerChar = src[0]
	ci.Country = binary.LittleEndian.Uint16(src[1:])
	ci.LangFamily = binary.LittleEndian.Uint16(src[3:])
	ci.LangVersion = binary.LittleEndian.Uint16(src[5:])
	n := int(binary.LittleEndian.Uint16(src[7:]))
	if n > MaxCodepages {
		return ci, false
	}
	ci.Codepages = make([]uint16, n)
	for i := range ci.Codepages {
		ci.Codepages[i] = binary.LittleEndian.Uint16(src[9+2*i:])
	}
	name := src[41 : 41+FilenameSize]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	ci.Filename = string(name)
	return ci, true
}
