package msgfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// File is a parsed, read-only message file.
type File struct {
	Data    []byte
	Header  *Header
	Country *CountryInfo
	Index   []uint32
	mmapped bool
}

// Message is one decoded message. Text aliases the file data and must
// not be retained after File.Close.
type Message struct {
	Number int
	Type   byte
	Offset uint32
	Text   []byte
}

// Open maps a message file read-only and validates its structure.
// If mmap is unavailable it falls back to reading the file into memory.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < HeaderSize || size64 > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	size := int(size64)

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		mf, parseErr := parse(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return mf, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parse(data, false)
}

// OpenReaderAt loads and validates a message file from a random-access
// reader without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parse(data, false)
}

// Parse validates an in-memory message file. The returned File aliases data.
func Parse(data []byte) (*File, error) {
	return parse(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parse(data []byte, mmapped bool) (*File, error) {
	if len(data) < HeaderSize {
		return nil, ErrCorruptFile
	}
	if [8]byte(data[0:8]) != Signature {
		return nil, ErrInvalidSignature
	}
	hdr, ok := decodeHeader(data[:HeaderSize])
	if !ok {
		return nil, ErrCorruptFile
	}
	if hdr.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVer, hdr.Version)
	}
	if hdr.IndexOffset < HeaderSize {
		return nil, fmt.Errorf("%w: index overlaps header", ErrCorruptFile)
	}

	indexEnd := int(hdr.IndexOffset) + hdr.IndexSize()
	if indexEnd > int(hdr.CountryOffset) {
		return nil, fmt.Errorf("%w: index overlaps country info", ErrCorruptFile)
	}
	msgStart := hdr.MessagesOffset()
	if msgStart > len(data) {
		return nil, fmt.Errorf("%w: country info out of bounds", ErrCorruptFile)
	}
	ci, ok := decodeCountryInfo(data[hdr.CountryOffset:msgStart])
	if !ok {
		return nil, fmt.Errorf("%w: bad country info", ErrCorruptFile)
	}

	msgEnd := len(data)
	if hdr.ExtOffset != 0 {
		if int64(hdr.ExtOffset) < int64(msgStart) || int64(hdr.ExtOffset)+ExtensionSize > int64(len(data)) {
			return nil, fmt.Errorf("%w: extension block out of bounds", ErrCorruptFile)
		}
		msgEnd = int(hdr.ExtOffset)
	}

	index := make([]uint32, hdr.Count)
	raw := data[hdr.IndexOffset:indexEnd]
	prev := uint32(msgStart)
	for i := range index {
		var off uint32
		if hdr.Index16 {
			off = uint32(binary.LittleEndian.Uint16(raw[i*IndexWidth16:]))
		} else {
			off = binary.LittleEndian.Uint32(raw[i*IndexWidth32:])
		}
		if off < prev || int64(off) >= int64(msgEnd) {
			return nil, fmt.Errorf("%w: index entry %d out of range", ErrCorruptFile, i)
		}
		index[i] = off
		prev = off
	}

	return &File{
		Data:    data,
		Header:  &hdr,
		Country: &ci,
		Index:   index,
		mmapped: mmapped,
	}, nil
}

// Close releases any mmap backing.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.Header = nil
	f.Country = nil
	f.Index = nil
	f.mmapped = false
	return err
}

// Identifier returns the three character component identifier.
func (f *File) Identifier() string {
	return string(f.Header.Identifier[:])
}

// Len returns the number of messages in the file.
func (f *File) Len() int {
	return len(f.Index)
}

// MessageAt returns the i-th stored message, counting from zero.
func (f *File) MessageAt(i int) (Message, error) {
	if f == nil || f.Data == nil {
		return Message{}, ErrCorruptFile
	}
	if i < 0 || i >= len(f.Index) {
		return Message{}, fmt.Errorf("%w: index %d", ErrMessageNotFound, i)
	}
	start := f.Index[i]
	end := uint32(len(f.Data))
	if i+1 < len(f.Index) {
		end = f.Index[i+1]
	} else if f.Header.ExtOffset != 0 {
		end = f.Header.ExtOffset
	}
	if start >= end {
		return Message{}, fmt.Errorf("%w: empty message at index %d", ErrCorruptFile, i)
	}
	return Message{
		Number: int(f.Header.First) + i,
		Type:   f.Data[start],
		Offset: start,
		Text:   f.Data[start+1 : end],
	}, nil
}

// Message returns the message with the given number.
func (f *File) Message(number int) (Message, error) {
	if f == nil || f.Header == nil {
		return Message{}, ErrCorruptFile
	}
	i := number - int(f.Header.First)
	if i < 0 || i >= len(f.Index) {
		return Message{}, fmt.Errorf("%w: %s%04d", ErrMessageNotFound, f.Identifier(), number)
	}
	return f.MessageAt(i)
}

// ID returns the conventional message id, for example "SYS0002".
func (f *File) ID(number int) string {
	return fmt.Sprintf("%s%04d", f.Identifier(), number)
}
