// Package msgfile implements the OS/2 binary message file (MSG) format.
//
// A message file is a fixed header, an offset index with one entry per
// message, a country information block and the encoded messages. Each
// encoded message is its type letter followed by its text. An optional
// four byte extension block may trail the messages.
package msgfile

// Format constants must never change; readers depend on them.
const (
	// HeaderSize is the size of the fixed file header. The index starts
	// immediately after it.
	HeaderSize = 0x1F

	// CountryInfoSize is the size of the country information block.
	CountryInfoSize = 0x12E

	// ExtensionSize is the size of the optional trailing extension block.
	ExtensionSize = 4

	// FormatVersion is the only header version written and accepted.
	FormatVersion uint16 = 2

	// MaxCodepages is the number of codepage slots in the country block.
	MaxCodepages = 16

	// FilenameSize is the size of the NUL padded file name field.
	FilenameSize = 260

	// extOffsetField is the header position of the extension block pointer.
	extOffsetField = 0x16
)

// Signature is the 8 byte magic every message file starts with.
var Signature = [8]byte{0xFF, 'M', 'K', 'M', 'S', 'G', 'F', 0x00}

// reservedMark fills the reserved header bytes of files written here.
var reservedMark = [5]byte{'M', 'K', 'G', 0x00, 0x00}

// extensionBlock is the extension trailer: header length (the country
// block size) followed by zero additional blocks.
var extensionBlock = [ExtensionSize]byte{0x2E, 0x01, 0x00, 0x00}

// Index entry widths.
const (
	IndexWidth16 = 2
	IndexWidth32 = 4
)
