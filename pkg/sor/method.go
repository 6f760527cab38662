package sor

import "fmt"

// Method identifies the compression method declared by an entry header.
type Method uint8

const (
	MethodStore         Method = 0 // uncompressed
	MethodHuffman       Method = 1 // Huffman coding
	MethodBWTHuffman    Method = 2 // BWT + RLE + MTF + Huffman
	MethodBWTArithmetic Method = 3 // BWT + RLE + MTF + arithmetic coding
	MethodLZMA          Method = 4 // LZMA
	MethodBWTLZMA       Method = 5 // BWT + LZMA hybrid
	MethodPatternLZMA   Method = 6 // pattern substitution + LZMA
	MethodDupRef        Method = 7 // duplicate reference to an earlier entry
	MethodBWTPPM        Method = 8 // BWT + RLE + MTF + PPM + arithmetic coding
)

func (m Method) String() string {
	switch m {
	case MethodStore:
		return "store"
	case MethodHuffman:
		return "huffman"
	case MethodBWTHuffman:
		return "bwt+huffman"
	case MethodBWTArithmetic:
		return "bwt+arithmetic"
	case MethodLZMA:
		return "lzma"
	case MethodBWTLZMA:
		return "bwt+lzma"
	case MethodPatternLZMA:
		return "pattern+lzma"
	case MethodDupRef:
		return "dup-ref"
	case MethodBWTPPM:
		return "bwt+ppm"
	}
	return fmt.Sprintf("unknown(%d)", uint8(m))
}

func (m Method) known() bool {
	return m <= MethodBWTPPM
}

// FileType is the content classification tag recorded by the encoder.
type FileType uint8

const (
	TypeCompressed FileType = 0 // already-compressed file
	TypeText       FileType = 1
	TypeBinary     FileType = 2
	TypeUnknown    FileType = 3
)

func (t FileType) String() string {
	switch t {
	case TypeCompressed:
		return "compressed"
	case TypeText:
		return "text"
	case TypeBinary:
		return "binary"
	case TypeUnknown:
		return "unknown"
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

const (
	// maxNameLen rejects entry names longer than the encoder ever writes.
	maxNameLen = 1000

	// maxFileType is the highest tag tolerated without a loud warning.
	maxFileType = 10

	// softSizeLimit flags implausible declared sizes (100 MiB) without
	// rejecting them.
	softSizeLimit = 100 << 20

	// recoverySkip is the fixed skip-forward distance applied after an
	// unreadable entry. It has no structural basis and may misalign the
	// entries that follow.
	recoverySkip = 4
)
