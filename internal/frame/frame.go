package frame

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

// ConfigurationCode is the frame code of the device configuration frame that
// later frames may need for interpretation.
const ConfigurationCode byte = 0x10

var (
	// ErrInvalidHex is returned when the textual frame is not valid hex.
	ErrInvalidHex = errors.New("invalid hex frame")
	// ErrTruncated is returned when a read goes past the end of a frame.
	ErrTruncated = errors.New("frame truncated")
)

// Frame is the binary payload of a single uplink or downlink message. The
// first byte is the frame code. Frames are treated as read-only.
type Frame []byte

// ParseHex decodes a hexadecimal frame of at least two bytes. Digits may be
// either case; any other rune, separators included, is rejected.
func ParseHex(input string) (Frame, error) {
	if len(input)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of digits (%d)", ErrInvalidHex, len(input))
	}
	if len(input) < 4 {
		return nil, fmt.Errorf("%w: need at least 2 bytes, got %d digits", ErrInvalidHex, len(input))
	}
	decoded := make([]byte, len(input)/2)
	if _, err := hex.Decode(decoded, []byte(input)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return Frame(decoded), nil
}

// MustParseHex is ParseHex for constants known to be valid.
func MustParseHex(input string) Frame {
	f, err := ParseHex(input)
	if err != nil {
		panic(err)
	}
	return f
}

// Code returns the frame code, or 0 for an empty frame.
func (f Frame) Code() byte {
	if len(f) == 0 {
		return 0
	}
	return f[0]
}

// Len returns the number of bytes in the frame.
func (f Frame) Len() int { return len(f) }

// At returns the byte at i, or 0 when i is out of range. Used for optional
// configuration bytes where absence means "not configured".
func (f Frame) At(i int) byte {
	if i < 0 || i >= len(f) {
		return 0
	}
	return f[i]
}

// Hex renders the frame as lower-case hex.
func (f Frame) Hex() string {
	return hex.EncodeToString(f)
}

func (f Frame) String() string { return f.Hex() }

// Reader performs big-endian reads at absolute offsets. The first
// out-of-range read is remembered and every later read returns zero, so
// callers check Err once after extracting all fields.
type Reader struct {
	f   Frame
	err error
}

// NewReader wraps f.
func NewReader(f Frame) *Reader {
	return &Reader{f: f}
}

// Err returns the first read error, if any.
func (r *Reader) Err() error { return r.err }

// Len returns the length of the underlying frame.
func (r *Reader) Len() int { return len(r.f) }

func (r *Reader) window(off, width int) []byte {
	if r.err != nil {
		return nil
	}
	if off < 0 || off+width > len(r.f) {
		r.err = fmt.Errorf("%w: read of %d bytes at offset %d, frame has %d", ErrTruncated, width, off, len(r.f))
		return nil
	}
	return r.f[off : off+width]
}

// Uint8 reads one byte.
func (r *Reader) Uint8(off int) int {
	b := r.window(off, 1)
	if b == nil {
		return 0
	}
	return int(b[0])
}

// Uint16 reads an unsigned big-endian 16-bit value.
func (r *Reader) Uint16(off int) int {
	b := r.window(off, 2)
	if b == nil {
		return 0
	}
	return int(binary.BigEndian.Uint16(b))
}

// Int16 reads a signed big-endian 16-bit value.
func (r *Reader) Int16(off int) int {
	b := r.window(off, 2)
	if b == nil {
		return 0
	}
	return int(int16(binary.BigEndian.Uint16(b)))
}

// Uint32 reads an unsigned big-endian 32-bit value.
func (r *Reader) Uint32(off int) int {
	b := r.window(off, 4)
	if b == nil {
		return 0
	}
	return int(binary.BigEndian.Uint32(b))
}

// Flag reports whether any bit of mask is set in the byte at off.
func (r *Reader) Flag(off int, mask byte) bool {
	return byte(r.Uint8(off))&mask != 0
}
