package aigbv

import "fmt"

// Word values are little-endian bit slices: index 0 is the least
// significant bit. EncodeInt and the decoders convert between them and
// fixed-width two's-complement integers.

// EncodeInt returns the width-bit two's-complement encoding of v,
// truncating modulo 2^width.
func EncodeInt(width int, v int64) ([]bool, error) {
	if width < 1 {
		return nil, fmt.Errorf("%w: word width must be positive, got %d", ErrWidthMismatch, width)
	}
	bits := make([]bool, width)
	u := uint64(v)
	for i := 0; i < width && i < 64; i++ {
		bits[i] = u&(1<<uint(i)) != 0
	}
	if v < 0 {
		// sign extension beyond 64 bits
		for i := 64; i < width; i++ {
			bits[i] = true
		}
	}
	return bits, nil
}

// DecodeUint interprets bits as an unsigned integer.
func DecodeUint(bits []bool) (uint64, error) {
	if len(bits) > 64 {
		return 0, fmt.Errorf("%w: cannot decode %d bits into a uint64", ErrWidthMismatch, len(bits))
	}
	var u uint64
	for i, b := range bits {
		if b {
			u |= 1 << uint(i)
		}
	}
	return u, nil
}

// DecodeInt interprets bits as a two's-complement signed integer.
func DecodeInt(bits []bool) (int64, error) {
	if len(bits) < 1 || len(bits) > 64 {
		return 0, fmt.Errorf("%w: cannot decode %d bits into an int64", ErrWidthMismatch, len(bits))
	}
	u, err := DecodeUint(bits)
	if err != nil {
		return 0, err
	}
	if bits[len(bits)-1] && len(bits) < 64 {
		u |= ^uint64(0) << uint(len(bits))
	}
	return int64(u), nil
}
