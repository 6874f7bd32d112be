// Package leb128 implements the variable-length integer encoding used
// throughout the WebAssembly binary format.
package leb128

import (
	"errors"
	"io"
)

const maxVarintLen32 = 5

var errOverflow32 = errors.New("overflows a 32-bit integer")

// EncodeUint32 encodes the value into a unsigned LEB128 encoded bytes.
func EncodeUint32(v uint32) []byte {
	return EncodeUint64(uint64(v))
}

// EncodeUint64 encodes the value into a unsigned LEB128 encoded bytes.
func EncodeUint64(v uint64) (buf []byte) {
	for {
		c := uint8(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf = append(buf, c|0x80)
		} else {
			buf = append(buf, c)
			return
		}
	}
}

// EncodeInt32 encodes the signed value into a signed LEB128 encoded bytes.
func EncodeInt32(v int32) []byte {
	return EncodeInt64(int64(v))
}

// EncodeInt64 encodes the signed value into a signed LEB128 encoded bytes.
func EncodeInt64(v int64) (buf []byte) {
	for {
		c := uint8(v & 0x7f)
		s := uint8(v & 0x40)
		v >>= 7
		if (v != -1 || s == 0) && (v != 0 || s != 0) {
			buf = append(buf, c|0x80)
		} else {
			buf = append(buf, c)
			return
		}
	}
}

// DecodeUint32 decodes a uint32 from r, returning the value and the number
// of bytes read. Encodings longer than five bytes, or whose final byte
// carries bits beyond the 32-bit range, are rejected.
func DecodeUint32(r io.Reader) (ret uint32, bytesRead uint64, err error) {
	buf := make([]byte, 1)
	var shift int
	for shift < 35 {
		if _, err = io.ReadFull(r, buf); err != nil {
			return 0, 0, err
		}
		b := buf[0]
		bytesRead++
		ret |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			if shift == 28 && b>>4 != 0 {
				return 0, 0, errOverflow32
			}
			return ret, bytesRead, nil
		}
		shift += 7
	}
	return 0, 0, errOverflow32
}

// DecodeInt32 decodes an int32 from r, returning the value and the number
// of bytes read.
func DecodeInt32(r io.Reader) (ret int32, bytesRead uint64, err error) {
	buf := make([]byte, 1)
	var shift int
	var b byte
	for {
		if _, err = io.ReadFull(r, buf); err != nil {
			return 0, 0, err
		}
		b = buf[0]
		bytesRead++
		ret |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if bytesRead == maxVarintLen32 {
			return 0, 0, errOverflow32
		}
	}
	if bytesRead == maxVarintLen32 {
		// The final byte holds bits 28..34; all bits past 31 must agree
		// with the sign bit.
		if e := b & 0x78; e != 0 && e != 0x78 {
			return 0, 0, errOverflow32
		}
	} else if b&0x40 != 0 {
		ret |= -1 << shift
	}
	return ret, bytesRead, nil
}
