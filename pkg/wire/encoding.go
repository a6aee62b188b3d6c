package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// encoder builds a message payload. Fixed-width fields go straight
// through encoding/binary; variable-length fields (strings, byte
// slices, lists) are length-prefixed with a uint32 count, the same
// fixed-header-plus-variable-payload shape as other binary-framed
// wire protocols.
type encoder struct {
	buf bytes.Buffer
}

func newEncoder() *encoder { return &encoder{} }

func (e *encoder) byte(v uint8) { e.buf.WriteByte(v) }
func (e *encoder) bool(v bool) {
	if v {
		e.buf.WriteByte(1)
	} else {
		e.buf.WriteByte(0)
	}
}
func (e *encoder) u32(v uint32) { var b [4]byte; binary.BigEndian.PutUint32(b[:], v); e.buf.Write(b[:]) }
func (e *encoder) i32(v int32)  { e.u32(uint32(v)) }

func (e *encoder) bytes(v []byte) {
	e.u32(uint32(len(v)))
	e.buf.Write(v)
}

func (e *encoder) string(v string) {
	e.bytes([]byte(v))
}

func (e *encoder) bytesOut() []byte { return e.buf.Bytes() }

// decoder consumes a message payload produced by encoder.
type decoder struct {
	data []byte
	pos  int
}

func newDecoder(data []byte) *decoder { return &decoder{data: data} }

var errShortRead = fmt.Errorf("%w: short payload", ErrDecode)

func (d *decoder) need(n int) error {
	if d.pos+n > len(d.data) {
		return errShortRead
	}
	return nil
}

func (d *decoder) byte() (uint8, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	v := d.data[d.pos]
	d.pos++
	return v, nil
}

func (d *decoder) boolean() (bool, error) {
	v, err := d.byte()
	return v != 0, err
}

func (d *decoder) u32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *decoder) i32() (int32, error) {
	v, err := d.u32()
	return int32(v), err
}

func (d *decoder) bytes() ([]byte, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	if err := d.need(int(n)); err != nil {
		return nil, err
	}
	v := make([]byte, n)
	copy(v, d.data[d.pos:d.pos+int(n)])
	d.pos += int(n)
	return v, nil
}

func (d *decoder) string() (string, error) {
	b, err := d.bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// count reads a uint32 element count for a list field and rejects it
// outright if it could not possibly fit in the bytes remaining, given
// minElemSize (each element's minimum encoded size). This stops a
// forged count (e.g. billions of elements in a 32 MiB payload) from
// driving a large make([]T, 0, n) allocation before the per-element
// short-read check would otherwise catch it.
func (d *decoder) count(minElemSize int) (uint32, error) {
	n, err := d.u32()
	if err != nil {
		return 0, err
	}
	remaining := int64(len(d.data) - d.pos)
	if int64(n)*int64(minElemSize) > remaining {
		return 0, errShortRead
	}
	return n, nil
}
