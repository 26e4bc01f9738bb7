package packet

import (
	"encoding/binary"
	"unicode/utf8"
)

// AppendU8 appends a single octet.
func (p *Packet) AppendU8(v uint8) error {
	_, dst, err := p.extend(1)
	if err != nil {
		return err
	}
	dst[0] = v
	return nil
}

// AppendU16 appends a big-endian 16-bit integer.
func (p *Packet) AppendU16(v uint16) error {
	_, dst, err := p.extend(2)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(dst, v)
	return nil
}

// AppendU32 appends a big-endian 32-bit integer.
func (p *Packet) AppendU32(v uint32) error {
	_, dst, err := p.extend(4)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(dst, v)
	return nil
}

// AppendBlob appends raw bytes with no length prefix and no validation.
func (p *Packet) AppendBlob(b []byte) error {
	_, dst, err := p.extend(len(b))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

// AppendString appends s as a single length-octet-prefixed string. TXT/SPF
// RDATA does not go through it: those items are written as raw bytes. s
// must be valid UTF-8 and must not contain an
// embedded NUL; it must fit in 255 bytes. On any violation the buffer is
// rolled back and ErrMalformed is returned.
func (p *Packet) AppendString(s string) error {
	start := len(p.buf)
	if len(s) > 255 {
		return ErrMalformed
	}
	if !utf8.ValidString(s) {
		return ErrMalformed
	}
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			p.truncate(start)
			return ErrMalformed
		}
	}
	if err := p.AppendU8(uint8(len(s))); err != nil {
		return err
	}
	if err := p.AppendBlob([]byte(s)); err != nil {
		p.truncate(start)
		return err
	}
	return nil
}

// AppendRawString appends s as a length-octet-prefixed string with no
// validation, for fields the codec forwards opaquely (HINFO CPU/OS, §4.6).
func (p *Packet) AppendRawString(s string) error {
	start := len(p.buf)
	if len(s) > 255 {
		return ErrMalformed
	}
	if err := p.AppendU8(uint8(len(s))); err != nil {
		return err
	}
	if err := p.AppendBlob([]byte(s)); err != nil {
		p.truncate(start)
		return err
	}
	return nil
}

// ReadU8 reads a single octet, advancing the cursor.
func (p *Packet) ReadU8() (uint8, error) {
	if p.rindex+1 > len(p.buf) {
		return 0, ErrTruncated
	}
	v := p.buf[p.rindex]
	p.rindex++
	return v, nil
}

// ReadU16 reads a big-endian 16-bit integer, advancing the cursor.
func (p *Packet) ReadU16() (uint16, error) {
	if p.rindex+2 > len(p.buf) {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint16(p.buf[p.rindex : p.rindex+2])
	p.rindex += 2
	return v, nil
}

// ReadU32 reads a big-endian 32-bit integer, advancing the cursor.
func (p *Packet) ReadU32() (uint32, error) {
	if p.rindex+4 > len(p.buf) {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint32(p.buf[p.rindex : p.rindex+4])
	p.rindex += 4
	return v, nil
}

// ReadBlob reads n raw bytes, advancing the cursor. The returned slice
// aliases the packet's internal buffer.
func (p *Packet) ReadBlob(n int) ([]byte, error) {
	if n < 0 || p.rindex+n > len(p.buf) {
		return nil, ErrTruncated
	}
	b := p.buf[p.rindex : p.rindex+n]
	p.rindex += n
	return b, nil
}

// ReadString reads a length-octet-prefixed string and validates it as UTF-8
// with no embedded NUL, restoring the cursor and returning ErrMalformed on
// violation.
func (p *Packet) ReadString() (string, error) {
	start := p.rindex
	n, err := p.ReadU8()
	if err != nil {
		return "", err
	}
	b, err := p.ReadBlob(int(n))
	if err != nil {
		p.rindex = start
		return "", err
	}
	if !utf8.Valid(b) {
		p.rindex = start
		return "", ErrMalformed
	}
	for _, c := range b {
		if c == 0 {
			p.rindex = start
			return "", ErrMalformed
		}
	}
	return string(b), nil
}

// ReadRawString reads a length-octet-prefixed string with no validation.
func (p *Packet) ReadRawString() (string, error) {
	start := p.rindex
	n, err := p.ReadU8()
	if err != nil {
		return "", err
	}
	b, err := p.ReadBlob(int(n))
	if err != nil {
		p.rindex = start
		return "", err
	}
	return string(b), nil
}
