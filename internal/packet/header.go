package packet

import "encoding/binary"

// Header bitfield layout (§4.2), all big-endian:
//
//	id:16  flags:16  qdcount:16  ancount:16  nscount:16  arcount:16
//	flags = QR(1) OPCODE(4) AA(1) TC(1) RD(1) RA(1) Z(1) AD(1) CD(1) RCODE(4)

const (
	flagQR     = 0x80
	flagAA     = 0x04
	flagTC     = 0x02
	flagRD     = 0x01
	flagRA     = 0x80
	flagZ      = 0x40
	flagAD     = 0x20
	flagCD     = 0x10
	opcodeMask = 0x78
	opcodeShift = 3
	rcodeMask  = 0x0F
)

func (p *Packet) flagsByte1() byte { return p.buf[2] }
func (p *Packet) flagsByte2() byte { return p.buf[3] }

// ID returns the message ID (header byte 0-1).
func (p *Packet) ID() uint16 { return binary.BigEndian.Uint16(p.buf[0:2]) }

// SetID sets the message ID.
func (p *Packet) SetID(v uint16) { binary.BigEndian.PutUint16(p.buf[0:2], v) }

// QR reports the Query/Response bit.
func (p *Packet) QR() bool { return p.flagsByte1()&flagQR != 0 }

// Opcode returns the 4-bit OPCODE field.
func (p *Packet) Opcode() uint8 { return (p.flagsByte1() & opcodeMask) >> opcodeShift }

// AA reports the Authoritative Answer bit.
func (p *Packet) AA() bool { return p.flagsByte1()&flagAA != 0 }

// TC reports the Truncated bit.
func (p *Packet) TC() bool { return p.flagsByte1()&flagTC != 0 }

// RD reports the Recursion Desired bit.
func (p *Packet) RD() bool { return p.flagsByte1()&flagRD != 0 }

// RA reports the Recursion Available bit.
func (p *Packet) RA() bool { return p.flagsByte2()&flagRA != 0 }

// Z reports the reserved bit (normally 0).
func (p *Packet) Z() bool { return p.flagsByte2()&flagZ != 0 }

// AD reports the Authenticated Data bit.
func (p *Packet) AD() bool { return p.flagsByte2()&flagAD != 0 }

// CD reports the Checking Disabled bit.
func (p *Packet) CD() bool { return p.flagsByte2()&flagCD != 0 }

// Rcode returns the 4-bit RCODE field.
func (p *Packet) Rcode() uint8 { return p.flagsByte2() & rcodeMask }

// QDCount returns the question-section count.
func (p *Packet) QDCount() uint16 { return binary.BigEndian.Uint16(p.buf[4:6]) }

// SetQDCount sets the question-section count.
func (p *Packet) SetQDCount(v uint16) { binary.BigEndian.PutUint16(p.buf[4:6], v) }

// ANCount returns the answer-section count.
func (p *Packet) ANCount() uint16 { return binary.BigEndian.Uint16(p.buf[6:8]) }

// SetANCount sets the answer-section count.
func (p *Packet) SetANCount(v uint16) { binary.BigEndian.PutUint16(p.buf[6:8], v) }

// NSCount returns the authority-section count.
func (p *Packet) NSCount() uint16 { return binary.BigEndian.Uint16(p.buf[8:10]) }

// SetNSCount sets the authority-section count.
func (p *Packet) SetNSCount(v uint16) { binary.BigEndian.PutUint16(p.buf[8:10], v) }

// ARCount returns the additional-section count.
func (p *Packet) ARCount() uint16 { return binary.BigEndian.Uint16(p.buf[10:12]) }

// SetARCount sets the additional-section count.
func (p *Packet) SetARCount(v uint16) { binary.BigEndian.PutUint16(p.buf[10:12], v) }

// SetFlags rewrites the flags word according to the packet's protocol
// (§4.2). truncated must be false for Dns and Llmnr — the caller asking to
// mark a query or LLMNR message as truncated is a programming error.
func (p *Packet) SetFlags(dnssecCD, truncated bool) error {
	switch p.protocol {
	case Dns:
		if truncated {
			return ErrMalformed
		}
		p.buf[2] = flagRD // QR=0 OPCODE=0 AA=0 TC=0 RD=1
		b2 := byte(0)
		if dnssecCD {
			b2 |= flagCD
		}
		p.buf[3] = b2
	case Llmnr:
		if truncated {
			return ErrMalformed
		}
		p.buf[2] = 0
		p.buf[3] = 0
	case Mdns:
		b1 := byte(0)
		if truncated {
			b1 |= flagTC
		}
		p.buf[2] = b1
		p.buf[3] = 0
	default:
		return ErrMalformed
	}
	return nil
}
