// Package packet implements the DNS wire-format codec shared by classic
// unicast DNS, LLMNR (RFC 4795) and mDNS (RFC 6762), including the
// DNSSEC-related record types of RFC 4034/5155 and the EDNS(0) OPT header
// of RFC 6891.
//
// A Packet is a single owned, growable byte buffer plus a read cursor and a
// name-compression dictionary. Append* methods serialize; Read* methods
// parse. Every compound operation is transactional: on failure the buffer
// (for appends) or cursor (for reads) is rolled back to its value on entry.
// The codec does no I/O of its own — it turns bytes into structured
// records and back, nothing else.
package packet

import "github.com/dnsscience/dnscodec/internal/random"

const (
	// HeaderSize is the fixed 12-byte DNS message header (§4.2).
	HeaderSize = 12

	// MaxLabelLength is the longest a single label may be (§3, §4.3).
	MaxLabelLength = 63

	// MaxNameLength is the longest a domain name's uncompressed wire
	// form may be, including the terminating zero byte (§3, §4.3).
	MaxNameLength = 255

	// MaxMessageSize is the largest a DNS message may ever be (§3, §6).
	MaxMessageSize = 65535

	// MaxRDataLength is the largest a single RR's RDATA may be (§6).
	MaxRDataLength = 65535

	// DefaultUDPPayloadSize is the RDATA-free default UDP payload limit
	// assumed absent EDNS0 (§6).
	DefaultUDPPayloadSize = 512

	// MaxCompressionOffset is the largest offset a 14-bit compression
	// pointer can address (§3, §4.3).
	MaxCompressionOffset = 0x3FFF

	udpHeaderSize = 8 // used only to size the initial allocation from an MTU hint
)

// Key identifies a resource by owner name, type and class (§3). Names are
// stored in escaped-text form ("foo.bar.example.").
type Key struct {
	Name  string
	Type  uint16
	Class uint16
}

// Packet is an owned, growable DNS message buffer (§3). The zero value is
// not usable; construct one with New or NewQuery.
type Packet struct {
	protocol Protocol
	buf      []byte // len(buf) is the logical size; cap(buf) is "allocated"
	rindex   int

	names map[string]int // compression dictionary: escaped-text name suffix -> offset

	canonicalForm     bool
	refuseCompression bool
	ifindex           int
	jumpsFollowed     int // compression pointers followed by ReadName since New/Reset

	question  []Question
	answer    []Answer
	opt       *OptRecord
	extracted bool
}

// New allocates an empty Packet for the given protocol, sized from an MTU
// hint (§4.1). The 12-byte header is zeroed; Size and the read cursor start
// at HeaderSize.
func New(protocol Protocol, mtu int) *Packet {
	initial := mtu - udpHeaderSize
	if initial < HeaderSize {
		initial = HeaderSize
	}
	if initial > MaxMessageSize {
		initial = MaxMessageSize
	}
	// Round up to a convenient page-aligned size, same tiering idea as
	// the buffer pool's size classes.
	const page = 512
	capHint := ((initial + page - 1) / page) * page
	if capHint > MaxMessageSize {
		capHint = MaxMessageSize
	}
	if capHint < HeaderSize {
		capHint = HeaderSize
	}

	buf := make([]byte, HeaderSize, capHint)
	return &Packet{
		protocol: protocol,
		buf:      buf,
		rindex:   HeaderSize,
		names:    make(map[string]int),
	}
}

// NewQuery allocates a Packet with a random transaction ID and flags set
// for an outgoing query (§6 consumer interface).
func NewQuery(protocol Protocol, mtu int, cdBit bool) (*Packet, error) {
	p := New(protocol, mtu)
	p.SetID(random.TransactionID())
	if err := p.SetFlags(cdBit, false); err != nil {
		return nil, err
	}
	return p, nil
}

// FromBytes wraps an already-received wire-format message for decode,
// analogous to the teacher's NewParser(msg) but over the shared Packet
// type instead of a separate parser. The backing array is raw (not
// copied); callers that need the Packet to outlive a reused receive
// buffer should copy first. Fails with ErrTruncated if raw is shorter
// than the 12-byte header.
func FromBytes(protocol Protocol, raw []byte) (*Packet, error) {
	if len(raw) < HeaderSize {
		return nil, ErrTruncated
	}
	return &Packet{
		protocol: protocol,
		buf:      raw,
		rindex:   HeaderSize,
		names:    make(map[string]int),
	}, nil
}

// Protocol returns the protocol this packet was constructed with.
func (p *Packet) Protocol() Protocol { return p.protocol }

// Size returns the logical length of the buffer in bytes.
func (p *Packet) Size() int { return len(p.buf) }

// Allocated returns the buffer's current capacity.
func (p *Packet) Allocated() int { return cap(p.buf) }

// Rindex returns the current read cursor.
func (p *Packet) Rindex() int { return p.rindex }

// Rewind sets the read cursor to an arbitrary offset in [HeaderSize, Size()].
// Used by collaborators that need to re-read a section (§6 "rewind").
func (p *Packet) Rewind(to int) error {
	if to < HeaderSize || to > len(p.buf) {
		return ErrMalformed
	}
	p.rindex = to
	return nil
}

// Bytes returns the packet's current wire bytes. The slice aliases the
// packet's internal buffer and must not be retained across a further
// append (appends may reallocate).
func (p *Packet) Bytes() []byte { return p.buf }

// SetCanonicalForm enables DNSSEC canonical-form lowercasing (RFC 4034
// §6.2) for labels marked as canonical candidates on append.
func (p *Packet) SetCanonicalForm(v bool) { p.canonicalForm = v }

// SetRefuseCompression disables name compression on both append and read,
// as required when a packet feeds DNSSEC signature verification.
func (p *Packet) SetRefuseCompression(v bool) { p.refuseCompression = v }

// SetIfindex records the interface index a received packet arrived on; it
// is opaque to the codec and propagated onto extracted answers.
func (p *Packet) SetIfindex(idx int) { p.ifindex = idx }

// Ifindex returns the interface index set via SetIfindex.
func (p *Packet) Ifindex() int { return p.ifindex }

// JumpsFollowed returns the number of compression pointers ReadName has
// followed on this packet since construction or the last Reset. Exposed so
// a caller can record it (internal/metrics does; internal/packet itself
// never does, keeping the codec free of observability concerns).
func (p *Packet) JumpsFollowed() int { return p.jumpsFollowed }

// extend grows the buffer by n bytes, enforcing the 65535-byte message
// cap, and returns the offset the new region starts at plus a slice over
// it. Callers fill the returned slice directly.
func (p *Packet) extend(n int) (offset int, dst []byte, err error) {
	if n < 0 {
		return 0, nil, ErrMalformed
	}
	offset = len(p.buf)
	needed := offset + n
	if needed > MaxMessageSize {
		return 0, nil, ErrMessageTooBig
	}
	if needed <= cap(p.buf) {
		p.buf = p.buf[:needed]
		return offset, p.buf[offset:needed], nil
	}

	newCap := growCapacity(cap(p.buf), needed)
	nb := make([]byte, needed, newCap)
	copy(nb, p.buf)
	p.buf = nb
	return offset, p.buf[offset:needed], nil
}

// growCapacity doubles geometrically, capped at MaxMessageSize.
func growCapacity(current, needed int) int {
	if current == 0 {
		current = HeaderSize
	}
	for current < needed {
		current *= 2
		if current >= MaxMessageSize {
			return MaxMessageSize
		}
	}
	return current
}

// truncate discards bytes at [to, Size()) and drops every compression
// dictionary entry recorded at or past that offset. This is the rollback
// primitive every compound append uses on failure (§4.1).
func (p *Packet) truncate(to int) {
	if to < 0 {
		to = 0
	}
	if to < len(p.buf) {
		p.buf = p.buf[:to]
		for suffix, off := range p.names {
			if off >= to {
				delete(p.names, suffix)
			}
		}
	}
	if p.rindex > len(p.buf) {
		p.rindex = len(p.buf)
	}
}

// Truncate is the exported form of truncate, for callers that need to roll
// an in-progress packet back to an earlier checkpoint (§6 "truncate").
func (p *Packet) Truncate(to int) { p.truncate(to) }

// Reset returns the packet to a freshly-constructed state, reusing its
// already-allocated backing array: the header is zeroed, the buffer shrinks
// back to HeaderSize, the read cursor and compression dictionary are
// cleared, and the extracted cache is dropped. Intended for pooled reuse
// (internal/pool) between unrelated messages.
func (p *Packet) Reset() {
	p.buf = p.buf[:HeaderSize]
	for i := range p.buf {
		p.buf[i] = 0
	}
	p.rindex = HeaderSize
	for k := range p.names {
		delete(p.names, k)
	}
	p.canonicalForm = false
	p.refuseCompression = false
	p.ifindex = 0
	p.jumpsFollowed = 0
	p.question = nil
	p.answer = nil
	p.opt = nil
	p.extracted = false
}
