package packet

import "strings"

// Validate checks only the size invariant (§4.8): 12 ≤ Size ≤ 65535.
func (p *Packet) Validate() error {
	if p.Size() < HeaderSize || p.Size() > MaxMessageSize {
		return ErrMalformed
	}
	return nil
}

// ValidateReply reports whether p looks like a reply. A QR-bit mismatch is
// reported as (false, nil) — "not a reply" is a value, not an error; every
// other violation is a real Malformed error (§4.8).
func (p *Packet) ValidateReply() (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	if !p.QR() {
		return false, nil
	}
	if p.Opcode() != 0 {
		return false, ErrMalformed
	}
	switch p.protocol {
	case Llmnr:
		if p.QDCount() != 1 {
			return false, ErrMalformed
		}
	case Mdns:
		if p.Rcode() != 0 {
			return false, ErrMalformed
		}
	}
	return true, nil
}

// ValidateQuery reports whether p looks like a query, symmetric to
// ValidateReply (§4.8).
func (p *Packet) ValidateQuery() (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	if p.QR() {
		return false, nil
	}
	if p.Opcode() != 0 {
		return false, ErrMalformed
	}
	if p.TC() {
		return false, ErrMalformed
	}
	switch p.protocol {
	case Llmnr:
		if p.QDCount() != 1 || p.ANCount() != 0 || p.NSCount() != 0 {
			return false, ErrMalformed
		}
	case Mdns:
		if p.AA() || p.RD() || p.RA() || p.AD() || p.CD() || p.Rcode() != 0 {
			return false, ErrMalformed
		}
	}
	return true, nil
}

// IsReplyFor reports whether p validates as a reply to exactly one
// question matching key by case-insensitive name, type and class (§4.8).
func (p *Packet) IsReplyFor(key Key) (bool, error) {
	ok, err := p.ValidateReply()
	if err != nil || !ok {
		return false, err
	}
	if err := p.Extract(); err != nil {
		return false, err
	}
	if len(p.question) != 1 {
		return false, nil
	}
	q := p.question[0].Key
	if !strings.EqualFold(q.Name, key.Name) {
		return false, nil
	}
	if q.Type != key.Type || q.Class != key.Class {
		return false, nil
	}
	return true, nil
}
