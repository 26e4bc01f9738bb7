package packet

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// AppendName writes name (escaped-text form, e.g. "foo.bar.example.") as a
// sequence of length-prefixed labels terminated by a zero byte, applying
// name compression and IDNA/canonical-form normalization per §4.3.
//
// When allowCompression is true, each remaining suffix is looked up in the
// packet's compression dictionary; a hit emits a 2-byte pointer and stops.
// Otherwise the label is unescaped, IDNA-converted for the packet's
// protocol, optionally lowercased (canonical form), and written out, with
// its starting offset recorded against the suffix for later reuse.
func (p *Packet) AppendName(name string, allowCompression, canonicalCandidate bool) error {
	if p.refuseCompression {
		allowCompression = false
	}
	start := len(p.buf)

	labels, err := splitEscapedName(name)
	if err != nil {
		p.truncate(start)
		return err
	}

	for i := 0; i <= len(labels); i++ {
		if i == len(labels) {
			// The terminating zero byte counts toward the 255-byte wire
			// total too: a name whose labels alone sum to exactly
			// MaxNameLength must still be rejected once the terminator
			// is added.
			if len(p.buf)-start+1 > MaxNameLength {
				p.truncate(start)
				return ErrNameTooLong
			}
			if err := p.AppendU8(0); err != nil {
				p.truncate(start)
				return err
			}
			return nil
		}

		suffix := joinLabels(labels[i:])
		if allowCompression {
			if off, ok := p.names[suffix]; ok {
				if err := p.AppendU16(0xC000 | uint16(off)); err != nil {
					p.truncate(start)
					return err
				}
				return nil
			}
		}

		labelOffset := len(p.buf)
		if err := p.appendEscapedLabel(labels[i], canonicalCandidate); err != nil {
			p.truncate(start)
			return err
		}
		if len(p.buf)-start+1 > MaxNameLength {
			p.truncate(start)
			return ErrNameTooLong
		}
		if allowCompression && labelOffset <= MaxCompressionOffset {
			p.names[suffix] = labelOffset
		}
	}
	return nil
}

// AppendLabel writes a single label (no compression, no terminator),
// applying the same unescape/IDNA/canonical-form rules as AppendName. It is
// the primitive AppendName is built from, exposed for collaborators that
// assemble names a label at a time.
func (p *Packet) AppendLabel(label string, canonicalCandidate bool) error {
	start := len(p.buf)
	if err := p.appendEscapedLabel(label, canonicalCandidate); err != nil {
		p.truncate(start)
		return err
	}
	return nil
}

func (p *Packet) appendEscapedLabel(label string, canonicalCandidate bool) error {
	raw, err := unescapeLabel(label)
	if err != nil {
		return err
	}
	if len(raw) > MaxLabelLength {
		return ErrNameTooLong
	}

	converted, err := p.convertLabel(string(raw))
	if err != nil {
		return err
	}
	out := []byte(converted)
	if len(out) > MaxLabelLength {
		return ErrNameTooLong
	}
	if p.canonicalForm && canonicalCandidate {
		out = lowerASCII(out)
	}

	if err := p.AppendU8(uint8(len(out))); err != nil {
		return err
	}
	return p.AppendBlob(out)
}

// convertLabel applies the protocol's IDNA direction (§4.3): ToASCII for
// classic DNS, ToUnicode (U-label form) for mDNS/LLMNR.
func (p *Packet) convertLabel(raw string) (string, error) {
	switch p.protocol {
	case Dns:
		out, err := idna.ToASCII(raw)
		if err != nil {
			return "", ErrMalformed
		}
		return out, nil
	case Mdns, Llmnr:
		out, err := idna.ToUnicode(raw)
		if err != nil {
			return "", ErrMalformed
		}
		return out, nil
	default:
		return raw, nil
	}
}

// ReadName parses a length-prefixed label sequence into escaped-text form,
// following compression pointers when allowCompression is set (§4.3).
//
// Each pointer target must be both ≥ HeaderSize and strictly less than the
// current jump barrier; the barrier starts at the name's own offset and
// becomes the pointer's target after each jump, so every jump strictly
// decreases it. This alone rules out both loops and forward references,
// with no separate visited-offset set needed.
func (p *Packet) ReadName(allowCompression bool) (string, error) {
	if p.refuseCompression {
		allowCompression = false
	}
	start := p.rindex
	barrier := start
	restoreCursor := -1
	var labels []string
	wireLen := 0

	for {
		if p.rindex >= len(p.buf) {
			p.rindex = start
			return "", ErrTruncated
		}
		b := p.buf[p.rindex]

		switch {
		case b == 0:
			p.rindex++
			if restoreCursor < 0 {
				restoreCursor = p.rindex
			}
			p.rindex = restoreCursor
			if wireLen+1 > MaxNameLength {
				p.rindex = start
				return "", ErrNameTooLong
			}
			return joinLabels(labels), nil

		case b <= 63:
			n := int(b)
			if p.rindex+1+n > len(p.buf) {
				p.rindex = start
				return "", ErrTruncated
			}
			lbl := p.buf[p.rindex+1 : p.rindex+1+n]
			labels = append(labels, escapeLabel(lbl))
			wireLen += 1 + n
			if wireLen > MaxNameLength {
				p.rindex = start
				return "", ErrNameTooLong
			}
			p.rindex += 1 + n

		case b >= 0xC0:
			if !allowCompression {
				p.rindex = start
				return "", ErrMalformed
			}
			if p.rindex+2 > len(p.buf) {
				p.rindex = start
				return "", ErrTruncated
			}
			ptr := int(b&0x3F)<<8 | int(p.buf[p.rindex+1])
			if restoreCursor < 0 {
				restoreCursor = p.rindex + 2
			}
			if ptr < HeaderSize || ptr >= barrier {
				p.rindex = start
				return "", ErrMalformed
			}
			barrier = ptr
			p.rindex = ptr
			p.jumpsFollowed++

		default:
			p.rindex = start
			return "", ErrMalformed
		}
	}
}

// --- escaped-text helpers -------------------------------------------------

// splitEscapedName splits an escaped-text domain name into its labels,
// leaving each label's escape sequences intact. A trailing unescaped dot
// (the usual FQDN convention) produces no trailing empty label. The root
// name ("." or "") splits into zero labels.
func splitEscapedName(name string) ([]string, error) {
	if name == "." || name == "" {
		return nil, nil
	}
	var labels []string
	var cur strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch c {
		case '\\':
			if i+1 >= len(name) {
				return nil, ErrMalformed
			}
			if i+3 < len(name) && isDigit(name[i+1]) && isDigit(name[i+2]) && isDigit(name[i+3]) {
				cur.WriteByte('\\')
				cur.WriteByte(name[i+1])
				cur.WriteByte(name[i+2])
				cur.WriteByte(name[i+3])
				i += 3
			} else {
				cur.WriteByte('\\')
				cur.WriteByte(name[i+1])
				i++
			}
		case '.':
			labels = append(labels, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		labels = append(labels, cur.String())
	}
	return labels, nil
}

// joinLabels renders already-escaped labels back into dotted FQDN text.
func joinLabels(labels []string) string {
	if len(labels) == 0 {
		return "."
	}
	return strings.Join(labels, ".") + "."
}

// unescapeLabel turns one escaped-text label into its raw wire bytes:
// "\DDD" is a decimal byte value, "\X" is a literal character, anything
// else passes through unchanged.
func unescapeLabel(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		if i+1 >= len(s) {
			return nil, ErrMalformed
		}
		if i+3 < len(s) && isDigit(s[i+1]) && isDigit(s[i+2]) && isDigit(s[i+3]) {
			v := int(s[i+1]-'0')*100 + int(s[i+2]-'0')*10 + int(s[i+3]-'0')
			if v > 255 {
				return nil, ErrMalformed
			}
			out = append(out, byte(v))
			i += 3
		} else {
			out = append(out, s[i+1])
			i++
		}
	}
	return out, nil
}

// escapeLabel renders one raw wire label into escaped text: '.' and '\\'
// get a literal backslash escape, other non-printable-ASCII bytes get a
// "\DDD" decimal escape, everything else passes through.
func escapeLabel(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		switch {
		case c == '.' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&sb, "\\%03d", c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func lowerASCII(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}
