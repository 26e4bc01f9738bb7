package packet

// cacheFlushBit is the mDNS top bit of the class field (RFC 6762 §10.2).
const cacheFlushBit uint16 = 0x8000

// AppendKey writes a resource key: owner name (compression allowed,
// canonical candidate), type, class (§4.5).
func (p *Packet) AppendKey(key Key) error {
	start := len(p.buf)
	if err := p.AppendName(key.Name, true, true); err != nil {
		p.truncate(start)
		return err
	}
	if err := p.AppendU16(key.Type); err != nil {
		p.truncate(start)
		return err
	}
	if err := p.AppendU16(key.Class); err != nil {
		p.truncate(start)
		return err
	}
	return nil
}

// ReadKey parses a resource key. For mDNS records other than the OPT
// pseudo-RR, the class field's top bit is the cache-flush bit: it is
// stripped from the returned Key.Class and reported separately (§4.6).
// For Dns and Llmnr the class is returned as read and cacheFlush is false.
func (p *Packet) ReadKey() (key Key, cacheFlush bool, err error) {
	start := p.rindex
	name, err := p.ReadName(true)
	if err != nil {
		p.rindex = start
		return Key{}, false, err
	}
	typ, err := p.ReadU16()
	if err != nil {
		p.rindex = start
		return Key{}, false, err
	}
	class, err := p.ReadU16()
	if err != nil {
		p.rindex = start
		return Key{}, false, err
	}

	if p.protocol == Mdns && typ != TypeOPT {
		cacheFlush = class&cacheFlushBit != 0
		class &^= cacheFlushBit
	}
	return Key{Name: name, Type: typ, Class: class}, cacheFlush, nil
}
