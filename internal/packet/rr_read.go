package packet

import "errors"

// errUnparseable signals a type-specific condition the spec treats as "not
// an error": an unknown type, or an LOC record with a version other than 0.
// ReadRR turns it into an Unparseable record carrying the raw RDATA rather
// than propagating it to the caller.
var errUnparseable = errors.New("packet: unparseable rdata")

// ReadRR parses key, TTL, RDLENGTH, then dispatches on type. The read
// cursor must land exactly at offset+rdlength when the per-type parser
// returns, or the record is Malformed (§4.6). On any failure the cursor is
// rewound to the position ReadRR was called at.
func (p *Packet) ReadRR() (*ResourceRecord, error) {
	start := p.rindex
	key, cacheFlush, err := p.ReadKey()
	if err != nil {
		p.rindex = start
		return nil, err
	}
	ttl, err := p.ReadU32()
	if err != nil {
		p.rindex = start
		return nil, err
	}
	rdlength, err := p.ReadU16()
	if err != nil {
		p.rindex = start
		return nil, err
	}
	rdataStart := p.rindex
	rdataEnd := rdataStart + int(rdlength)
	if rdataEnd > len(p.buf) {
		p.rindex = start
		return nil, ErrMalformed
	}

	rr := &ResourceRecord{Key: key, TTL: ttl, CacheFlush: cacheFlush}

	data, perr := p.readRData(key.Type, rdataEnd)
	switch {
	case perr == errUnparseable:
		rr.Unparseable = true
		rr.Raw = append([]byte(nil), p.buf[rdataStart:rdataEnd]...)
		p.rindex = rdataEnd
	case perr != nil:
		p.rindex = start
		return nil, perr
	default:
		if p.rindex != rdataEnd {
			p.rindex = start
			return nil, ErrMalformed
		}
		rr.Data = data
	}
	return rr, nil
}

func (p *Packet) readRData(typ uint16, rdataEnd int) (RRData, error) {
	switch typ {
	case TypeA:
		b, err := p.ReadBlob(4)
		if err != nil {
			return nil, err
		}
		var a DataA
		copy(a.Address[:], b)
		return a, nil

	case TypeAAAA:
		b, err := p.ReadBlob(16)
		if err != nil {
			return nil, err
		}
		var a DataAAAA
		copy(a.Address[:], b)
		return a, nil

	case TypeNS, TypeCNAME, TypeDNAME, TypePTR:
		name, err := p.ReadName(true)
		if err != nil {
			return nil, err
		}
		return DataName{Name: name}, nil

	case TypeSOA:
		mname, err := p.ReadName(true)
		if err != nil {
			return nil, err
		}
		rname, err := p.ReadName(true)
		if err != nil {
			return nil, err
		}
		var nums [5]uint32
		for i := range nums {
			nums[i], err = p.ReadU32()
			if err != nil {
				return nil, err
			}
		}
		return DataSOA{
			MName: mname, RName: rname,
			Serial: nums[0], Refresh: nums[1], Retry: nums[2],
			Expire: nums[3], Minimum: nums[4],
		}, nil

	case TypeMX:
		pref, err := p.ReadU16()
		if err != nil {
			return nil, err
		}
		exch, err := p.ReadName(true)
		if err != nil {
			return nil, err
		}
		return DataMX{Preference: pref, Exchange: exch}, nil

	case TypeSRV:
		prio, err := p.ReadU16()
		if err != nil {
			return nil, err
		}
		weight, err := p.ReadU16()
		if err != nil {
			return nil, err
		}
		port, err := p.ReadU16()
		if err != nil {
			return nil, err
		}
		target, err := p.ReadName(true)
		if err != nil {
			return nil, err
		}
		return DataSRV{Priority: prio, Weight: weight, Port: port, Target: target}, nil

	case TypeTXT, TypeSPF:
		items, err := p.readTXTItems(rdataEnd)
		if err != nil {
			return nil, err
		}
		return DataTXT{Items: items}, nil

	case TypeHINFO:
		cpu, err := p.ReadRawString()
		if err != nil {
			return nil, err
		}
		os, err := p.ReadRawString()
		if err != nil {
			return nil, err
		}
		return DataHINFO{CPU: cpu, OS: os}, nil

	case TypeLOC:
		version, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		if version != 0 {
			return nil, errUnparseable
		}
		size, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		horiz, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		vert, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		if !locSizeOK(size) || !locSizeOK(horiz) || !locSizeOK(vert) {
			return nil, ErrMalformed
		}
		lat, err := p.ReadU32()
		if err != nil {
			return nil, err
		}
		lon, err := p.ReadU32()
		if err != nil {
			return nil, err
		}
		alt, err := p.ReadU32()
		if err != nil {
			return nil, err
		}
		return DataLOC{
			Size: size, HorizPre: horiz, VertPre: vert,
			Latitude: lat, Longitude: lon, Altitude: alt,
		}, nil

	case TypeDS:
		keytag, err := p.ReadU16()
		if err != nil {
			return nil, err
		}
		alg, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		digestType, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		digest, err := p.ReadBlob(rdataEnd - p.rindex)
		if err != nil {
			return nil, err
		}
		if len(digest) == 0 {
			return nil, ErrMalformed
		}
		return DataDS{KeyTag: keytag, Algorithm: alg, DigestType: digestType,
			Digest: append([]byte(nil), digest...)}, nil

	case TypeSSHFP:
		alg, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		fptype, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		fp, err := p.ReadBlob(rdataEnd - p.rindex)
		if err != nil {
			return nil, err
		}
		if len(fp) == 0 {
			return nil, ErrMalformed
		}
		return DataSSHFP{Algorithm: alg, FPType: fptype,
			Fingerprint: append([]byte(nil), fp...)}, nil

	case TypeDNSKEY:
		flags, err := p.ReadU16()
		if err != nil {
			return nil, err
		}
		proto, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		alg, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		key, err := p.ReadBlob(rdataEnd - p.rindex)
		if err != nil {
			return nil, err
		}
		if len(key) == 0 {
			return nil, ErrMalformed
		}
		return DataDNSKEY{Flags: flags, Protocol: proto, Algorithm: alg,
			PublicKey: append([]byte(nil), key...)}, nil

	case TypeRRSIG:
		typeCovered, err := p.ReadU16()
		if err != nil {
			return nil, err
		}
		alg, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		labels, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		origTTL, err := p.ReadU32()
		if err != nil {
			return nil, err
		}
		expiration, err := p.ReadU32()
		if err != nil {
			return nil, err
		}
		inception, err := p.ReadU32()
		if err != nil {
			return nil, err
		}
		keyTag, err := p.ReadU16()
		if err != nil {
			return nil, err
		}
		signer, err := p.ReadName(false)
		if err != nil {
			return nil, err
		}
		sig, err := p.ReadBlob(rdataEnd - p.rindex)
		if err != nil {
			return nil, err
		}
		if len(sig) == 0 {
			return nil, ErrMalformed
		}
		return DataRRSIG{
			TypeCovered: typeCovered, Algorithm: alg, Labels: labels,
			OrigTTL: origTTL, Expiration: expiration, Inception: inception,
			KeyTag: keyTag, SignerName: signer,
			Signature: append([]byte(nil), sig...),
		}, nil

	case TypeNSEC:
		allowCompression := p.protocol == Mdns
		next, err := p.ReadName(allowCompression)
		if err != nil {
			return nil, err
		}
		raw, err := p.ReadBlob(rdataEnd - p.rindex)
		if err != nil {
			return nil, err
		}
		types, err := decodeBitmap(raw)
		if err != nil {
			return nil, err
		}
		return DataNSEC{NextName: next, Types: types}, nil

	case TypeNSEC3:
		alg, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		flags, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		iterations, err := p.ReadU16()
		if err != nil {
			return nil, err
		}
		saltLen, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		salt, err := p.ReadBlob(int(saltLen))
		if err != nil {
			return nil, err
		}
		hashLen, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		nextHash, err := p.ReadBlob(int(hashLen))
		if err != nil {
			return nil, err
		}
		raw, err := p.ReadBlob(rdataEnd - p.rindex)
		if err != nil {
			return nil, err
		}
		types, err := decodeBitmap(raw)
		if err != nil {
			return nil, err
		}
		return DataNSEC3{
			Algorithm: alg, Flags: flags, Iterations: iterations,
			Salt: append([]byte(nil), salt...), NextHash: append([]byte(nil), nextHash...),
			Types: types,
		}, nil

	default:
		return nil, errUnparseable
	}
}

// readTXTItems reads a sequence of length-prefixed character-strings up to
// rdataEnd. An empty RDATA (rdataEnd == current cursor) materializes as one
// zero-length item (RFC 6763 §6.1).
func (p *Packet) readTXTItems(rdataEnd int) ([][]byte, error) {
	if p.rindex == rdataEnd {
		return [][]byte{{}}, nil
	}
	var items [][]byte
	for p.rindex < rdataEnd {
		n, err := p.ReadU8()
		if err != nil {
			return nil, err
		}
		b, err := p.ReadBlob(int(n))
		if err != nil {
			return nil, err
		}
		if p.rindex > rdataEnd {
			return nil, ErrMalformed
		}
		items = append(items, append([]byte(nil), b...))
	}
	if p.rindex != rdataEnd {
		return nil, ErrMalformed
	}
	return items, nil
}

// locSizeOK validates a LOC SIZE/HORIZ_PRE/VERT_PRE byte: mantissa (high
// nibble) and exponent (low nibble) each ≤ 9, and a zero mantissa forces a
// zero exponent.
func locSizeOK(v uint8) bool {
	mantissa := v >> 4
	exponent := v & 0x0F
	if mantissa > 9 || exponent > 9 {
		return false
	}
	if mantissa == 0 && exponent != 0 {
		return false
	}
	return true
}
