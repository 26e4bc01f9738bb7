package packet

import "encoding/binary"

// AppendRR writes key, TTL and a placeholder RDLENGTH, dispatches on
// rr.Key.Type to serialize the RDATA, then backpatches the real RDLENGTH
// without disturbing the rest of the buffer (§4.5). On any failure the
// packet is truncated to its size on entry.
func (p *Packet) AppendRR(rr *ResourceRecord) error {
	start := len(p.buf)
	if err := p.AppendKey(rr.Key); err != nil {
		p.truncate(start)
		return err
	}
	if err := p.AppendU32(rr.TTL); err != nil {
		p.truncate(start)
		return err
	}
	rdlenOffset := len(p.buf)
	if err := p.AppendU16(0); err != nil {
		p.truncate(start)
		return err
	}
	rdataStart := len(p.buf)

	var err error
	switch {
	case rr.Unparseable || rr.Data == nil:
		err = p.AppendBlob(rr.Raw)
	default:
		err = p.appendRData(rr.Data)
	}
	if err != nil {
		p.truncate(start)
		return err
	}

	rdlen := len(p.buf) - rdataStart
	if rdlen > MaxRDataLength {
		p.truncate(start)
		return ErrMessageTooBig
	}
	binary.BigEndian.PutUint16(p.buf[rdlenOffset:rdlenOffset+2], uint16(rdlen))
	return nil
}

func (p *Packet) appendRData(data RRData) error {
	switch d := data.(type) {
	case DataA:
		return p.AppendBlob(d.Address[:])
	case DataAAAA:
		return p.AppendBlob(d.Address[:])
	case DataName:
		return p.AppendName(d.Name, true, false)
	case DataSOA:
		return p.appendSOA(d)
	case DataMX:
		return p.appendMX(d)
	case DataSRV:
		return p.appendSRV(d)
	case DataTXT:
		return p.appendTXT(d)
	case DataHINFO:
		return p.appendHINFO(d)
	case DataLOC:
		return p.appendLOC(d)
	case DataDS:
		return p.appendDS(d)
	case DataSSHFP:
		return p.appendSSHFP(d)
	case DataDNSKEY:
		return p.appendDNSKEY(d)
	case DataRRSIG:
		return p.appendRRSIG(d)
	case DataNSEC:
		return p.appendNSEC(d)
	case DataNSEC3:
		return p.appendNSEC3(d)
	case DataBlob:
		return p.AppendBlob(d.Raw)
	default:
		return ErrMalformed
	}
}

func (p *Packet) appendSOA(d DataSOA) error {
	if err := p.AppendName(d.MName, true, false); err != nil {
		return err
	}
	if err := p.AppendName(d.RName, true, false); err != nil {
		return err
	}
	for _, v := range []uint32{d.Serial, d.Refresh, d.Retry, d.Expire, d.Minimum} {
		if err := p.AppendU32(v); err != nil {
			return err
		}
	}
	return nil
}

func (p *Packet) appendMX(d DataMX) error {
	if err := p.AppendU16(d.Preference); err != nil {
		return err
	}
	return p.AppendName(d.Exchange, true, false)
}

// appendSRV compresses the target name. RFC 2782 forbids this; the widely
// deployed behavior permits it and this codec preserves that (§9).
func (p *Packet) appendSRV(d DataSRV) error {
	if err := p.AppendU16(d.Priority); err != nil {
		return err
	}
	if err := p.AppendU16(d.Weight); err != nil {
		return err
	}
	if err := p.AppendU16(d.Port); err != nil {
		return err
	}
	return p.AppendName(d.Target, true, false)
}

func (p *Packet) appendTXT(d DataTXT) error {
	if len(d.Items) == 0 {
		return p.AppendU8(0)
	}
	for _, item := range d.Items {
		if len(item) > 255 {
			return ErrMalformed
		}
		if err := p.AppendU8(uint8(len(item))); err != nil {
			return err
		}
		if err := p.AppendBlob(item); err != nil {
			return err
		}
	}
	return nil
}

func (p *Packet) appendHINFO(d DataHINFO) error {
	if err := p.AppendRawString(d.CPU); err != nil {
		return err
	}
	return p.AppendRawString(d.OS)
}

func (p *Packet) appendLOC(d DataLOC) error {
	if err := p.AppendU8(0); err != nil { // version
		return err
	}
	if err := p.AppendU8(d.Size); err != nil {
		return err
	}
	if err := p.AppendU8(d.HorizPre); err != nil {
		return err
	}
	if err := p.AppendU8(d.VertPre); err != nil {
		return err
	}
	if err := p.AppendU32(d.Latitude); err != nil {
		return err
	}
	if err := p.AppendU32(d.Longitude); err != nil {
		return err
	}
	return p.AppendU32(d.Altitude)
}

func (p *Packet) appendDS(d DataDS) error {
	if err := p.AppendU16(d.KeyTag); err != nil {
		return err
	}
	if err := p.AppendU8(d.Algorithm); err != nil {
		return err
	}
	if err := p.AppendU8(d.DigestType); err != nil {
		return err
	}
	return p.AppendBlob(d.Digest)
}

func (p *Packet) appendSSHFP(d DataSSHFP) error {
	if err := p.AppendU8(d.Algorithm); err != nil {
		return err
	}
	if err := p.AppendU8(d.FPType); err != nil {
		return err
	}
	return p.AppendBlob(d.Fingerprint)
}

func (p *Packet) appendDNSKEY(d DataDNSKEY) error {
	if err := p.AppendU16(d.Flags); err != nil {
		return err
	}
	if err := p.AppendU8(d.Protocol); err != nil {
		return err
	}
	if err := p.AppendU8(d.Algorithm); err != nil {
		return err
	}
	return p.AppendBlob(d.PublicKey)
}

func (p *Packet) appendRRSIG(d DataRRSIG) error {
	if err := p.AppendU16(d.TypeCovered); err != nil {
		return err
	}
	if err := p.AppendU8(d.Algorithm); err != nil {
		return err
	}
	if err := p.AppendU8(d.Labels); err != nil {
		return err
	}
	if err := p.AppendU32(d.OrigTTL); err != nil {
		return err
	}
	if err := p.AppendU32(d.Expiration); err != nil {
		return err
	}
	if err := p.AppendU32(d.Inception); err != nil {
		return err
	}
	if err := p.AppendU16(d.KeyTag); err != nil {
		return err
	}
	// Uncompressed, canonical-form candidate (RFC 4034 §6.2).
	if err := p.AppendName(d.SignerName, false, true); err != nil {
		return err
	}
	return p.AppendBlob(d.Signature)
}

func (p *Packet) appendNSEC(d DataNSEC) error {
	// RFC 3845 §2.1.1 forbids compression for classic DNS; RFC 6762
	// §18.14 requires it for mDNS. Protocol-conditional by design (§9).
	allowCompression := p.protocol == Mdns
	if err := p.AppendName(d.NextName, allowCompression, false); err != nil {
		return err
	}
	return p.AppendBlob(encodeBitmap(d.Types))
}

func (p *Packet) appendNSEC3(d DataNSEC3) error {
	if err := p.AppendU8(d.Algorithm); err != nil {
		return err
	}
	if err := p.AppendU8(d.Flags); err != nil {
		return err
	}
	if err := p.AppendU16(d.Iterations); err != nil {
		return err
	}
	if len(d.Salt) > 255 {
		return ErrMalformed
	}
	if err := p.AppendU8(uint8(len(d.Salt))); err != nil {
		return err
	}
	if err := p.AppendBlob(d.Salt); err != nil {
		return err
	}
	if len(d.NextHash) > 255 {
		return ErrMalformed
	}
	if err := p.AppendU8(uint8(len(d.NextHash))); err != nil {
		return err
	}
	if err := p.AppendBlob(d.NextHash); err != nil {
		return err
	}
	return p.AppendBlob(encodeBitmap(d.Types))
}

// AppendOptRR writes the EDNS(0) OPT pseudo-RR header (§4.5): owner=root,
// type=OPT, class=maxUDPSize, TTL packs ext-rcode/version/flags, RDLENGTH=0.
// Only the DO bit is supported in flags; maxUDPSize must be ≥ 512 (§6).
func (p *Packet) AppendOptRR(maxUDPSize uint16, extRcode, version uint8, doBit bool) error {
	start := len(p.buf)
	if maxUDPSize < DefaultUDPPayloadSize {
		return ErrMalformed
	}
	if err := p.AppendName(".", false, false); err != nil {
		p.truncate(start)
		return err
	}
	if err := p.AppendU16(TypeOPT); err != nil {
		p.truncate(start)
		return err
	}
	if err := p.AppendU16(maxUDPSize); err != nil {
		p.truncate(start)
		return err
	}
	flags := uint32(extRcode)<<24 | uint32(version)<<16
	if doBit {
		flags |= 0x8000
	}
	if err := p.AppendU32(flags); err != nil {
		p.truncate(start)
		return err
	}
	if err := p.AppendU16(0); err != nil {
		p.truncate(start)
		return err
	}
	return nil
}
