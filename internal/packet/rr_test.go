package packet

import (
	"errors"
	"testing"
)

func appendAndReadBack(t *testing.T, rr *ResourceRecord) *ResourceRecord {
	t.Helper()
	p := New(Dns, 1500)
	if err := p.AppendRR(rr); err != nil {
		t.Fatalf("AppendRR: %v", err)
	}
	if err := p.Rewind(HeaderSize); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	got, err := p.ReadRR()
	if err != nil {
		t.Fatalf("ReadRR: %v", err)
	}
	return got
}

func TestAppendReadRR_A(t *testing.T) {
	rr := &ResourceRecord{
		Key:  Key{Name: "example.com.", Type: TypeA, Class: ClassIN},
		TTL:  300,
		Data: DataA{Address: [4]byte{93, 184, 216, 34}},
	}
	got := appendAndReadBack(t, rr)
	if got.Key != rr.Key || got.TTL != rr.TTL {
		t.Fatalf("key/ttl mismatch: %+v", got)
	}
	d, ok := got.Data.(DataA)
	if !ok || d.Address != rr.Data.(DataA).Address {
		t.Fatalf("DataA mismatch: %+v", got.Data)
	}
}

func TestAppendReadRR_SOA(t *testing.T) {
	rr := &ResourceRecord{
		Key: Key{Name: "example.com.", Type: TypeSOA, Class: ClassIN},
		TTL: 3600,
		Data: DataSOA{
			MName: "ns1.example.com.", RName: "hostmaster.example.com.",
			Serial: 2024010100, Refresh: 7200, Retry: 3600, Expire: 1209600, Minimum: 300,
		},
	}
	got := appendAndReadBack(t, rr)
	d, ok := got.Data.(DataSOA)
	if !ok || d != rr.Data.(DataSOA) {
		t.Fatalf("DataSOA mismatch: %+v", got.Data)
	}
}

func TestAppendReadRR_SRVCompressesTarget(t *testing.T) {
	p := New(Dns, 1500)
	if err := p.AppendName("example.com.", true, false); err != nil {
		t.Fatalf("priming AppendName: %v", err)
	}
	rr := &ResourceRecord{
		Key:  Key{Name: "_sip._tcp.example.com.", Type: TypeSRV, Class: ClassIN},
		TTL:  60,
		Data: DataSRV{Priority: 10, Weight: 20, Port: 5060, Target: "example.com."},
	}
	if err := p.AppendRR(rr); err != nil {
		t.Fatalf("AppendRR: %v", err)
	}
	// The SRV target should have compressed to a pointer rather than
	// re-encoding "example.com." literally (§9: preserved, non-RFC2782
	// behavior).
	wire := p.Bytes()
	lastTwo := wire[len(wire)-2:]
	if lastTwo[0]&0xC0 != 0xC0 {
		t.Fatalf("expected SRV target to end in a compression pointer, got %02x", lastTwo[0])
	}
}

func TestAppendReadRR_TXTEmpty(t *testing.T) {
	rr := &ResourceRecord{
		Key:  Key{Name: "example.com.", Type: TypeTXT, Class: ClassIN},
		TTL:  60,
		Data: DataTXT{},
	}
	got := appendAndReadBack(t, rr)
	d, ok := got.Data.(DataTXT)
	if !ok {
		t.Fatalf("expected DataTXT, got %T", got.Data)
	}
	if len(d.Items) != 1 || len(d.Items[0]) != 0 {
		t.Fatalf("empty TXT should round-trip as one zero-length item, got %+v", d.Items)
	}
}

func TestAppendReadRR_TXTMultipleItems(t *testing.T) {
	rr := &ResourceRecord{
		Key:  Key{Name: "example.com.", Type: TypeTXT, Class: ClassIN},
		TTL:  60,
		Data: DataTXT{Items: [][]byte{[]byte("v=spf1"), []byte("a"), {}}},
	}
	got := appendAndReadBack(t, rr)
	d := got.Data.(DataTXT)
	if len(d.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(d.Items))
	}
}

// S6: a LOC record with version != 0 must parse as unparseable with the
// original RDATA preserved, and re-serialize byte-for-byte.
func TestReadRR_LOCUnparseableVersion(t *testing.T) {
	p := New(Dns, 1500)
	key := Key{Name: "example.com.", Type: TypeLOC, Class: ClassIN}
	if err := p.AppendKey(key); err != nil {
		t.Fatalf("AppendKey: %v", err)
	}
	if err := p.AppendU32(60); err != nil {
		t.Fatalf("AppendU32(ttl): %v", err)
	}
	rdata := []byte{1, 0x13, 0x16, 0x13, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0} // version=1
	if err := p.AppendU16(uint16(len(rdata))); err != nil {
		t.Fatalf("AppendU16(rdlength): %v", err)
	}
	if err := p.AppendBlob(rdata); err != nil {
		t.Fatalf("AppendBlob: %v", err)
	}

	if err := p.Rewind(HeaderSize); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	rr, err := p.ReadRR()
	if err != nil {
		t.Fatalf("ReadRR: %v", err)
	}
	if !rr.Unparseable {
		t.Fatal("expected Unparseable=true for LOC version != 0")
	}
	if string(rr.Raw) != string(rdata) {
		t.Fatalf("Raw = %v, want original rdata %v", rr.Raw, rdata)
	}

	out := New(Dns, 1500)
	if err := out.AppendRR(rr); err != nil {
		t.Fatalf("re-serializing unparseable RR: %v", err)
	}
	reencoded := out.Bytes()[len(out.Bytes())-len(rdata):]
	if string(reencoded) != string(rdata) {
		t.Fatalf("re-encoded rdata = %v, want %v", reencoded, rdata)
	}
}

func TestReadRR_ParserOverrunsRDLength(t *testing.T) {
	p := New(Dns, 1500)
	key := Key{Name: "example.com.", Type: TypeA, Class: ClassIN}
	if err := p.AppendKey(key); err != nil {
		t.Fatalf("AppendKey: %v", err)
	}
	if err := p.AppendU32(60); err != nil {
		t.Fatalf("AppendU32: %v", err)
	}
	// Declare RDLENGTH=3 but the A parser always consumes exactly 4 bytes.
	if err := p.AppendU16(3); err != nil {
		t.Fatalf("AppendU16: %v", err)
	}
	if err := p.AppendBlob([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("AppendBlob: %v", err)
	}

	if err := p.Rewind(HeaderSize); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	start := p.Rindex()
	_, err := p.ReadRR()
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("ReadRR() error = %v, want ErrMalformed", err)
	}
	if p.Rindex() != start {
		t.Fatalf("Rindex() = %d after failed ReadRR, want restored to %d", p.Rindex(), start)
	}
}

func TestReadRR_RDLengthOverflowsBuffer(t *testing.T) {
	p := New(Dns, 1500)
	key := Key{Name: "example.com.", Type: TypeA, Class: ClassIN}
	if err := p.AppendKey(key); err != nil {
		t.Fatalf("AppendKey: %v", err)
	}
	if err := p.AppendU32(60); err != nil {
		t.Fatalf("AppendU32: %v", err)
	}
	if err := p.AppendU16(1000); err != nil { // far beyond any remaining bytes
		t.Fatalf("AppendU16: %v", err)
	}

	if err := p.Rewind(HeaderSize); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	_, err := p.ReadRR()
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("ReadRR() error = %v, want ErrMalformed", err)
	}
}

func TestAppendRR_OptTooSmallUDPSizeRejected(t *testing.T) {
	p := New(Dns, 1500)
	if err := p.AppendOptRR(511, 0, 0, true); err == nil {
		t.Fatal("expected error for max UDP size < 512")
	}
	if p.Size() != HeaderSize {
		t.Fatalf("Size() = %d after failed AppendOptRR, want unchanged %d", p.Size(), HeaderSize)
	}
}

func TestAppendRR_OptRoundTripViaExtract(t *testing.T) {
	p := New(Dns, 1500)
	if err := p.AppendOptRR(4096, 0, 0, true); err != nil {
		t.Fatalf("AppendOptRR: %v", err)
	}
	p.SetARCount(1)
	if err := p.Extract(); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	opt := p.Opt()
	if opt == nil {
		t.Fatal("expected a populated OptRecord")
	}
	if opt.MaxUDPSize != 4096 || !opt.DNSSECOk {
		t.Fatalf("opt = %+v, want MaxUDPSize=4096 DNSSECOk=true", opt)
	}
}

func TestAppendReadRR_DSRejectsEmptyDigest(t *testing.T) {
	p := New(Dns, 1500)
	key := Key{Name: "example.com.", Type: TypeDS, Class: ClassIN}
	if err := p.AppendKey(key); err != nil {
		t.Fatalf("AppendKey: %v", err)
	}
	if err := p.AppendU32(60); err != nil {
		t.Fatalf("AppendU32: %v", err)
	}
	if err := p.AppendU16(4); err != nil { // key_tag+alg+digest_type, no digest
		t.Fatalf("AppendU16(rdlength): %v", err)
	}
	if err := p.AppendU16(12345); err != nil {
		t.Fatalf("AppendU16(keytag): %v", err)
	}
	if err := p.AppendU8(8); err != nil {
		t.Fatalf("AppendU8(alg): %v", err)
	}
	if err := p.AppendU8(2); err != nil {
		t.Fatalf("AppendU8(digesttype): %v", err)
	}

	if err := p.Rewind(HeaderSize); err != nil {
		t.Fatalf("Rewind: %v", err)
	}
	_, err := p.ReadRR()
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("ReadRR() error = %v, want ErrMalformed for empty DS digest", err)
	}
}
