package packet

import "testing"

func TestSetFlagsDns(t *testing.T) {
	p := New(Dns, 512)
	if err := p.SetFlags(true, false); err != nil {
		t.Fatalf("SetFlags: %v", err)
	}
	if p.buf[2] != 0x01 || p.buf[3] != 0x10 {
		t.Fatalf("flags = %02x %02x, want 01 10", p.buf[2], p.buf[3])
	}
	if !p.RD() || !p.CD() || p.QR() || p.AA() || p.TC() {
		t.Errorf("unexpected flag accessor results: RD=%v CD=%v QR=%v AA=%v TC=%v",
			p.RD(), p.CD(), p.QR(), p.AA(), p.TC())
	}
}

func TestSetFlagsDnsRejectsTruncated(t *testing.T) {
	p := New(Dns, 512)
	if err := p.SetFlags(false, true); err == nil {
		t.Error("expected error setting truncated=true on a Dns packet")
	}
}

func TestSetFlagsLlmnrAlwaysZero(t *testing.T) {
	p := New(Llmnr, 512)
	if err := p.SetFlags(true, false); err != nil {
		t.Fatalf("SetFlags: %v", err)
	}
	if p.buf[2] != 0 || p.buf[3] != 0 {
		t.Fatalf("LLMNR flags must be all zero, got %02x %02x", p.buf[2], p.buf[3])
	}
}

func TestSetFlagsMdnsTruncated(t *testing.T) {
	p := New(Mdns, 512)
	if err := p.SetFlags(false, true); err != nil {
		t.Fatalf("SetFlags: %v", err)
	}
	if !p.TC() {
		t.Error("expected TC set for a truncated mDNS message")
	}
}

func TestHeaderCounts(t *testing.T) {
	p := New(Dns, 512)
	p.SetID(0x1234)
	p.SetQDCount(1)
	p.SetANCount(2)
	p.SetNSCount(3)
	p.SetARCount(4)

	if p.ID() != 0x1234 {
		t.Errorf("ID() = %#x, want 0x1234", p.ID())
	}
	if p.QDCount() != 1 || p.ANCount() != 2 || p.NSCount() != 3 || p.ARCount() != 4 {
		t.Errorf("counts = %d/%d/%d/%d, want 1/2/3/4",
			p.QDCount(), p.ANCount(), p.NSCount(), p.ARCount())
	}
}

func TestOpcodeAndRcodeExtraction(t *testing.T) {
	p := New(Dns, 512)
	p.buf[2] = 0x78 // OPCODE=15 (0xF << 3), all other bits 0
	p.buf[3] = 0x0F // RCODE=15
	if p.Opcode() != 15 {
		t.Errorf("Opcode() = %d, want 15", p.Opcode())
	}
	if p.Rcode() != 15 {
		t.Errorf("Rcode() = %d, want 15", p.Rcode())
	}
}
