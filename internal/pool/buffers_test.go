package pool

import (
	"testing"

	"github.com/dnsscience/dnscodec/internal/packet"
)

func TestPacketPoolRoundTrip(t *testing.T) {
	p := GetPacket(packet.Dns, 1500)
	if p == nil {
		t.Fatal("GetPacket() returned nil")
	}

	if err := p.AppendKey(packet.Key{Name: "example.com.", Type: packet.TypeA, Class: packet.ClassIN}); err != nil {
		t.Fatalf("AppendKey: %v", err)
	}
	p.SetQDCount(1)

	PutPacket(p)

	p2 := GetPacket(packet.Dns, 1500)
	if p2.Size() != packet.HeaderSize {
		t.Errorf("pooled packet not reset: Size() = %d, want %d", p2.Size(), packet.HeaderSize)
	}
	if p2.QDCount() != 0 {
		t.Errorf("pooled packet not reset: QDCount() = %d, want 0", p2.QDCount())
	}
}

func TestPacketPoolKeepsProtocolSeparate(t *testing.T) {
	p := GetPacket(packet.Mdns, 512)
	if p.Protocol() != packet.Mdns {
		t.Fatalf("Protocol() = %v, want Mdns", p.Protocol())
	}
	PutPacket(p)
}

func TestPutPacketNil(t *testing.T) {
	PutPacket(nil) // must not panic
}

func TestSmallBufferPool(t *testing.T) {
	buf := GetSmallBuffer()
	if len(buf) != SmallBufferSize {
		t.Errorf("buffer size = %d, want %d", len(buf), SmallBufferSize)
	}

	copy(buf, []byte("test data"))
	PutSmallBuffer(buf)

	buf2 := GetSmallBuffer()
	if len(buf2) != SmallBufferSize {
		t.Errorf("buffer size = %d, want %d", len(buf2), SmallBufferSize)
	}
}

func TestMediumBufferPool(t *testing.T) {
	buf := GetMediumBuffer()
	if len(buf) != MediumBufferSize {
		t.Errorf("buffer size = %d, want %d", len(buf), MediumBufferSize)
	}

	PutMediumBuffer(buf)

	buf2 := GetMediumBuffer()
	if len(buf2) != MediumBufferSize {
		t.Errorf("buffer size = %d, want %d", len(buf2), MediumBufferSize)
	}
}

func TestLargeBufferPool(t *testing.T) {
	buf := GetLargeBuffer()
	if len(buf) != LargeBufferSize {
		t.Errorf("buffer size = %d, want %d", len(buf), LargeBufferSize)
	}

	PutLargeBuffer(buf)

	buf2 := GetLargeBuffer()
	if len(buf2) != LargeBufferSize {
		t.Errorf("buffer size = %d, want %d", len(buf2), LargeBufferSize)
	}
}

func TestGetBuffer(t *testing.T) {
	tests := []struct {
		size        int
		expectedCap int
	}{
		{100, SmallBufferSize},
		{512, SmallBufferSize},
		{1024, MediumBufferSize},
		{4096, MediumBufferSize},
		{8192, LargeBufferSize},
		{65535, LargeBufferSize},
	}

	for _, tt := range tests {
		buf := GetBuffer(tt.size)
		if cap(buf) != tt.expectedCap {
			t.Errorf("GetBuffer(%d) cap = %d, want %d", tt.size, cap(buf), tt.expectedCap)
		}
		PutBuffer(buf)
	}
}

func TestPutBuffer(t *testing.T) {
	small := GetSmallBuffer()
	PutBuffer(small)

	medium := GetMediumBuffer()
	PutBuffer(medium)

	large := GetLargeBuffer()
	PutBuffer(large)

	// Weird size - should be ignored
	weird := make([]byte, 1234)
	PutBuffer(weird) // Should not panic
}

func TestPutSmallBuffer_Undersized(t *testing.T) {
	small := make([]byte, 100)
	PutSmallBuffer(small) // Should not panic or pool an undersized buffer
}

func TestResetPools(t *testing.T) {
	p := GetPacket(packet.Dns, 1500)
	buf := GetSmallBuffer()

	ResetPools()

	p2 := GetPacket(packet.Dns, 1500)
	if p2 == nil {
		t.Error("GetPacket() failed after ResetPools")
	}

	buf2 := GetSmallBuffer()
	if len(buf2) != SmallBufferSize {
		t.Error("GetSmallBuffer() failed after ResetPools")
	}

	PutPacket(p)
	PutPacket(p2)
	PutSmallBuffer(buf)
	PutSmallBuffer(buf2)
}

func BenchmarkPacketPool(b *testing.B) {
	for i := 0; i < b.N; i++ {
		p := GetPacket(packet.Dns, 1500)
		_ = p.AppendKey(packet.Key{Name: "example.com.", Type: packet.TypeA, Class: packet.ClassIN})
		PutPacket(p)
	}
}

func BenchmarkPacketNew(b *testing.B) {
	for i := 0; i < b.N; i++ {
		p := packet.New(packet.Dns, 1500)
		_ = p.AppendKey(packet.Key{Name: "example.com.", Type: packet.TypeA, Class: packet.ClassIN})
	}
}

func BenchmarkSmallBufferPool(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buf := GetSmallBuffer()
		PutSmallBuffer(buf)
	}
}

func BenchmarkMediumBufferPool(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buf := GetMediumBuffer()
		PutMediumBuffer(buf)
	}
}

func BenchmarkLargeBufferPool(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buf := GetLargeBuffer()
		PutLargeBuffer(buf)
	}
}
