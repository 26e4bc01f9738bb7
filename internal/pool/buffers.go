package pool

import (
	"sync"

	"github.com/dnsscience/dnscodec/internal/packet"
)

// Packet and buffer pools to reduce GC pressure. Critical for
// high-throughput resolvers processing millions of queries.

const (
	// Buffer sizes for different use cases
	SmallBufferSize  = 512   // UDP DNS queries (most common)
	MediumBufferSize = 4096  // EDNS0 responses
	LargeBufferSize  = 65535 // Maximum DNS message size
)

// packetPools holds one sync.Pool per protocol, since a pooled Packet's
// protocol is fixed at construction and must match what the caller asks
// for back out.
var packetPools = map[packet.Protocol]*sync.Pool{
	packet.Dns:   {New: func() interface{} { return packet.New(packet.Dns, MediumBufferSize) }},
	packet.Mdns:  {New: func() interface{} { return packet.New(packet.Mdns, MediumBufferSize) }},
	packet.Llmnr: {New: func() interface{} { return packet.New(packet.Llmnr, MediumBufferSize) }},
}

// GetPacket gets a Packet for protocol from the pool. Packets the pool
// allocates are sized from a MediumBufferSize MTU hint; mtu is used only
// for a protocol that has no pool.
func GetPacket(protocol packet.Protocol, mtu int) *packet.Packet {
	pl, ok := packetPools[protocol]
	if !ok {
		return packet.New(protocol, mtu)
	}
	return pl.Get().(*packet.Packet)
}

// PutPacket returns a Packet to its protocol's pool. The packet is reset to
// an empty header-only state first, so no data from one caller's query or
// response leaks into the next.
func PutPacket(p *packet.Packet) {
	if p == nil {
		return
	}
	pl, ok := packetPools[p.Protocol()]
	if !ok {
		return
	}
	p.Reset()
	pl.Put(p)
}

// SmallBufferPool is for UDP queries (512 bytes).
var SmallBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, SmallBufferSize)
		return &buf
	},
}

// GetSmallBuffer gets a 512-byte buffer.
func GetSmallBuffer() []byte {
	bufPtr := SmallBufferPool.Get().(*[]byte)
	return (*bufPtr)[:SmallBufferSize]
}

// PutSmallBuffer returns a buffer to the pool.
func PutSmallBuffer(buf []byte) {
	if cap(buf) < SmallBufferSize {
		return // Don't pool undersized buffers
	}
	buf = buf[:cap(buf)]
	SmallBufferPool.Put(&buf)
}

// MediumBufferPool is for EDNS0 responses (4096 bytes).
var MediumBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, MediumBufferSize)
		return &buf
	},
}

// GetMediumBuffer gets a 4096-byte buffer.
func GetMediumBuffer() []byte {
	bufPtr := MediumBufferPool.Get().(*[]byte)
	return (*bufPtr)[:MediumBufferSize]
}

// PutMediumBuffer returns a buffer to the pool.
func PutMediumBuffer(buf []byte) {
	if cap(buf) < MediumBufferSize {
		return
	}
	buf = buf[:cap(buf)]
	MediumBufferPool.Put(&buf)
}

// LargeBufferPool is for maximum-size messages (65535 bytes).
var LargeBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, LargeBufferSize)
		return &buf
	},
}

// GetLargeBuffer gets a 65535-byte buffer.
func GetLargeBuffer() []byte {
	bufPtr := LargeBufferPool.Get().(*[]byte)
	return (*bufPtr)[:LargeBufferSize]
}

// PutLargeBuffer returns a buffer to the pool.
func PutLargeBuffer(buf []byte) {
	if cap(buf) < LargeBufferSize {
		return
	}
	buf = buf[:cap(buf)]
	LargeBufferPool.Put(&buf)
}

// GetBuffer intelligently selects the right buffer size.
func GetBuffer(size int) []byte {
	switch {
	case size <= SmallBufferSize:
		return GetSmallBuffer()
	case size <= MediumBufferSize:
		return GetMediumBuffer()
	default:
		return GetLargeBuffer()
	}
}

// PutBuffer returns a buffer to the appropriate pool.
func PutBuffer(buf []byte) {
	capacity := cap(buf)
	switch capacity {
	case SmallBufferSize:
		PutSmallBuffer(buf)
	case MediumBufferSize:
		PutMediumBuffer(buf)
	case LargeBufferSize:
		PutLargeBuffer(buf)
		// else: don't pool weird sizes
	}
}

// WriterPool is for buffered writers, e.g. building a batch of outgoing
// datagrams before a single writev.
var WriterPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 8192)
		return &buf
	},
}

// GetWriterBuffer gets an 8KB writer buffer.
func GetWriterBuffer() []byte {
	bufPtr := WriterPool.Get().(*[]byte)
	return *bufPtr
}

// PutWriterBuffer returns a writer buffer to the pool.
func PutWriterBuffer(buf []byte) {
	if cap(buf) >= 8192 {
		WriterPool.Put(&buf)
	}
}

// ResetPools clears all pools. Useful for tests or under memory pressure.
func ResetPools() {
	for proto, mtu := range map[packet.Protocol]int{
		packet.Dns: MediumBufferSize, packet.Mdns: MediumBufferSize, packet.Llmnr: MediumBufferSize,
	} {
		proto, mtu := proto, mtu
		packetPools[proto] = &sync.Pool{New: func() interface{} { return packet.New(proto, mtu) }}
	}

	SmallBufferPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, SmallBufferSize)
			return &buf
		},
	}
	MediumBufferPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, MediumBufferSize)
			return &buf
		},
	}
	LargeBufferPool = sync.Pool{
		New: func() interface{} {
			buf := make([]byte, LargeBufferSize)
			return &buf
		},
	}
}

// Pattern 1: packet processing
// p := pool.GetPacket(packet.Dns, 1500)
// defer pool.PutPacket(p)
// p.AppendKey(key)

// Pattern 2: raw buffer for a transceiver read
// buf := pool.GetSmallBuffer()
// defer pool.PutSmallBuffer(buf)
// n, err := conn.Read(buf)

// Pattern 3: intelligent buffer sizing
// expectedSize := 1024
// buf := pool.GetBuffer(expectedSize)
// defer pool.PutBuffer(buf)
