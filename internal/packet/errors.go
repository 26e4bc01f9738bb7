package packet

import "errors"

// Error kinds. Every compound operation is transactional: on any of these,
// the packet's size (appends) or read cursor (reads) is restored to the
// value it had on entry, and any compression-dictionary entries recorded
// past that point are dropped. These are never wrapped to hide the
// underlying kind — callers use errors.Is against these sentinels.
var (
	// ErrOutOfMemory indicates the backing buffer could not be grown.
	ErrOutOfMemory = errors.New("packet: out of memory")

	// ErrMessageTooBig indicates an append would exceed the 65535-byte
	// DNS message size limit.
	ErrMessageTooBig = errors.New("packet: message too big")

	// ErrNameTooLong indicates a label exceeded 63 bytes, or a domain
	// name's uncompressed wire length exceeded 255 bytes.
	ErrNameTooLong = errors.New("packet: name too long")

	// ErrTruncated indicates a read ran past the packet's logical size.
	ErrTruncated = errors.New("packet: truncated")

	// ErrMalformed indicates a structural violation: a bad compression
	// pointer, an RDLENGTH that under- or over-consumes, a misplaced OPT
	// record, an invalid type in a question, a cache-flush bit where one
	// isn't allowed, and so on.
	ErrMalformed = errors.New("packet: malformed")
)
