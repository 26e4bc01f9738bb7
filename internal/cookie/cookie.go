// Package cookie implements RFC 7873/9018 DNS Cookies on top of the raw
// EDNS(0) OPT RDATA internal/packet hands back. The codec itself only
// interprets the OPT pseudo-RR's header (maxUDPSize, extended RCODE,
// version, DO bit); its RDATA is stored and returned as an opaque blob
// (packet.OptRecord.RawOptions). This package is the layer above that
// knows the RDATA is really a sequence of `code:16 length:16 data` EDNS
// options and picks the COOKIE option (code 10) out of it.
//
// Cookie generation follows BIND 9's SipHash 2-4 based approach:
// https://kb.isc.org/docs/aa-01387
package cookie

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/dchest/siphash"
)

var (
	ErrInvalidCookie       = errors.New("invalid cookie format")
	ErrInvalidClientCookie = errors.New("invalid client cookie")
	ErrInvalidServerCookie = errors.New("invalid server cookie")
	ErrExpiredCookie       = errors.New("server cookie expired")
	ErrTruncatedOption     = errors.New("truncated EDNS option")
)

const (
	// Cookie sizes per RFC 7873.
	clientCookieSize = 8  // 64 bits
	serverCookieSize = 8  // 64 bits (RFC allows 8-32, we mint the minimum)
	cookieTotalSize  = 16 // client + server

	cookieVersion = 1

	// OptionCookie is the EDNS(0) option code for COOKIE (RFC 7873 §4).
	OptionCookie uint16 = 10

	// Server cookie validity period (per BIND 9 default).
	serverCookieValidFor = 1 * time.Hour

	// Secret rotation interval.
	secretRotationInterval = 24 * time.Hour

	optionHeaderSize = 4 // code:16 + length:16
)

// Option is one EDNS(0) option TLV as found in an OPT RR's RDATA.
type Option struct {
	Code uint16
	Data []byte
}

// ParseOptions walks an OPT RR's raw RDATA (packet.OptRecord.RawOptions)
// as a sequence of EDNS(0) options. A trailing partial option is reported
// as ErrTruncatedOption rather than silently dropped.
func ParseOptions(raw []byte) ([]Option, error) {
	var opts []Option
	i := 0
	for i < len(raw) {
		if i+optionHeaderSize > len(raw) {
			return nil, ErrTruncatedOption
		}
		code := binary.BigEndian.Uint16(raw[i:])
		length := int(binary.BigEndian.Uint16(raw[i+2:]))
		start := i + optionHeaderSize
		end := start + length
		if end > len(raw) {
			return nil, ErrTruncatedOption
		}
		opts = append(opts, Option{Code: code, Data: raw[start:end]})
		i = end
	}
	return opts, nil
}

// FindCookie scans already-parsed options for the COOKIE option and splits
// it into its client and (if present) server halves. ok is false if no
// COOKIE option was present at all.
func FindCookie(opts []Option) (clientCookie [8]byte, serverCookie []byte, ok bool, err error) {
	for _, o := range opts {
		if o.Code != OptionCookie {
			continue
		}
		cc, sc, perr := ParseCookie(o.Data)
		if perr != nil {
			return clientCookie, nil, true, perr
		}
		return cc, sc, true, nil
	}
	return clientCookie, nil, false, nil
}

// ExtractCookie is the common-case entry point: walk raw OPT RDATA and
// pull the COOKIE option out in one call.
func ExtractCookie(rawOptions []byte) (clientCookie [8]byte, serverCookie []byte, ok bool, err error) {
	opts, err := ParseOptions(rawOptions)
	if err != nil {
		return clientCookie, nil, false, err
	}
	return FindCookie(opts)
}

// AppendCookieOption appends a COOKIE option TLV to an OPT RDATA blob
// under construction. dst is typically nil, or an earlier option-append
// result being extended with one more option.
func AppendCookieOption(dst []byte, clientCookie [8]byte, serverCookie []byte) []byte {
	data := FormatCookie(clientCookie, serverCookie)
	hdr := make([]byte, optionHeaderSize)
	binary.BigEndian.PutUint16(hdr, OptionCookie)
	binary.BigEndian.PutUint16(hdr[2:], uint16(len(data)))
	dst = append(dst, hdr...)
	dst = append(dst, data...)
	return dst
}

// Manager handles DNS cookie generation and validation.
type Manager struct {
	mu sync.RWMutex

	// Current and previous secrets for rotation.
	currentSecret  [16]byte
	previousSecret [16]byte
	secretTime     time.Time

	// Configuration.
	enabled      bool
	requireValid bool // Require valid cookie for responses

	// Secret for cookie-secret sharing across a cluster.
	clusterSecret [16]byte
	useCluster    bool
}

// Config holds cookie manager configuration.
type Config struct {
	// Enable DNS cookies.
	Enabled bool

	// Require valid server cookie (BADCOOKIE if missing/invalid).
	RequireValid bool

	// Cluster secret for load-balanced deployments; all servers in the
	// cluster must use the same secret.
	ClusterSecret []byte
}

// NewManager creates a new DNS cookie manager.
func NewManager(cfg Config) (*Manager, error) {
	m := &Manager{
		enabled:      cfg.Enabled,
		requireValid: cfg.RequireValid,
	}

	if cfg.ClusterSecret != nil && len(cfg.ClusterSecret) >= 16 {
		copy(m.clusterSecret[:], cfg.ClusterSecret)
		m.useCluster = true
		m.currentSecret = m.clusterSecret
	} else if err := m.rotateSecret(); err != nil {
		return nil, err
	}

	return m, nil
}

// rotateSecret generates a new random secret.
func (m *Manager) rotateSecret() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.useCluster {
		return nil
	}

	m.previousSecret = m.currentSecret

	_, err := rand.Read(m.currentSecret[:])
	if err != nil {
		return err
	}

	m.secretTime = time.Now()
	return nil
}

// RotateSecretPeriodically runs secret rotation in the background until
// stop is closed.
func (m *Manager) RotateSecretPeriodically(stop <-chan struct{}) {
	ticker := time.NewTicker(secretRotationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.rotateSecret()
		case <-stop:
			return
		}
	}
}

// GenerateClientCookie generates an 8-byte client cookie:
// Hash(client-IP || server-IP || random). In practice clients generate
// their own; this is provided for tests and servers minting one on a
// client's behalf.
func GenerateClientCookie(clientIP, serverIP []byte) [8]byte {
	var cookie [8]byte

	var random [8]byte
	rand.Read(random[:])

	var key [16]byte
	rand.Read(key[:])

	h := siphash.New(key[:])
	h.Write(clientIP)
	h.Write(serverIP)
	h.Write(random[:])

	binary.LittleEndian.PutUint64(cookie[:], h.Sum64())
	return cookie
}

// GenerateServerCookie generates an 8-byte server cookie:
// SipHash-2-4(secret, client-cookie || client-IP || version || timestamp),
// per RFC 9018.
func (m *Manager) GenerateServerCookie(clientCookie [8]byte, clientIP []byte) ([8]byte, error) {
	m.mu.RLock()
	secret := m.currentSecret
	m.mu.RUnlock()
	return m.computeServerCookie(secret, clientCookie, clientIP, time.Now())
}

// ValidateServerCookie validates a server cookie against the current or
// immediately-previous secret.
func (m *Manager) ValidateServerCookie(clientCookie [8]byte, serverCookie [8]byte, clientIP []byte) error {
	if !m.enabled {
		return nil // Cookies disabled
	}

	expected, err := m.computeServerCookie(m.currentSecret, clientCookie, clientIP, time.Now())
	if err != nil {
		return err
	}

	if constantTimeEqual(serverCookie[:], expected[:]) {
		return nil // Valid with current secret
	}

	m.mu.RLock()
	prevSecret := m.previousSecret
	m.mu.RUnlock()

	expected, err = m.computeServerCookie(prevSecret, clientCookie, clientIP, time.Now())
	if err != nil {
		return err
	}

	if constantTimeEqual(serverCookie[:], expected[:]) {
		return nil // Valid with previous secret
	}

	return ErrInvalidServerCookie
}

// computeServerCookie computes what the server cookie should be.
func (m *Manager) computeServerCookie(secret [16]byte, clientCookie [8]byte, clientIP []byte, t time.Time) ([8]byte, error) {
	var serverCookie [8]byte

	timestamp := uint32(t.Unix())

	h := siphash.New(secret[:])
	h.Write(clientCookie[:])
	h.Write(clientIP)
	h.Write([]byte{cookieVersion, 0, 0, 0})
	binary.Write(h, binary.BigEndian, timestamp)

	binary.LittleEndian.PutUint64(serverCookie[:], h.Sum64())
	return serverCookie, nil
}

// ParseCookie splits a COOKIE option's data into its client and (if
// present) server halves: <client-cookie (8 bytes)> [<server-cookie
// (8-32 bytes)>], per RFC 7873 §4.
func ParseCookie(data []byte) (clientCookie [8]byte, serverCookie []byte, err error) {
	if len(data) < clientCookieSize {
		return clientCookie, nil, ErrInvalidClientCookie
	}

	copy(clientCookie[:], data[:clientCookieSize])

	if len(data) > clientCookieSize {
		serverCookie = make([]byte, len(data)-clientCookieSize)
		copy(serverCookie, data[clientCookieSize:])

		if len(serverCookie) < 8 || len(serverCookie) > 32 {
			return clientCookie, nil, ErrInvalidServerCookie
		}
	}

	return clientCookie, serverCookie, nil
}

// FormatCookie builds a COOKIE option's data from its two halves.
func FormatCookie(clientCookie [8]byte, serverCookie []byte) []byte {
	data := make([]byte, clientCookieSize+len(serverCookie))
	copy(data[:clientCookieSize], clientCookie[:])
	if len(serverCookie) > 0 {
		copy(data[clientCookieSize:], serverCookie)
	}
	return data
}

// constantTimeEqual does constant-time comparison.
func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var result byte
	for i := 0; i < len(a); i++ {
		result |= a[i] ^ b[i]
	}
	return result == 0
}

// ValidateQueryCookie validates the cookie in a DNS query, returning
// whether the caller should reply BADCOOKIE.
func (m *Manager) ValidateQueryCookie(clientCookie [8]byte, serverCookie []byte, clientIP []byte) (bool, error) {
	if !m.enabled {
		return false, nil // Cookies disabled
	}

	if len(serverCookie) == 0 {
		return false, nil // first query from this client, nothing to check yet
	}

	if len(serverCookie) != serverCookieSize {
		if m.requireValid {
			return true, ErrInvalidServerCookie // Send BADCOOKIE
		}
		return false, nil // Accept but don't require
	}

	var sc [8]byte
	copy(sc[:], serverCookie)

	err := m.ValidateServerCookie(clientCookie, sc, clientIP)
	if err != nil {
		if m.requireValid {
			return true, err // Send BADCOOKIE
		}
		return false, nil // Accept but note invalid
	}

	return false, nil // Valid cookie
}

// Stats holds cookie-handling counters for monitoring.
type Stats struct {
	TotalQueries       uint64
	QueriesWithCookie  uint64
	ValidCookies       uint64
	InvalidCookies     uint64
	BadCookieResponses uint64
	CookiesGenerated   uint64
}

// Stats returns a zero Stats: the Manager does not count queries,
// cookies or BADCOOKIE responses.
func (m *Manager) Stats() Stats {
	// TODO: wire atomic counters once internal/metrics grows a cookie dimension.
	return Stats{}
}
