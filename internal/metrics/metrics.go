// Package metrics wraps internal/packet call sites with Prometheus
// counters. It is deliberately one layer above the codec: internal/packet
// does no I/O and knows nothing about observability, so nothing in this
// package is imported back into it. cmd/dnscodec calls these wrappers
// around the codec operations it drives.
package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dnsscience/dnscodec/internal/packet"
)

var (
	// ParseFailures counts decode failures by the sentinel error kind
	// internal/packet returned (§7 error taxonomy).
	ParseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnscodec_parse_failures_total",
			Help: "Total packet decode failures by error kind.",
		},
		[]string{"kind"},
	)

	// CompressionJumps counts every compression-pointer hop ReadName
	// followed, bucketed by protocol. A name that never compresses
	// contributes zero jumps and isn't counted here.
	CompressionJumps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnscodec_compression_jumps_total",
			Help: "Total compression-pointer jumps followed while reading names.",
		},
		[]string{"protocol"},
	)

	// RRDispatch counts the records and question keys callers report via
	// ObserveRRDecoded/ObserveRREncoded, by RR type mnemonic and direction,
	// so an operator can see which record types a deployment exercises.
	RRDispatch = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dnscodec_rr_dispatch_total",
			Help: "Total resource records encoded or decoded, by type.",
		},
		[]string{"type", "direction"},
	)

	// ExtractDuration times Packet.Extract calls by protocol.
	ExtractDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dnscodec_extract_duration_seconds",
			Help:    "Time spent in Packet.Extract.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"protocol"},
	)
)

func init() {
	prometheus.MustRegister(ParseFailures, CompressionJumps, RRDispatch, ExtractDuration)
}

// errorKind maps a codec sentinel error to the label ParseFailures uses.
// Unrecognized errors (there shouldn't be any — internal/packet never
// wraps a non-sentinel error) are labeled "other".
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, packet.ErrMalformed):
		return "malformed"
	case errors.Is(err, packet.ErrTruncated):
		return "truncated"
	case errors.Is(err, packet.ErrNameTooLong):
		return "name_too_long"
	case errors.Is(err, packet.ErrMessageTooBig):
		return "message_too_big"
	case errors.Is(err, packet.ErrOutOfMemory):
		return "out_of_memory"
	default:
		return "other"
	}
}

// ObserveParseFailure records a decode failure, if err is non-nil.
func ObserveParseFailure(err error) {
	if err == nil {
		return
	}
	ParseFailures.WithLabelValues(errorKind(err)).Inc()
}

// ObserveCompressionJumps records n compression-pointer hops for protocol.
func ObserveCompressionJumps(protocol packet.Protocol, n int) {
	if n <= 0 {
		return
	}
	CompressionJumps.WithLabelValues(packet.ProtocolToString(protocol)).Add(float64(n))
}

// rrTypeNames maps the RR type constants this codec knows about to the
// mnemonics RRDispatch labels with.
var rrTypeNames = map[uint16]string{
	packet.TypeA:      "A",
	packet.TypeNS:     "NS",
	packet.TypeCNAME:  "CNAME",
	packet.TypeSOA:    "SOA",
	packet.TypePTR:    "PTR",
	packet.TypeHINFO:  "HINFO",
	packet.TypeMX:     "MX",
	packet.TypeTXT:    "TXT",
	packet.TypeAAAA:   "AAAA",
	packet.TypeLOC:    "LOC",
	packet.TypeSRV:    "SRV",
	packet.TypeDNAME:  "DNAME",
	packet.TypeOPT:    "OPT",
	packet.TypeDS:     "DS",
	packet.TypeSSHFP:  "SSHFP",
	packet.TypeRRSIG:  "RRSIG",
	packet.TypeNSEC:   "NSEC",
	packet.TypeDNSKEY: "DNSKEY",
	packet.TypeNSEC3:  "NSEC3",
	packet.TypeSPF:    "SPF",
}

// rrTypeLabel returns the mnemonic for t, or its numeric form if unknown.
func rrTypeLabel(t uint16) string {
	if name, ok := rrTypeNames[t]; ok {
		return name
	}
	return "TYPE" + strconv.FormatUint(uint64(t), 10)
}

// ObserveRRDecoded records one RR of the given type having been decoded.
func ObserveRRDecoded(t uint16) {
	RRDispatch.WithLabelValues(rrTypeLabel(t), "decode").Inc()
}

// ObserveRREncoded records one RR of the given type having been encoded.
func ObserveRREncoded(t uint16) {
	RRDispatch.WithLabelValues(rrTypeLabel(t), "encode").Inc()
}

// TimeExtract returns a func to be called (typically via defer) when an
// Extract call for protocol completes, recording its duration.
func TimeExtract(protocol packet.Protocol) func() {
	timer := prometheus.NewTimer(ExtractDuration.WithLabelValues(packet.ProtocolToString(protocol)))
	return func() { timer.ObserveDuration() }
}
