// Command dnscodec is a small demo tool built directly on internal/packet:
// it either builds a query packet and writes its wire bytes out, or reads
// an existing wire-format message, extracts it, and prints a verdict.
// Unlike the teacher's cmd/dnsscienced, it wires no transceiver, cache, or
// resolver of its own — it exercises the codec, nothing more.
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dnsscience/dnscodec/internal/cookie"
	"github.com/dnsscience/dnscodec/internal/guard"
	"github.com/dnsscience/dnscodec/internal/metrics"
	"github.com/dnsscience/dnscodec/internal/packet"
)

var (
	name        = flag.String("name", "example.com.", "owner name for a built query")
	rtype       = flag.String("type", "A", "RR type mnemonic for a built query (A, AAAA, NS, MX, TXT, ...)")
	protoFlag   = flag.String("protocol", "dns", "protocol: dns, mdns, or llmnr")
	mtu         = flag.Int("mtu", 1500, "MTU hint used to size the packet buffer")
	cdBit       = flag.Bool("cd", false, "set the DNSSEC CD bit on a built Dns query")
	outFile     = flag.String("out", "", "write a built query's wire bytes here (default: stdout)")
	decodeFile  = flag.String("decode", "", "decode and Extract an existing wire-format file instead of building a query")
	metricsAddr = flag.String("metrics-addr", "", "if set, bind a Prometheus /metrics endpoint here")

	peerAddr           = flag.String("peer", "127.0.0.1", "client IP a decoded message is treated as having arrived from, for ACL/rate-limit checks")
	aclDefaultAllow    = flag.Bool("acl-default-allow", true, "ACL policy when peer matches neither -acl-allow nor -acl-deny")
	aclAllow           = flag.String("acl-allow", "", "comma-separated CIDRs/IPs to allow")
	aclDeny            = flag.String("acl-deny", "", "comma-separated CIDRs/IPs to deny")
	rateQPS            = flag.Float64("rate-qps", 100, "per-client queries-per-second limit")
	rateBurst          = flag.Int("rate-burst", 200, "per-client burst size")
	cookiesEnabled     = flag.Bool("cookies", false, "validate the decoded message's DNS Cookie option against a fresh server secret")
	requireValidCookie = flag.Bool("require-valid-cookie", false, "treat a missing/invalid server cookie as BADCOOKIE")
)

// typesByName maps the mnemonics this demo accepts on -type to the codec's
// RR type constants. Kept local to the CLI; internal/packet has no need of
// a string table for types it only ever sees as uint16 on the wire.
var typesByName = map[string]uint16{
	"A":      packet.TypeA,
	"NS":     packet.TypeNS,
	"CNAME":  packet.TypeCNAME,
	"SOA":    packet.TypeSOA,
	"PTR":    packet.TypePTR,
	"HINFO":  packet.TypeHINFO,
	"MX":     packet.TypeMX,
	"TXT":    packet.TypeTXT,
	"AAAA":   packet.TypeAAAA,
	"LOC":    packet.TypeLOC,
	"SRV":    packet.TypeSRV,
	"DNAME":  packet.TypeDNAME,
	"DS":     packet.TypeDS,
	"SSHFP":  packet.TypeSSHFP,
	"RRSIG":  packet.TypeRRSIG,
	"NSEC":   packet.TypeNSEC,
	"DNSKEY": packet.TypeDNSKEY,
	"NSEC3":  packet.TypeNSEC3,
	"SPF":    packet.TypeSPF,
	"ANY":    packet.TypeANY,
}

func main() {
	flag.Parse()

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		fmt.Printf("metrics listening on %s\n", *metricsAddr)
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
	}

	fmt.Println("================================================")
	fmt.Println(" dnscodec - DNS/mDNS/LLMNR wire-format demo tool")
	fmt.Println("================================================")
	fmt.Println()

	var err error
	if *decodeFile != "" {
		err = runDecode(*decodeFile)
	} else {
		err = runBuild()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func resolveProtocol() (packet.Protocol, error) {
	proto, ok := packet.ProtocolFromString(*protoFlag)
	if !ok {
		return 0, fmt.Errorf("unknown protocol %q (want dns, mdns, or llmnr)", *protoFlag)
	}
	return proto, nil
}

func runBuild() error {
	proto, err := resolveProtocol()
	if err != nil {
		return err
	}
	typ, ok := typesByName[*rtype]
	if !ok {
		return fmt.Errorf("unknown RR type %q", *rtype)
	}

	p, err := packet.NewQuery(proto, *mtu, *cdBit)
	if err != nil {
		metrics.ObserveParseFailure(err)
		return fmt.Errorf("new query: %w", err)
	}
	if err := p.AppendKey(packet.Key{Name: *name, Type: typ, Class: packet.ClassIN}); err != nil {
		metrics.ObserveParseFailure(err)
		return fmt.Errorf("append key: %w", err)
	}
	p.SetQDCount(1)
	metrics.ObserveRREncoded(typ)

	fmt.Printf("built %s query: id=%d name=%s type=%s size=%d bytes\n",
		packet.ProtocolToString(proto), p.ID(), *name, *rtype, p.Size())

	if *outFile == "" {
		_, err = os.Stdout.Write(p.Bytes())
		return err
	}
	return os.WriteFile(*outFile, p.Bytes(), 0o644)
}

func runDecode(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	proto, err := resolveProtocol()
	if err != nil {
		return err
	}

	p, err := packet.FromBytes(proto, raw)
	if err != nil {
		metrics.ObserveParseFailure(err)
		return fmt.Errorf("from bytes: %w", err)
	}

	stop := metrics.TimeExtract(proto)
	err = p.Extract()
	stop()
	if err != nil {
		metrics.ObserveParseFailure(err)
		return fmt.Errorf("extract: %w", err)
	}
	metrics.ObserveCompressionJumps(proto, p.JumpsFollowed())
	for _, q := range p.Questions() {
		metrics.ObserveRRDecoded(q.Key.Type)
	}
	for _, a := range p.Answers() {
		metrics.ObserveRRDecoded(a.Record.Key.Type)
	}

	fmt.Printf("id=%d opcode=%d rcode=%s(%d) qr=%v qdcount=%d ancount=%d nscount=%d arcount=%d\n",
		p.ID(), p.Opcode(), packet.RcodeToString(p.Rcode()), p.Rcode(), p.QR(),
		p.QDCount(), p.ANCount(), p.NSCount(), p.ARCount())

	fmt.Println("questions:")
	for _, q := range p.Questions() {
		fmt.Printf("  %s type=%d class=%d\n", q.Key.Name, q.Key.Type, q.Key.Class)
	}

	fmt.Println("answers:")
	for _, a := range p.Answers() {
		fmt.Printf("  %s type=%d class=%d ttl=%d cacheable=%v shared_owner=%v cache_flush=%v unparseable=%v\n",
			a.Record.Key.Name, a.Record.Key.Type, a.Record.Key.Class, a.Record.TTL,
			a.Cacheable, a.SharedOwner, a.Record.CacheFlush, a.Record.Unparseable)
	}

	if opt := p.Opt(); opt != nil {
		fmt.Printf("opt: max_udp_size=%d ext_rcode=%d version=%d do=%v options_len=%d\n",
			opt.MaxUDPSize, opt.ExtRcode, opt.Version, opt.DNSSECOk, len(opt.RawOptions))
	}

	if ok, verr := p.ValidateQuery(); verr == nil && ok {
		fmt.Println("verdict: valid query")
	} else if ok, verr := p.ValidateReply(); verr == nil && ok {
		fmt.Println("verdict: valid reply")
	} else {
		fmt.Println("verdict: neither a valid query nor a valid reply")
	}

	if err := checkCookie(p.Opt()); err != nil {
		return err
	}

	// ACL/rate-limit admission runs after Validate* has already passed
	// judgment on the message itself, and stands in for the check a real
	// listener would make before accepting the query for processing.
	peer := net.ParseIP(*peerAddr)
	if peer == nil {
		return fmt.Errorf("invalid -peer address %q", *peerAddr)
	}
	return checkAdmission(peer)
}

// checkAdmission applies the ACL and rate limit a real listener would run
// between a validated message and accepting it for processing.
func checkAdmission(peer net.IP) error {
	acl := guard.NewACL(*aclDefaultAllow)
	for _, cidr := range splitCSV(*aclAllow) {
		if err := acl.AllowNet(cidr); err != nil {
			return fmt.Errorf("acl-allow %q: %w", cidr, err)
		}
	}
	for _, cidr := range splitCSV(*aclDeny) {
		if err := acl.DenyNet(cidr); err != nil {
			return fmt.Errorf("acl-deny %q: %w", cidr, err)
		}
	}
	fmt.Printf("acl: peer=%s allowed=%v\n", peer, acl.IsAllowed(peer))

	rl := guard.NewRateLimiter(guard.RateLimiterConfig{
		QueriesPerSecond: *rateQPS,
		BurstSize:        *rateBurst,
		CleanupInterval:  guard.DefaultRateLimiterConfig().CleanupInterval,
	})
	fmt.Printf("rate limit: peer=%s admitted=%v\n", peer, rl.Allow(peer))
	return nil
}

// checkCookie pulls the COOKIE EDNS option (if any) out of opt's raw RDATA
// and, when -cookies is set, validates it the way a server deciding
// BADCOOKIE would.
func checkCookie(opt *packet.OptRecord) error {
	if opt == nil || len(opt.RawOptions) == 0 {
		return nil
	}
	clientCookie, serverCookie, ok, err := cookie.ExtractCookie(opt.RawOptions)
	if err != nil {
		return fmt.Errorf("cookie option: %w", err)
	}
	if !ok {
		return nil
	}
	fmt.Printf("cookie: client=%x server=%x\n", clientCookie, serverCookie)

	if !*cookiesEnabled {
		return nil
	}
	mgr, err := cookie.NewManager(cookie.Config{Enabled: true, RequireValid: *requireValidCookie})
	if err != nil {
		return fmt.Errorf("cookie manager: %w", err)
	}
	peer := net.ParseIP(*peerAddr)
	if peer == nil {
		return fmt.Errorf("invalid -peer address %q", *peerAddr)
	}
	badCookie, verr := mgr.ValidateQueryCookie(clientCookie, serverCookie, peer)
	fmt.Printf("cookie: bad_cookie=%v validate_err=%v\n", badCookie, verr)
	return nil
}

// splitCSV splits a comma-separated flag value, dropping empty entries.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
