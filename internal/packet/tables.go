package packet

// Protocol selects the header and validation rules a Packet enforces: the
// three wire dialects this codec understands (§4.2, §4.8).
type Protocol int

const (
	Dns Protocol = iota
	Mdns
	Llmnr
)

var protocolNames = map[Protocol]string{
	Dns:   "dns",
	Mdns:  "mdns",
	Llmnr: "llmnr",
}

// ProtocolToString returns the canonical lowercase name for p, or "" if p
// is not one of the known protocols.
func ProtocolToString(p Protocol) string {
	return protocolNames[p]
}

// ProtocolFromString parses a protocol name (case-sensitive, lowercase).
func ProtocolFromString(s string) (Protocol, bool) {
	for p, name := range protocolNames {
		if name == s {
			return p, true
		}
	}
	return 0, false
}

// RR types this codec knows how to serialize/parse (§4.5/§4.6).
const (
	TypeA      uint16 = 1
	TypeNS     uint16 = 2
	TypeCNAME  uint16 = 5
	TypeSOA    uint16 = 6
	TypePTR    uint16 = 12
	TypeHINFO  uint16 = 13
	TypeMX     uint16 = 15
	TypeTXT    uint16 = 16
	TypeAAAA   uint16 = 28
	TypeLOC    uint16 = 29
	TypeSRV    uint16 = 33
	TypeNAPTR  uint16 = 35
	TypeDNAME  uint16 = 39
	TypeOPT    uint16 = 41
	TypeDS     uint16 = 43
	TypeSSHFP  uint16 = 44
	TypeRRSIG  uint16 = 46
	TypeNSEC   uint16 = 47
	TypeDNSKEY uint16 = 48
	TypeNSEC3  uint16 = 50
	TypeSPF    uint16 = 99
	TypeTSIG   uint16 = 250
	TypeIXFR   uint16 = 251
	TypeAXFR   uint16 = 252
	TypeMAILB  uint16 = 253
	TypeMAILA  uint16 = 254
	TypeANY    uint16 = 255
)

// ClassIN is the only record class this codec constructs. RDATA is parsed
// by type alone; the class does not change how a record is decoded.
const ClassIN uint16 = 1

// isValidQuestionType reports whether t may legally appear in a DNS
// question section (§4.7 invariant: "Any key whose type is not a valid
// query type → Malformed"). This includes concrete RR types plus the
// meta-query types ANY/AXFR/IXFR/MAILB/MAILA.
func isValidQuestionType(t uint16) bool {
	switch t {
	case TypeA, TypeNS, TypeCNAME, TypeSOA, TypePTR, TypeHINFO, TypeMX,
		TypeTXT, TypeAAAA, TypeLOC, TypeSRV, TypeNAPTR, TypeDNAME,
		TypeDS, TypeSSHFP, TypeRRSIG, TypeNSEC, TypeDNSKEY, TypeNSEC3,
		TypeSPF, TypeIXFR, TypeAXFR, TypeMAILB, TypeMAILA, TypeANY:
		return true
	default:
		return false
	}
}

// isPseudoType reports whether t is a meta-type that must never appear set
// in an NSEC/NSEC3 type bitmap (RFC 4034 §4.1.2).
func isPseudoType(t uint16) bool {
	switch t {
	case TypeOPT, TypeTSIG, TypeIXFR, TypeAXFR, TypeMAILB, TypeMAILA, TypeANY:
		return true
	default:
		return false
	}
}

// RCODE name table (RFC 1035 + RFC 6895 extensions actually used by this
// codec's collaborators).
var rcodeNames = map[uint8]string{
	0:  "NOERROR",
	1:  "FORMERR",
	2:  "SERVFAIL",
	3:  "NXDOMAIN",
	4:  "NOTIMP",
	5:  "REFUSED",
	6:  "YXDOMAIN",
	7:  "YXRRSET",
	8:  "NXRRSET",
	9:  "NOTAUTH",
	10: "NOTZONE",
	16: "BADVERS",
	23: "BADCOOKIE",
}

// RcodeToString returns the mnemonic for an RCODE, or "" if unknown.
func RcodeToString(rcode uint8) string {
	return rcodeNames[rcode]
}

// RcodeFromString parses an RCODE mnemonic (case-sensitive, upper-case).
func RcodeFromString(s string) (uint8, bool) {
	for code, name := range rcodeNames {
		if name == s {
			return code, true
		}
	}
	return 0, false
}
