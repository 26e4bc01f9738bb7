package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dnsscience/dnscodec/internal/packet"
)

func TestObserveParseFailureLabelsByKind(t *testing.T) {
	ParseFailures.Reset()

	ObserveParseFailure(packet.ErrMalformed)
	ObserveParseFailure(packet.ErrTruncated)
	ObserveParseFailure(nil) // must be a no-op

	if got := testutil.ToFloat64(ParseFailures.WithLabelValues("malformed")); got != 1 {
		t.Errorf("malformed count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(ParseFailures.WithLabelValues("truncated")); got != 1 {
		t.Errorf("truncated count = %v, want 1", got)
	}
}

func TestObserveCompressionJumpsIgnoresZero(t *testing.T) {
	CompressionJumps.Reset()

	ObserveCompressionJumps(packet.Dns, 0)
	ObserveCompressionJumps(packet.Dns, 3)

	if got := testutil.ToFloat64(CompressionJumps.WithLabelValues("dns")); got != 3 {
		t.Errorf("jump count = %v, want 3", got)
	}
}

func TestObserveRRDispatchKnownAndUnknownTypes(t *testing.T) {
	RRDispatch.Reset()

	ObserveRRDecoded(packet.TypeA)
	ObserveRREncoded(packet.TypeA)
	ObserveRRDecoded(9999) // unknown type falls back to numeric label

	if got := testutil.ToFloat64(RRDispatch.WithLabelValues("A", "decode")); got != 1 {
		t.Errorf("A decode count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RRDispatch.WithLabelValues("A", "encode")); got != 1 {
		t.Errorf("A encode count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RRDispatch.WithLabelValues("TYPE9999", "decode")); got != 1 {
		t.Errorf("TYPE9999 decode count = %v, want 1", got)
	}
}

func TestTimeExtractRecordsObservation(t *testing.T) {
	ExtractDuration.Reset()

	stop := TimeExtract(packet.Mdns)
	stop()

	if got := testutil.CollectAndCount(ExtractDuration); got == 0 {
		t.Error("expected at least one histogram sample to be collected")
	}
}
