package packet

import (
	"errors"
	"reflect"
	"testing"
)

func TestBitmapRoundTrip(t *testing.T) {
	types := []uint16{TypeA, TypeAAAA, TypeMX, TypeRRSIG, TypeNSEC, 1024}
	encoded := encodeBitmap(types)
	decoded, err := decodeBitmap(encoded)
	if err != nil {
		t.Fatalf("decodeBitmap: %v", err)
	}
	want := append([]uint16(nil), types...)
	// decodeBitmap returns ascending order; sort want the same way.
	for i := 1; i < len(want); i++ {
		for j := i; j > 0 && want[j-1] > want[j]; j-- {
			want[j-1], want[j] = want[j], want[j-1]
		}
	}
	if !reflect.DeepEqual(decoded, want) {
		t.Fatalf("decodeBitmap() = %v, want %v", decoded, want)
	}
}

func TestEncodeBitmapEmpty(t *testing.T) {
	if got := encodeBitmap(nil); got != nil {
		t.Fatalf("encodeBitmap(nil) = %v, want nil", got)
	}
}

func TestDecodeBitmapEmptyAccepted(t *testing.T) {
	types, err := decodeBitmap(nil)
	if err != nil {
		t.Fatalf("decodeBitmap(nil): %v", err)
	}
	if len(types) != 0 {
		t.Fatalf("expected no types, got %v", types)
	}
}

func TestDecodeBitmapZeroLengthWindowRejected(t *testing.T) {
	_, err := decodeBitmap([]byte{0x00, 0x00})
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("decodeBitmap() error = %v, want ErrMalformed", err)
	}
}

func TestDecodeBitmapSkipsPseudoTypes(t *testing.T) {
	encoded := encodeBitmap([]uint16{TypeA, TypeOPT, TypeAAAA})
	decoded, err := decodeBitmap(encoded)
	if err != nil {
		t.Fatalf("decodeBitmap: %v", err)
	}
	for _, typ := range decoded {
		if typ == TypeOPT {
			t.Fatal("OPT pseudo-type must not survive bitmap decode")
		}
	}
}
