package chain

import (
	"errors"
	"testing"

	"github.com/kobuta23/telegram-minter/internal/errs"
)

func word(n byte) []byte {
	w := make([]byte, 32)
	w[31] = n
	return w
}

func TestUint64Result(t *testing.T) {
	got, err := Uint64Result(word(42))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != 42 {
		t.Fatalf("want 42, got %d", got)
	}

	if _, err := Uint64Result([]byte{0x01}); !errors.Is(err, errs.ErrResolution) {
		t.Fatalf("short input: want ErrResolution, got %v", err)
	}

	big := make([]byte, 32)
	for i := range big {
		big[i] = 0xff
	}
	if _, err := Uint64Result(big); !errors.Is(err, errs.ErrResolution) {
		t.Fatalf("overflow: want ErrResolution, got %v", err)
	}
}

func TestAddressResult(t *testing.T) {
	w := make([]byte, 32)
	for i := 12; i < 32; i++ {
		w[i] = 0xab
	}
	got, err := AddressResult(w)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "0x" + "abababababababababababababababababababab"
	if string(got) != want {
		t.Fatalf("want %s, got %s", want, got)
	}

	if _, err := AddressResult(nil); !errors.Is(err, errs.ErrResolution) {
		t.Fatalf("short input: want ErrResolution, got %v", err)
	}
}

func TestStringResult(t *testing.T) {
	// offset 0x20, length 5, "hello" padded to a word.
	data := make([]byte, 0, 96)
	data = append(data, word(0x20)...)
	data = append(data, word(5)...)
	tail := make([]byte, 32)
	copy(tail, "hello")
	data = append(data, tail...)

	got, err := StringResult(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != "hello" {
		t.Fatalf("want hello, got %q", got)
	}

	if _, err := StringResult(word(1)); !errors.Is(err, errs.ErrResolution) {
		t.Fatalf("short input: want ErrResolution, got %v", err)
	}

	bad := append(word(0xf0), word(5)...)
	if _, err := StringResult(bad); !errors.Is(err, errs.ErrResolution) {
		t.Fatalf("bad offset: want ErrResolution, got %v", err)
	}

	// an offset near the uint64 ceiling must not wrap past the bounds check
	wrapOff := make([]byte, 32)
	for i := 24; i < 32; i++ {
		wrapOff[i] = 0xff
	}
	wrapOff[31] = 0xf0
	if _, err := StringResult(append(wrapOff, word(5)...)); !errors.Is(err, errs.ErrResolution) {
		t.Fatalf("wrapping offset: want ErrResolution, got %v", err)
	}

	// same for a length near the ceiling
	wrapLen := make([]byte, 32)
	for i := 24; i < 32; i++ {
		wrapLen[i] = 0xff
	}
	if _, err := StringResult(append(word(0x20), wrapLen...)); !errors.Is(err, errs.ErrResolution) {
		t.Fatalf("wrapping length: want ErrResolution, got %v", err)
	}
}
