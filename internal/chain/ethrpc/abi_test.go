package ethrpc

import (
	"encoding/hex"
	"testing"

	"github.com/kobuta23/telegram-minter/internal/model"
)

// Known selectors from the ABI specification.
func TestSelector(t *testing.T) {
	cases := map[string]string{
		"transfer(address,uint256)":     "a9059cbb",
		"balanceOf(address)":            "70a08231",
		"totalSupply()":                 "18160ddd",
		"mint(address,uint256,uint256)": "156e29f6",
	}
	for sig, want := range cases {
		if got := hex.EncodeToString(selector(sig)); got != want {
			t.Fatalf("selector(%s): want %s, got %s", sig, want, got)
		}
	}
}

func TestEncodeCallStatic(t *testing.T) {
	addr := model.Address("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	data, err := encodeCall("mint(address,uint256,uint256)", addr, uint64(7), int64(1))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "156e29f6" +
		"0000000000000000000000005aaeb6053f3e94c9b9a09f33669435e7ef1beaed" +
		"0000000000000000000000000000000000000000000000000000000000000007" +
		"0000000000000000000000000000000000000000000000000000000000000001"
	if got := hex.EncodeToString(data); got != want {
		t.Fatalf("want %s\ngot  %s", want, got)
	}
}

func TestEncodeCallDynamicString(t *testing.T) {
	data, err := encodeCall("createToken(string)", "ipfs://Qm")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// selector, offset 0x20, length 9, right-padded payload
	want := hex.EncodeToString(selector("createToken(string)")) +
		"0000000000000000000000000000000000000000000000000000000000000020" +
		"0000000000000000000000000000000000000000000000000000000000000009" +
		"697066733a2f2f516d0000000000000000000000000000000000000000000000"
	if got := hex.EncodeToString(data); got != want {
		t.Fatalf("want %s\ngot  %s", want, got)
	}
}

func TestEncodeCallBadArgs(t *testing.T) {
	if _, err := encodeCall("mint(address,uint256,uint256)", model.Address("0xshort"), uint64(1), int64(1)); err == nil {
		t.Fatal("bad address must be rejected")
	}
	if _, err := encodeCall("uri(uint256)", int64(-1)); err == nil {
		t.Fatal("negative integer must be rejected")
	}
	if _, err := encodeCall("uri(uint256)", 3.14); err == nil {
		t.Fatal("unsupported type must be rejected")
	}
}

// Vectors from EIP-137.
func TestNamehash(t *testing.T) {
	cases := map[string]string{
		"":        "0000000000000000000000000000000000000000000000000000000000000000",
		"eth":     "93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae",
		"foo.eth": "de9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f",
	}
	for name, want := range cases {
		node := namehash(name)
		if got := hex.EncodeToString(node[:]); got != want {
			t.Fatalf("namehash(%q): want %s, got %s", name, want, got)
		}
	}
}
