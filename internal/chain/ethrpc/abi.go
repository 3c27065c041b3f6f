package ethrpc

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/kobuta23/telegram-minter/internal/chain"
	"github.com/kobuta23/telegram-minter/internal/model"
)

// signatures maps contract entry points to their canonical ABI signatures.
var signatures = map[chain.EntryPoint]string{
	chain.EntryCreateToken: "createToken(string)",
	chain.EntryMint:        "mint(address,uint256,uint256)",
	chain.EntryURI:         "uri(uint256)",
	chain.EntryTotalSupply: "totalSupply()",
	chain.EntryOwnerOf:     "ownerOf(uint256)",
}

// selector returns the 4-byte function selector for an ABI signature.
func selector(sig string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	return h.Sum(nil)[:4]
}

// encodeCall ABI-encodes selector(sig) plus the arguments. Supported argument
// kinds cover everything the contract surface needs: addresses, unsigned
// integers, 32-byte words, and dynamic strings/bytes.
func encodeCall(sig string, args ...any) ([]byte, error) {
	head := make([][]byte, len(args))
	tails := make([][]byte, len(args))
	for i, arg := range args {
		word, tail, err := encodeArg(arg)
		if err != nil {
			return nil, fmt.Errorf("arg %d of %s: %w", i, sig, err)
		}
		head[i] = word
		tails[i] = tail
	}
	// dynamic args hold an offset in the head and their payload in the tail
	out := append([]byte(nil), selector(sig)...)
	offset := uint64(32 * len(args))
	for i := range args {
		if tails[i] != nil {
			out = append(out, word256(offset)...)
			offset += uint64(len(tails[i]))
		} else {
			out = append(out, head[i]...)
		}
	}
	for i := range args {
		out = append(out, tails[i]...)
	}
	return out, nil
}

func encodeArg(arg any) (word, tail []byte, err error) {
	switch v := arg.(type) {
	case model.Address:
		b, err := hex.DecodeString(strings.ToLower(strings.TrimPrefix(string(v), "0x")))
		if err != nil || len(b) != 20 {
			return nil, nil, fmt.Errorf("bad address %q", v)
		}
		w := make([]byte, 32)
		copy(w[12:], b)
		return w, nil, nil
	case int64:
		if v < 0 {
			return nil, nil, fmt.Errorf("negative integer %d", v)
		}
		return word256(uint64(v)), nil, nil
	case uint64:
		return word256(v), nil, nil
	case *uint256.Int:
		b := v.Bytes32()
		return b[:], nil, nil
	case [32]byte:
		return v[:], nil, nil
	case string:
		return nil, dynamicTail([]byte(v)), nil
	case []byte:
		return nil, dynamicTail(v), nil
	default:
		return nil, nil, fmt.Errorf("unsupported argument type %T", arg)
	}
}

// dynamicTail encodes length plus right-padded payload.
func dynamicTail(b []byte) []byte {
	out := word256(uint64(len(b)))
	out = append(out, b...)
	if pad := len(b) % 32; pad != 0 {
		out = append(out, make([]byte, 32-pad)...)
	}
	return out
}

func word256(v uint64) []byte {
	b := uint256.NewInt(v).Bytes32()
	return b[:]
}
