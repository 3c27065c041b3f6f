package chain

import (
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/kobuta23/telegram-minter/internal/model"
)

var hexAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsHexAddress reports whether s is a syntactically valid 0x-prefixed
// 40-hex-character address.
func IsHexAddress(s string) bool {
	return hexAddressRe.MatchString(s)
}

// Checksum returns the EIP-55 mixed-case form of a hex address. The input
// must already satisfy IsHexAddress.
func Checksum(addr model.Address) model.Address {
	lower := strings.ToLower(strings.TrimPrefix(string(addr), "0x"))
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	hash := h.Sum(nil)
	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' {
			nibble := hash[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c = c - 'a' + 'A'
			}
		}
		out[i] = c
	}
	return model.Address("0x" + string(out))
}
