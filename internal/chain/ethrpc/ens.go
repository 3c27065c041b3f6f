package ethrpc

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/kobuta23/telegram-minter/internal/chain"
	"github.com/kobuta23/telegram-minter/internal/errs"
	"github.com/kobuta23/telegram-minter/internal/model"
)

// ensRegistry is the ENS registry address on Ethereum mainnet.
const ensRegistry = model.Address("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

var zeroAddress = model.Address("0x" + strings.Repeat("0", 40))

// ResolveName resolves an ENS name to an address via the mainnet registry:
// resolver(namehash) on the registry, then addr(namehash) on the resolver.
func (c *Client) ResolveName(ctx context.Context, name string) (model.Address, error) {
	node := namehash(name)

	resolver, err := c.ensRead(ctx, ensRegistry, "resolver(bytes32)", node)
	if err != nil {
		return "", fmt.Errorf("%w: resolver lookup for %s: %v", errs.ErrResolution, name, err)
	}
	if resolver == zeroAddress {
		return "", fmt.Errorf("%w: no resolver for %s", errs.ErrResolution, name)
	}

	addr, err := c.ensRead(ctx, resolver, "addr(bytes32)", node)
	if err != nil {
		return "", fmt.Errorf("%w: addr lookup for %s: %v", errs.ErrResolution, name, err)
	}
	if addr == zeroAddress {
		return "", fmt.Errorf("%w: %s has no address record", errs.ErrResolution, name)
	}
	return chain.Checksum(addr), nil
}

// ensRead performs one address-returning eth_call on mainnet.
func (c *Client) ensRead(ctx context.Context, to model.Address, sig string, node [32]byte) (model.Address, error) {
	data, err := encodeCall(sig, node)
	if err != nil {
		return "", err
	}
	msg := callMsg{To: string(to), Data: hexEncode(data)}
	var ret string
	if err := c.call(ctx, c.cfg.MainnetRPCURL, "eth_call", []any{msg, "latest"}, &ret); err != nil {
		return "", err
	}
	raw, err := hexDecode(ret)
	if err != nil {
		return "", err
	}
	return chain.AddressResult(raw)
}

// namehash implements the ENS name hashing algorithm (EIP-137).
func namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(strings.ToLower(name), ".")
	for i := len(labels) - 1; i >= 0; i-- {
		h := sha3.NewLegacyKeccak256()
		h.Write([]byte(labels[i]))
		labelHash := h.Sum(nil)

		h = sha3.NewLegacyKeccak256()
		h.Write(node[:])
		h.Write(labelHash)
		copy(node[:], h.Sum(nil))
	}
	return node
}
