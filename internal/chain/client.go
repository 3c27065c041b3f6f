// Package chain defines the on-chain collaborator interface consumed by the
// workflows and the submission gateway that wraps it.
package chain

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/kobuta23/telegram-minter/internal/errs"
	"github.com/kobuta23/telegram-minter/internal/model"
)

// EntryPoint is a named operation exposed by the contract.
type EntryPoint string

// Contract entry points used by the bot.
const (
	EntryCreateToken EntryPoint = "createToken"
	EntryMint        EntryPoint = "mint"
	EntryURI         EntryPoint = "uri"
	EntryTotalSupply EntryPoint = "totalSupply"
	EntryOwnerOf     EntryPoint = "ownerOf"
)

// TxRef identifies a submitted transaction.
type TxRef string

// PreparedCall is a simulated call ready for submission.
type PreparedCall struct {
	From model.Address
	To   model.Address
	Data []byte
}

// Receipt is the confirmation outcome of a submitted transaction.
type Receipt struct {
	TxRef       TxRef
	BlockNumber uint64
	Reverted    bool
}

// Client is the external chain collaborator. Implementations perform network
// I/O; every method honors the context.
type Client interface {
	// Simulate dry-runs the entry point against current chain state and
	// returns a prepared call plus the would-be return value.
	Simulate(ctx context.Context, entry EntryPoint, args ...any) (PreparedCall, []byte, error)
	// Write submits the prepared state-changing call.
	Write(ctx context.Context, call PreparedCall) (TxRef, error)
	// Read performs a view call and returns the raw return value.
	Read(ctx context.Context, entry EntryPoint, args ...any) ([]byte, error)
	// ResolveName resolves a name-service name to an address.
	ResolveName(ctx context.Context, name string) (model.Address, error)
	// WaitForConfirmation blocks until the transaction has a receipt.
	WaitForConfirmation(ctx context.Context, ref TxRef) (Receipt, error)
}

// Uint64Result decodes a single uint256 return word as uint64.
func Uint64Result(data []byte) (uint64, error) {
	if len(data) < 32 {
		return 0, fmt.Errorf("%w: short return value (%d bytes)", errs.ErrResolution, len(data))
	}
	v := new(uint256.Int).SetBytes(data[:32])
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: return value overflows uint64", errs.ErrResolution)
	}
	return v.Uint64(), nil
}

// AddressResult decodes a single address return word.
func AddressResult(data []byte) (model.Address, error) {
	if len(data) < 32 {
		return "", fmt.Errorf("%w: short return value (%d bytes)", errs.ErrResolution, len(data))
	}
	return model.Address(fmt.Sprintf("0x%x", data[12:32])), nil
}

// StringResult decodes a single dynamic string return value.
func StringResult(data []byte) (string, error) {
	if len(data) < 64 {
		return "", fmt.Errorf("%w: short return value (%d bytes)", errs.ErrResolution, len(data))
	}
	// comparisons subtract from len(data) so hostile values cannot wrap
	size := uint64(len(data))
	off := new(uint256.Int).SetBytes(data[:32])
	if !off.IsUint64() || off.Uint64() > size-32 {
		return "", fmt.Errorf("%w: bad string offset", errs.ErrResolution)
	}
	o := off.Uint64()
	ln := new(uint256.Int).SetBytes(data[o : o+32])
	if !ln.IsUint64() || ln.Uint64() > size-o-32 {
		return "", fmt.Errorf("%w: bad string length", errs.ErrResolution)
	}
	return string(data[o+32 : o+32+ln.Uint64()]), nil
}
