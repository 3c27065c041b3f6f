package chain

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kobuta23/telegram-minter/internal/errs"
)

// SubmitResult is the outcome of an accepted state-changing call.
type SubmitResult struct {
	TxRef       TxRef
	ReturnValue []byte // from the simulation, e.g. the new token id
}

// Gateway wraps the chain client's simulate-then-submit pattern with
// consistent error classification. A simulation failure aborts before any
// on-chain effect; a write failure means on-chain state may be pending.
// The gateway never waits for finality itself: each workflow decides whether
// to additionally call AwaitReceipt before declaring success.
type Gateway struct {
	client Client
	log    *zap.Logger
}

// NewGateway constructs a Gateway over the given client.
func NewGateway(client Client, log *zap.Logger) *Gateway {
	return &Gateway{client: client, log: log}
}

// Submit dry-runs the entry point and, if the simulation passes, submits the
// real call. The simulation's return value is carried through for entry
// points whose result is needed (createToken returns the new token id).
func (g *Gateway) Submit(ctx context.Context, entry EntryPoint, args ...any) (SubmitResult, error) {
	call, ret, err := g.client.Simulate(ctx, entry, args...)
	if err != nil {
		g.log.Warn("simulation failed", zap.String("entry", string(entry)), zap.Error(err))
		return SubmitResult{}, fmt.Errorf("%w: %s: %v", errs.ErrSimulation, entry, err)
	}
	ref, err := g.client.Write(ctx, call)
	if err != nil {
		g.log.Error("write failed", zap.String("entry", string(entry)), zap.Error(err))
		return SubmitResult{}, fmt.Errorf("%w: %s: %v", errs.ErrSubmission, entry, err)
	}
	g.log.Info("transaction submitted",
		zap.String("entry", string(entry)),
		zap.String("tx", string(ref)),
	)
	return SubmitResult{TxRef: ref, ReturnValue: ret}, nil
}

// AwaitReceipt blocks until the transaction is confirmed. A reverted receipt
// is a submission failure: the call was accepted but did not take effect.
func (g *Gateway) AwaitReceipt(ctx context.Context, ref TxRef) (Receipt, error) {
	rcpt, err := g.client.WaitForConfirmation(ctx, ref)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: await %s: %v", errs.ErrSubmission, ref, err)
	}
	if rcpt.Reverted {
		return rcpt, fmt.Errorf("%w: %s reverted on-chain", errs.ErrSubmission, ref)
	}
	return rcpt, nil
}
