package telegram

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Handler processes one update. Handlers run sequentially on the poll loop;
// a handler body may still be in flight when the next update for the same
// actor arrives, so stateful collaborators must serialize internally.
type Handler func(ctx context.Context, upd Update)

// Poller drives the getUpdates long-poll loop.
type Poller struct {
	client  *Client
	handler Handler
	timeout time.Duration
	log     *zap.Logger
}

// NewPoller constructs a Poller delivering updates to handler.
func NewPoller(client *Client, handler Handler, log *zap.Logger) *Poller {
	return &Poller{client: client, handler: handler, timeout: 30 * time.Second, log: log}
}

// Run polls until the context is cancelled. Poll errors back off briefly and
// the loop resumes; the offset only advances past updates that were handed to
// the handler.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		updates, err := p.client.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.Warn("poll failed", zap.Error(err))
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		for _, upd := range updates {
			offset = upd.UpdateID + 1
			p.dispatch(ctx, upd)
		}
	}
}

// dispatch invokes the handler, containing panics so one handler cannot take
// down the poll loop.
func (p *Poller) dispatch(ctx context.Context, upd Update) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("handler panic", zap.Int64("update", upd.UpdateID), zap.Any("panic", r))
		}
	}()
	p.handler(ctx, upd)
}
