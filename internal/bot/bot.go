// Package bot wires inbound chat events to the creation, mint, and admin
// workflows.
package bot

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kobuta23/telegram-minter/internal/audit"
	"github.com/kobuta23/telegram-minter/internal/chain"
	"github.com/kobuta23/telegram-minter/internal/model"
	"github.com/kobuta23/telegram-minter/internal/pin"
	"github.com/kobuta23/telegram-minter/internal/points"
	"github.com/kobuta23/telegram-minter/internal/security"
	"github.com/kobuta23/telegram-minter/internal/session"
	"github.com/kobuta23/telegram-minter/internal/storage"
	"github.com/kobuta23/telegram-minter/internal/telegram"
)

const genericFailure = "An error occurred, please try again."

// Deps collects the collaborators injected into the bot. All stores are
// explicit owned values, never ambient singletons.
type Deps struct {
	API       telegram.API
	Registry  *security.Registry
	Sessions  *session.Store
	Trail     *audit.Trail
	Directory *storage.Directory
	Tokens    *storage.TokenBook
	Gateway   *chain.Gateway
	Chain     chain.Client
	Pinner    pin.Pinner
	IPFS      *pin.Gateway
	Points    points.Service
	Explorer  func(txRef string) string
	Log       *zap.Logger
}

// Bot is the conversation engine: it routes updates, gates them on the
// permission registry, and drives the multi-step flows.
type Bot struct {
	api       telegram.API
	registry  *security.Registry
	sessions  *session.Store
	trail     *audit.Trail
	directory *storage.Directory
	tokens    *storage.TokenBook
	gateway   *chain.Gateway
	chain     chain.Client
	pinner    pin.Pinner
	ipfs      *pin.Gateway
	points    points.Service
	explorer  func(string) string
	log       *zap.Logger

	commands []command
}

// New constructs the bot and its command table.
func New(d Deps) *Bot {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Explorer == nil {
		d.Explorer = func(ref string) string { return ref }
	}
	b := &Bot{
		api:       d.API,
		registry:  d.Registry,
		sessions:  d.Sessions,
		trail:     d.Trail,
		directory: d.Directory,
		tokens:    d.Tokens,
		gateway:   d.Gateway,
		chain:     d.Chain,
		pinner:    d.Pinner,
		ipfs:      d.IPFS,
		points:    d.Points,
		explorer:  d.Explorer,
		log:       d.Log,
	}
	b.commands = b.commandTable()
	return b
}

// HandleUpdate processes one inbound event end to end.
func (b *Bot) HandleUpdate(ctx context.Context, upd telegram.Update) {
	switch {
	case upd.CallbackQuery != nil:
		b.recordActor(upd.CallbackQuery.From)
		b.handleCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		if upd.Message.From != nil {
			b.recordActor(*upd.Message.From)
		}
		b.handleMessage(ctx, upd.Message)
	}
}

// recordActor upserts the sender into the durable actor directory. A failed
// directory write is logged but does not block handling.
func (b *Bot) recordActor(u telegram.User) {
	if u.IsBot {
		return
	}
	err := b.directory.Upsert(model.Actor{
		ID:        model.ActorID(u.ID),
		Handle:    u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AddedAt:   time.Now().UTC(),
	})
	if err != nil {
		b.log.Warn("actor directory write failed", zap.Int64("actor", u.ID), zap.Error(err))
	}
}

// reply sends a plain text message, logging send failures.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.api.SendMessage(ctx, chatID, text, nil); err != nil {
		b.log.Warn("send failed", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// requireCapability checks the capability and sends the denial message if the
// actor lacks it.
func (b *Bot) requireCapability(ctx context.Context, msg *telegram.Message, cap model.Capability, denial string) bool {
	if msg.From == nil {
		return false
	}
	if !b.registry.HasCapability(model.ActorID(msg.From.ID), cap) {
		b.reply(ctx, msg.Chat.ID, denial)
		return false
	}
	return true
}

// chatContext captures the audit chat context from a message.
func chatContext(msg *telegram.Message) model.ChatContext {
	return model.ChatContext{
		ChatID:    msg.Chat.ID,
		ChatTitle: msg.Chat.Title,
		Message:   msg.Text,
	}
}

// reason turns a validation error into its user-facing message, dropping the
// sentinel prefix.
func reason(err error) string {
	s := err.Error()
	if i := strings.Index(s, ": "); i >= 0 {
		s = s[i+2:]
	}
	if s == "" {
		return genericFailure
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}

// metadataJSON renders the object pinned for a token.
func metadataJSON(meta model.TokenMetadata) ([]byte, error) {
	return json.MarshalIndent(meta, "", "  ")
}

// appendAudit writes an audit entry, logging persistence failures. The
// returned error lets state-changing callers refuse to report success on a
// failed durable write.
func (b *Bot) appendAudit(e model.AuditEntry) error {
	if err := b.trail.Append(e); err != nil {
		b.log.Error("audit append failed", zap.String("action", string(e.Action)), zap.Error(err))
		return err
	}
	return nil
}
