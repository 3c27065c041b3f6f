package bot

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kobuta23/telegram-minter/internal/model"
	"github.com/kobuta23/telegram-minter/internal/telegram"
)

// command binds a text pattern to its workflow handler. Submatches are
// passed through as args.
type command struct {
	re      *regexp.Regexp
	handler func(ctx context.Context, msg *telegram.Message, args []string)
}

func (b *Bot) commandTable() []command {
	return []command{
		{regexp.MustCompile(`^/start\b`), func(ctx context.Context, m *telegram.Message, _ []string) { b.handleStart(ctx, m) }},
		{regexp.MustCompile(`^/create\b`), func(ctx context.Context, m *telegram.Message, _ []string) { b.handleCreate(ctx, m) }},
		{regexp.MustCompile(`^/cancel\b`), func(ctx context.Context, m *telegram.Message, _ []string) { b.handleCancel(ctx, m) }},
		{regexp.MustCompile(`^/mint\s+(\S+)(?:\s+(\d+))?$`), b.handleMint},
		{regexp.MustCompile(`^/mytoken\s+(\d+)$`), b.handleMyToken},
		{regexp.MustCompile(`^/token\s+(\d+)$`), b.handleTokenDetails},
		{regexp.MustCompile(`^/token-minters\b`), func(ctx context.Context, m *telegram.Message, _ []string) { b.handleTokenMinters(ctx, m) }},
		{regexp.MustCompile(`^/tokens\b`), func(ctx context.Context, m *telegram.Message, _ []string) { b.handleTokens(ctx, m) }},
		{regexp.MustCompile(`^/logs\b`), func(ctx context.Context, m *telegram.Message, _ []string) { b.handleLogs(ctx, m) }},
		{regexp.MustCompile(`^/points\s+(\d+)\s+(\d+)$`), b.handlePoints},
		{regexp.MustCompile(`^/adminhelp\b`), func(ctx context.Context, m *telegram.Message, _ []string) { b.handleAdminHelp(ctx, m) }},
		{regexp.MustCompile(`^/addadmin\s+(@\w+)$`), b.handleAddAdmin},
		{regexp.MustCompile(`^/removeadmin\s+(@\w+)$`), b.handleRemoveAdmin},
		{regexp.MustCompile(`^/grantrole\s+(@\w+)\s+(\w+)$`), b.handleGrantRole},
		{regexp.MustCompile(`^/revokerole\s+(@\w+)\s+(\w+)$`), b.handleRevokeRole},
		{regexp.MustCompile(`^/listroles\s+(@\w+)$`), b.handleListRoles},
		{regexp.MustCompile(`^/addgroup\b`), func(ctx context.Context, m *telegram.Message, _ []string) { b.handleAddGroup(ctx, m) }},
		{regexp.MustCompile(`^/removegroup\b`), func(ctx context.Context, m *telegram.Message, _ []string) { b.handleRemoveGroup(ctx, m) }},
	}
}

// handleMessage routes a message: photo intake, command dispatch, or plain
// text captured by the creation wizard.
func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	if msg.From == nil {
		return
	}
	if len(msg.Photo) > 0 {
		b.handleCreationPhoto(ctx, msg)
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	if strings.HasPrefix(text, "/") {
		for _, cmd := range b.commands {
			if m := cmd.re.FindStringSubmatch(text); m != nil {
				cmd.handler(ctx, msg, m[1:])
				return
			}
		}
		return
	}
	// non-command text feeds the creation wizard when a step is awaiting it
	b.handleCreationText(ctx, msg)
}

// handleCallback decodes the button payload and dispatches it. Every path
// answers the callback query so the client stops its spinner.
func (b *Bot) handleCallback(ctx context.Context, q *telegram.CallbackQuery) {
	// Message is absent when the originating message is too old or otherwise
	// inaccessible; there is nothing to edit or reply to.
	if q.Message == nil {
		b.answer(ctx, q.ID, "")
		return
	}
	payload, err := ParsePayload(q.Data)
	if err != nil {
		b.log.Warn("rejecting callback payload", zap.String("data", q.Data), zap.Error(err))
		b.answer(ctx, q.ID, "")
		return
	}

	// The clicker must be the actor the button was issued for.
	if model.ActorID(q.From.ID) != payload.payloadInitiator() {
		b.answer(ctx, q.ID, "This button is not for you.")
		return
	}

	switch p := payload.(type) {
	case CreateConfirm:
		b.handleCreateConfirm(ctx, q)
	case CreateCancel:
		b.handleCreateCancel(ctx, q)
	case CreateReplace:
		b.handleCreateReplace(ctx, q)
	case CreateKeep:
		b.handleCreateKeep(ctx, q)
	case MintConfirm:
		b.handleMintConfirm(ctx, q, p)
	case MintCancel:
		b.handleMintCancel(ctx, q, p)
	case PointsConfirm:
		b.handlePointsConfirm(ctx, q, p)
	case PointsCancel:
		b.handlePointsCancel(ctx, q)
	case LogsMore:
		b.handleLogsMore(ctx, q, p)
	case TokensAll:
		b.handleTokensAll(ctx, q)
	}
}

// answer acknowledges a callback query, logging failures.
func (b *Bot) answer(ctx context.Context, queryID, text string) {
	if err := b.api.AnswerCallbackQuery(ctx, queryID, text); err != nil {
		b.log.Warn("answer callback failed", zap.Error(err))
	}
}
