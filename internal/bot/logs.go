package bot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kobuta23/telegram-minter/internal/model"
	"github.com/kobuta23/telegram-minter/internal/telegram"
)

const logsPageSize = 5

// handleLogs shows the most recent audit entries with a Show More button.
func (b *Bot) handleLogs(ctx context.Context, msg *telegram.Message) {
	if !b.requireCapability(ctx, msg, model.CapViewLogs, "You do not have permission to view logs.") {
		return
	}
	actor := model.ActorID(msg.From.ID)
	entries := b.trail.Tail(logsPageSize)
	text := formatEntries(entries)

	var opts *telegram.SendOptions
	if b.trail.Len() > logsPageSize {
		opts = &telegram.SendOptions{ReplyMarkup: logsMoreMarkup(actor, logsPageSize*2)}
	}
	if _, err := b.api.SendMessage(ctx, msg.Chat.ID, text, opts); err != nil {
		b.log.Warn("logs send failed", zap.Error(err))
	}
}

// handleLogsMore expands the log view in place by editing the message.
func (b *Bot) handleLogsMore(ctx context.Context, q *telegram.CallbackQuery, p LogsMore) {
	// the grant may have been revoked since the button was issued
	if !b.registry.HasCapability(model.ActorID(q.From.ID), model.CapViewLogs) {
		b.answer(ctx, q.ID, "You do not have permission to view logs.")
		return
	}
	b.answer(ctx, q.ID, "")
	entries := b.trail.Tail(p.Limit)
	text := formatEntries(entries)

	var opts *telegram.SendOptions
	if b.trail.Len() > p.Limit {
		opts = &telegram.SendOptions{ReplyMarkup: logsMoreMarkup(p.Initiator, p.Limit+logsPageSize)}
	}
	if err := b.api.EditMessageText(ctx, q.Message.Chat.ID, q.Message.MessageID, text, opts); err != nil {
		b.log.Warn("logs edit failed", zap.Error(err))
	}
}

func logsMoreMarkup(actor model.ActorID, nextLimit int) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "Show More", CallbackData: LogsMore{Initiator: actor, Limit: nextLimit}.Encode()},
	}}}
}

// formatEntries renders entries (already newest first) for chat display.
func formatEntries(entries []model.AuditEntry) string {
	if len(entries) == 0 {
		return "No logs found."
	}
	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteString("---\n")
		}
		fmt.Fprintf(&sb, "%s\n", e.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&sb, "Action: %s\n", e.Action)
		if e.ActorHandle != "" {
			fmt.Fprintf(&sb, "User: %s (%d)\n", e.ActorHandle, e.ActorID)
		} else {
			fmt.Fprintf(&sb, "User: %d\n", e.ActorID)
		}
		if e.Chat.ChatTitle != "" {
			fmt.Fprintf(&sb, "Chat: %s (%d)\n", e.Chat.ChatTitle, e.Chat.ChatID)
		}
		if e.Token != nil {
			fmt.Fprintf(&sb, "Token ID: %d\n", e.Token.TokenID)
			if e.Token.Recipient != "" {
				fmt.Fprintf(&sb, "Recipient: %s\n", e.Token.Recipient)
			}
			if e.Token.TxRef != "" {
				fmt.Fprintf(&sb, "Tx: %s\n", e.Token.TxRef)
			}
		}
		if e.Admin != nil {
			fmt.Fprintf(&sb, "Target: %s (%d)", e.Admin.TargetHandle, e.Admin.TargetID)
			if e.Admin.Role != "" {
				fmt.Fprintf(&sb, " role %s", e.Admin.Role)
			}
			sb.WriteString("\n")
		}
		if e.Points != nil {
			fmt.Fprintf(&sb, "Points: %d to holders of token %d\n", e.Points.Points, e.Points.TokenID)
		}
	}
	return sb.String()
}
