package bot

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kobuta23/telegram-minter/internal/model"
	"github.com/kobuta23/telegram-minter/internal/telegram"
)

// handlePoints starts the /points <tokenId> <points> confirmation handshake.
func (b *Bot) handlePoints(ctx context.Context, msg *telegram.Message, args []string) {
	if !b.requireCapability(ctx, msg, model.CapAdmin, "You do not have permission to give points.") {
		return
	}
	actor := model.ActorID(msg.From.ID)
	tokenID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(ctx, msg.Chat.ID, "Invalid token id.")
		return
	}
	points, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		b.reply(ctx, msg.Chat.ID, "Invalid points amount.")
		return
	}

	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "Confirm", CallbackData: PointsConfirm{Initiator: actor, TokenID: tokenID, Points: points}.Encode()},
		{Text: "Cancel", CallbackData: PointsCancel{Initiator: actor}.Encode()},
	}}}
	text := fmt.Sprintf("Are you sure you want to give %d points to NFT holders of token ID %d?", points, tokenID)
	if _, err := b.api.SendMessage(ctx, msg.Chat.ID, text, &telegram.SendOptions{ReplyMarkup: markup}); err != nil {
		b.log.Warn("points prompt failed", zap.Error(err))
	}
}

// handlePointsConfirm calls the points service and audits the assignment.
func (b *Bot) handlePointsConfirm(ctx context.Context, q *telegram.CallbackQuery, p PointsConfirm) {
	b.answer(ctx, q.ID, "")
	chatID := q.Message.Chat.ID
	b.removeButtons(ctx, chatID, q.Message.MessageID)

	if err := b.points.GiveToHolders(ctx, p.TokenID, p.Points); err != nil {
		b.log.Error("points assignment failed",
			zap.Int64("token", p.TokenID),
			zap.Int64("points", p.Points),
			zap.Error(err),
		)
		b.reply(ctx, chatID, "Failed to give points. Please try again later.")
		return
	}
	if err := b.appendAudit(model.AuditEntry{
		Action:      model.ActionPoints,
		ActorID:     p.Initiator,
		ActorHandle: q.From.Username,
		Chat:        model.ChatContext{ChatID: chatID, ChatTitle: q.Message.Chat.Title},
		Points:      &model.PointsEvent{TokenID: p.TokenID, Points: p.Points},
	}); err != nil {
		b.reply(ctx, chatID, genericFailure)
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("%d points given to holders of token ID %d.", p.Points, p.TokenID))
}

// handlePointsCancel aborts the assignment.
func (b *Bot) handlePointsCancel(ctx context.Context, q *telegram.CallbackQuery) {
	b.answer(ctx, q.ID, "")
	b.removeButtons(ctx, q.Message.Chat.ID, q.Message.MessageID)
	b.reply(ctx, q.Message.Chat.ID, "Points assignment cancelled.")
}
