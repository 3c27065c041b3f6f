package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kobuta23/telegram-minter/internal/chain"
	"github.com/kobuta23/telegram-minter/internal/model"
	"github.com/kobuta23/telegram-minter/internal/telegram"
)

// handleTokenDetails shows one token's metadata as a photo with caption.
func (b *Bot) handleTokenDetails(ctx context.Context, msg *telegram.Message, args []string) {
	tokenID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(ctx, msg.Chat.ID, "Invalid token id.")
		return
	}
	meta, err := b.tokenMetadata(ctx, tokenID)
	if err != nil {
		b.log.Warn("token details failed", zap.Int64("token", tokenID), zap.Error(err))
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Token #%d does not exist.", tokenID))
		return
	}
	caption := fmt.Sprintf("Token #%d\n\nName: %s\nDescription: %s", tokenID, meta.Name, meta.Description)
	if _, err := b.api.SendPhoto(ctx, msg.Chat.ID, telegram.Photo{URL: b.ipfs.URL(meta.Image)}, caption, nil); err != nil {
		b.log.Warn("token details send failed", zap.Error(err))
		b.reply(ctx, msg.Chat.ID, genericFailure)
	}
}

// handleTokens lists every token with its owner. Enumeration is bounded by
// the contract's totalSupply, never by probing ids until an error.
func (b *Bot) handleTokens(ctx context.Context, msg *telegram.Message) {
	if !b.requireCapability(ctx, msg, model.CapViewTokens, "You do not have permission to view tokens.") {
		return
	}
	supply, err := b.totalSupply(ctx)
	if err != nil {
		b.log.Warn("totalSupply failed", zap.Error(err))
		b.reply(ctx, msg.Chat.ID, "Error fetching token information.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Token List:\n\n")
	for id := int64(0); id < supply; id++ {
		ret, err := b.chain.Read(ctx, chain.EntryOwnerOf, id)
		if err != nil {
			b.log.Warn("ownerOf failed", zap.Int64("token", id), zap.Error(err))
			continue
		}
		owner, err := chain.AddressResult(ret)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "Token ID: %d\nOwner: %s\n---\n", id, chain.Checksum(owner))
	}
	b.reply(ctx, msg.Chat.ID, sb.String())
}

// handleTokenMinters lists each actor's registered default token.
func (b *Bot) handleTokenMinters(ctx context.Context, msg *telegram.Message) {
	actor := model.ActorID(msg.From.ID)
	mapping := b.tokens.All()
	var sb strings.Builder
	sb.WriteString("Registered default tokens:\n\n")
	if len(mapping) == 0 {
		sb.WriteString("None yet. Use /create to make one.\n")
	}
	for owner, tokenID := range mapping {
		if a, ok := b.directory.Get(owner); ok && a.Handle != "" {
			fmt.Fprintf(&sb, "@%s: Token #%d\n", a.Handle, tokenID)
			continue
		}
		if member, err := b.api.GetChatMember(ctx, msg.Chat.ID, int64(owner)); err == nil && member.User.Username != "" {
			fmt.Fprintf(&sb, "@%s: Token #%d\n", member.User.Username, tokenID)
			continue
		}
		fmt.Fprintf(&sb, "User %d: Token #%d\n", owner, tokenID)
	}
	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "See All Tokens", CallbackData: TokensAll{Initiator: actor}.Encode()},
	}}}
	if _, err := b.api.SendMessage(ctx, msg.Chat.ID, sb.String(), &telegram.SendOptions{ReplyMarkup: markup}); err != nil {
		b.log.Warn("token minters send failed", zap.Error(err))
	}
}

// handleTokensAll lists every existing token id, bounded by totalSupply.
func (b *Bot) handleTokensAll(ctx context.Context, q *telegram.CallbackQuery) {
	b.answer(ctx, q.ID, "")
	supply, err := b.totalSupply(ctx)
	if err != nil {
		b.log.Warn("totalSupply failed", zap.Error(err))
		b.reply(ctx, q.Message.Chat.ID, "Error fetching token information.")
		return
	}
	var sb strings.Builder
	sb.WriteString("All existing tokens:\n\n")
	if supply == 0 {
		sb.WriteString("No tokens found!")
	}
	for id := int64(0); id < supply; id++ {
		fmt.Fprintf(&sb, "Token #%d\n", id)
	}
	b.reply(ctx, q.Message.Chat.ID, sb.String())
}

// handleMyToken sets the actor's default token explicitly.
func (b *Bot) handleMyToken(ctx context.Context, msg *telegram.Message, args []string) {
	actor := model.ActorID(msg.From.ID)
	tokenID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(ctx, msg.Chat.ID, "Invalid token id.")
		return
	}
	if prev, ok := b.tokens.Get(actor); ok {
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Token #%d was your default token.", prev))
	}
	if err := b.tokens.Set(actor, tokenID); err != nil {
		b.log.Error("default token write failed", zap.Int64("actor", int64(actor)), zap.Error(err))
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Token #%d is now your default token.", tokenID))
}

func (b *Bot) totalSupply(ctx context.Context) (int64, error) {
	ret, err := b.chain.Read(ctx, chain.EntryTotalSupply)
	if err != nil {
		return 0, err
	}
	supply, err := chain.Uint64Result(ret)
	if err != nil {
		return 0, err
	}
	return int64(supply), nil
}
