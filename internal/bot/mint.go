package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/kobuta23/telegram-minter/internal/chain"
	"github.com/kobuta23/telegram-minter/internal/errs"
	"github.com/kobuta23/telegram-minter/internal/model"
	"github.com/kobuta23/telegram-minter/internal/telegram"
)

// handleMint drives /mint <recipient> [tokenId]: capability gates, recipient
// resolution, on-chain preview, and the confirmation handshake.
func (b *Bot) handleMint(ctx context.Context, msg *telegram.Message, args []string) {
	actor := model.ActorID(msg.From.ID)
	chatID := msg.Chat.ID

	canMintAny := b.registry.HasCapability(actor, model.CapMintAny)
	if !canMintAny && !b.registry.HasCapability(actor, model.CapMint) {
		b.reply(ctx, chatID, "You do not have permission to mint NFTs.")
		return
	}

	recipient := args[0]
	explicitID := len(args) > 1 && args[1] != ""

	// the stronger capability is checked before anything else happens,
	// including address resolution
	if explicitID && !canMintAny {
		b.reply(ctx, chatID, "You do not have permission to mint a specific NFT.")
		return
	}

	var tokenID int64
	if explicitID {
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			b.reply(ctx, chatID, "Invalid token id.")
			return
		}
		tokenID = id
	} else {
		id, ok := b.tokens.Get(actor)
		if !ok {
			b.reply(ctx, chatID, "You don't have any NFT to mint. Create one first with /create.")
			return
		}
		tokenID = id
	}

	address, err := b.resolveRecipient(ctx, recipient)
	if err != nil {
		if errors.Is(err, errs.ErrValidation) {
			b.reply(ctx, chatID, "Invalid address or ENS name.")
		} else {
			b.reply(ctx, chatID, "Could not resolve "+recipient+".")
		}
		return
	}

	meta, err := b.tokenMetadata(ctx, tokenID)
	if err != nil {
		b.log.Warn("token preview failed", zap.Int64("token", tokenID), zap.Error(err))
		b.reply(ctx, chatID, fmt.Sprintf("Token #%d could not be loaded. Does it exist?", tokenID))
		return
	}

	correlation := uuid.Must(uuid.NewV4()).String()
	b.sessions.OpenMintConfirmation(correlation, model.MintRequest{
		Initiator:        actor,
		RecipientInput:   recipient,
		ResolvedAddress:  address,
		TokenID:          tokenID,
		CorrelationToken: correlation,
		ChatID:           chatID,
	})

	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "Confirm", CallbackData: MintConfirm{Initiator: actor, CorrelationToken: correlation}.Encode()},
		{Text: "Cancel", CallbackData: MintCancel{Initiator: actor, CorrelationToken: correlation}.Encode()},
	}}}
	caption := fmt.Sprintf("Mint token #%d (%s) to %s?\n\n%s", tokenID, meta.Name, recipient, meta.Description)
	if _, err := b.api.SendPhoto(ctx, chatID, telegram.Photo{URL: b.ipfs.URL(meta.Image)}, caption, &telegram.SendOptions{ReplyMarkup: markup}); err != nil {
		b.log.Warn("mint preview send failed", zap.Error(err))
		b.sessions.DropMintConfirmation(correlation)
		b.reply(ctx, chatID, genericFailure)
	}
}

// resolveRecipient turns the typed recipient into a checksummed address.
// Unknown shapes are validation errors; failed lookups are resolution errors.
func (b *Bot) resolveRecipient(ctx context.Context, recipient string) (model.Address, error) {
	switch {
	case chain.IsHexAddress(recipient):
		return chain.Checksum(model.Address(recipient)), nil
	case strings.HasSuffix(recipient, ".eth"):
		return b.chain.ResolveName(ctx, recipient)
	default:
		return "", fmt.Errorf("%w: %q is neither an address nor an ENS name", errs.ErrValidation, recipient)
	}
}

// tokenMetadata reads the token's metadata reference on chain and
// dereferences it through the pinning gateway.
func (b *Bot) tokenMetadata(ctx context.Context, tokenID int64) (*model.TokenMetadata, error) {
	ret, err := b.chain.Read(ctx, chain.EntryURI, tokenID)
	if err != nil {
		return nil, fmt.Errorf("%w: uri(%d): %v", errs.ErrResolution, tokenID, err)
	}
	uri, err := chain.StringResult(ret)
	if err != nil {
		return nil, err
	}
	if uri == "" {
		return nil, fmt.Errorf("%w: token %d has no metadata", errs.ErrNotFound, tokenID)
	}
	meta, err := b.ipfs.FetchMetadata(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata for token %d: %v", errs.ErrResolution, tokenID, err)
	}
	return meta, nil
}

// handleMintConfirm consumes the pending request and submits the mint. The
// request is taken before submission, so a second click on the same button
// finds nothing and triggers no chain call. Success is reported after
// submission without waiting for the receipt.
func (b *Bot) handleMintConfirm(ctx context.Context, q *telegram.CallbackQuery, p MintConfirm) {
	req, err := b.sessions.TakeMintConfirmation(p.CorrelationToken)
	if err != nil {
		b.answer(ctx, q.ID, "No pending mint request found.")
		return
	}
	// reply where the request was opened, not where the button lives
	chatID := req.ChatID
	b.answer(ctx, q.ID, "")
	b.removeButtons(ctx, chatID, q.Message.MessageID)
	b.reply(ctx, chatID, fmt.Sprintf("NFT %d is being minted to %s! Pending...", req.TokenID, req.RecipientInput))

	res, err := b.gateway.Submit(ctx, chain.EntryMint, req.ResolvedAddress, req.TokenID, int64(1))
	if err != nil {
		b.log.Error("mint failed",
			zap.Int64("token", req.TokenID),
			zap.String("recipient", string(req.ResolvedAddress)),
			zap.Error(err),
		)
		if errors.Is(err, errs.ErrSubmission) {
			b.reply(ctx, chatID, fmt.Sprintf("Error minting NFT %d to %s. The transaction may still be pending; retry with /mint if it does not land.", req.TokenID, req.RecipientInput))
		} else {
			b.reply(ctx, chatID, fmt.Sprintf("Error minting NFT %d to %s.", req.TokenID, req.RecipientInput))
		}
		return
	}

	if err := b.appendAudit(model.AuditEntry{
		Action:      model.ActionMint,
		ActorID:     req.Initiator,
		ActorHandle: q.From.Username,
		Chat:        model.ChatContext{ChatID: chatID, ChatTitle: q.Message.Chat.Title},
		Token:       &model.TokenEvent{TokenID: req.TokenID, TxRef: string(res.TxRef), Recipient: req.ResolvedAddress},
	}); err != nil {
		b.reply(ctx, chatID, genericFailure)
		return
	}

	b.reply(ctx, chatID, fmt.Sprintf("Minted NFT %d to %s! Tx: %s", req.TokenID, req.RecipientInput, b.explorer(string(res.TxRef))))
}

// handleMintCancel drops the pending request; no audit entry is written.
func (b *Bot) handleMintCancel(ctx context.Context, q *telegram.CallbackQuery, p MintCancel) {
	b.sessions.DropMintConfirmation(p.CorrelationToken)
	b.answer(ctx, q.ID, "")
	b.removeButtons(ctx, q.Message.Chat.ID, q.Message.MessageID)
	b.reply(ctx, q.Message.Chat.ID, "Mint cancelled.")
}
