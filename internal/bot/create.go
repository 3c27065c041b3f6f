package bot

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kobuta23/telegram-minter/internal/chain"
	"github.com/kobuta23/telegram-minter/internal/model"
	"github.com/kobuta23/telegram-minter/internal/pin"
	"github.com/kobuta23/telegram-minter/internal/telegram"
)

// Name and description limits in characters, applied after trimming.
const (
	minNameLen = 3
	maxNameLen = 50
	minDescLen = 10
	maxDescLen = 500
)

// handleCreate starts the creation wizard. If the actor already has a default
// token they must explicitly choose to replace it; a wizard abandoned mid-way
// is silently superseded by the restart.
func (b *Bot) handleCreate(ctx context.Context, msg *telegram.Message) {
	if !b.requireCapability(ctx, msg, model.CapCreate, "You do not have permission to create NFTs.") {
		return
	}
	actor := model.ActorID(msg.From.ID)

	if tokenID, ok := b.tokens.Get(actor); ok {
		markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
			{Text: "Create new", CallbackData: CreateReplace{Initiator: actor}.Encode()},
			{Text: "Keep existing", CallbackData: CreateKeep{Initiator: actor}.Encode()},
		}}}
		text := fmt.Sprintf("You already have an NFT with token ID %d. Would you like to create a new one? This will replace your default NFT.", tokenID)
		if _, err := b.api.SendMessage(ctx, msg.Chat.ID, text, &telegram.SendOptions{ReplyMarkup: markup}); err != nil {
			b.log.Warn("send failed", zap.Error(err))
		}
		return
	}

	b.sessions.BeginCreation(actor)
	b.reply(ctx, msg.Chat.ID, "Let's create your NFT! Please send an image.")
}

// handleCancel aborts the wizard from a command, wherever it stands.
func (b *Bot) handleCancel(ctx context.Context, msg *telegram.Message) {
	actor := model.ActorID(msg.From.ID)
	if b.sessions.CreationState(actor) == model.StateNone {
		b.reply(ctx, msg.Chat.ID, "Nothing to cancel.")
		return
	}
	b.sessions.CancelCreation(actor)
	b.reply(ctx, msg.Chat.ID, "NFT creation cancelled.")
}

// handleCreationPhoto is the image-intake step. Violations keep the wizard at
// the image step and re-prompt with the specific reason.
func (b *Bot) handleCreationPhoto(ctx context.Context, msg *telegram.Message) {
	actor := model.ActorID(msg.From.ID)
	if b.sessions.CreationState(actor) != model.StateAwaitingImage {
		return
	}

	// highest-resolution variant comes last
	photo := msg.Photo[len(msg.Photo)-1]
	file, err := b.api.GetFile(ctx, photo.FileID)
	if err != nil {
		b.log.Warn("getFile failed", zap.Error(err))
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}
	data, err := b.api.DownloadFile(ctx, file.FilePath)
	if err != nil {
		b.log.Warn("download failed", zap.Error(err))
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}

	if err := validateImage(data, file.FilePath); err != nil {
		b.reply(ctx, msg.Chat.ID, reason(err)+" Please send another image.")
		return
	}

	if err := b.sessions.AdvanceCreation(actor, model.FieldImage, data); err != nil {
		// record gone or advanced concurrently; nothing to re-execute
		b.log.Warn("image intake rejected", zap.Int64("actor", int64(actor)), zap.Error(err))
		return
	}
	b.sessions.SetCreationImageName(actor, file.FilePath)
	b.reply(ctx, msg.Chat.ID, "Great! Now send the name for your NFT.")
}

// handleCreationText captures the name and description steps from plain
// messages, then presents the confirmation preview.
func (b *Bot) handleCreationText(ctx context.Context, msg *telegram.Message) {
	actor := model.ActorID(msg.From.ID)
	text := strings.TrimSpace(msg.Text)

	switch b.sessions.CreationState(actor) {
	case model.StateAwaitingName:
		// limits are in characters, not bytes
		if n := utf8.RuneCountInString(text); n < minNameLen || n > maxNameLen {
			b.reply(ctx, msg.Chat.ID, fmt.Sprintf("The name must be %d-%d characters. Try again.", minNameLen, maxNameLen))
			return
		}
		if err := b.sessions.AdvanceCreation(actor, model.FieldName, []byte(text)); err != nil {
			b.log.Warn("name capture rejected", zap.Int64("actor", int64(actor)), zap.Error(err))
			return
		}
		b.reply(ctx, msg.Chat.ID, "Excellent! Now send the description.")

	case model.StateAwaitingDescription:
		if n := utf8.RuneCountInString(text); n < minDescLen || n > maxDescLen {
			b.reply(ctx, msg.Chat.ID, fmt.Sprintf("The description must be %d-%d characters. Try again.", minDescLen, maxDescLen))
			return
		}
		if err := b.sessions.AdvanceCreation(actor, model.FieldDescription, []byte(text)); err != nil {
			b.log.Warn("description capture rejected", zap.Int64("actor", int64(actor)), zap.Error(err))
			return
		}
		b.sendCreationPreview(ctx, msg.Chat.ID, actor)
	}
}

// sendCreationPreview shows the captured image, name, and description with
// confirm/cancel buttons.
func (b *Bot) sendCreationPreview(ctx context.Context, chatID int64, actor model.ActorID) {
	pending, ok := b.sessions.PeekCreation(actor)
	if !ok {
		return
	}
	markup := &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{{
		{Text: "Confirm", CallbackData: CreateConfirm{Initiator: actor}.Encode()},
		{Text: "Cancel", CallbackData: CreateCancel{Initiator: actor}.Encode()},
	}}}
	caption := fmt.Sprintf("Name: %s\nDescription: %s\n\nCreate this NFT?", pending.Name, pending.Description)
	sent, err := b.api.SendPhoto(ctx, chatID,
		telegram.Photo{Bytes: pending.Image, Filename: pending.Name + ".jpg"},
		caption, &telegram.SendOptions{ReplyMarkup: markup})
	if err != nil {
		b.log.Warn("preview failed", zap.Error(err))
		b.reply(ctx, chatID, genericFailure)
		return
	}
	b.sessions.SetCreationPreview(actor, sent.MessageID)
}

// handleCreateConfirm pins the image and metadata, submits createToken, waits
// for the receipt, records the default token, and audits. The pending record
// is consumed first, so a second racing confirm observes "expired" and no
// re-execution happens.
func (b *Bot) handleCreateConfirm(ctx context.Context, q *telegram.CallbackQuery) {
	actor := model.ActorID(q.From.ID)
	chatID := q.Message.Chat.ID

	pending, err := b.sessions.CompleteCreation(actor)
	if err != nil {
		b.answer(ctx, q.ID, "No pending creation found.")
		return
	}
	b.answer(ctx, q.ID, "")
	b.removeButtons(ctx, chatID, q.Message.MessageID)
	b.reply(ctx, chatID, "Creating your NFT...")

	imageAddr, err := b.pinner.Pin(ctx, pending.Image, pin.Object{
		Filename:    pending.Name + "-image" + extOrJpg(pending.ImageName),
		ContentType: contentTypeForExt(pending.ImageName),
	})
	if err != nil {
		b.log.Error("image pin failed", zap.Int64("actor", int64(actor)), zap.Error(err))
		b.reply(ctx, chatID, "Sorry, there was an error creating your NFT. Please try again.")
		return
	}

	meta := model.TokenMetadata{Name: pending.Name, Description: pending.Description, Image: imageAddr}
	metaBytes, err := metadataJSON(meta)
	if err != nil {
		b.log.Error("metadata encode failed", zap.Error(err))
		b.reply(ctx, chatID, "Sorry, there was an error creating your NFT. Please try again.")
		return
	}
	metaAddr, err := b.pinner.Pin(ctx, metaBytes, pin.Object{
		Filename:    pending.Name + "-metadata.json",
		ContentType: "application/json",
	})
	if err != nil {
		b.log.Error("metadata pin failed", zap.Int64("actor", int64(actor)), zap.Error(err))
		b.reply(ctx, chatID, "Sorry, there was an error creating your NFT. Please try again.")
		return
	}

	res, err := b.gateway.Submit(ctx, chain.EntryCreateToken, metaAddr)
	if err != nil {
		b.log.Error("createToken failed", zap.Int64("actor", int64(actor)), zap.Error(err))
		b.reply(ctx, chatID, "Sorry, there was an error creating your NFT. Please try again.")
		return
	}

	// the token id is needed for the success report, so creation waits for
	// the receipt before declaring victory
	if _, err := b.gateway.AwaitReceipt(ctx, res.TxRef); err != nil {
		b.log.Error("createToken confirmation failed", zap.String("tx", string(res.TxRef)), zap.Error(err))
		b.reply(ctx, chatID, "Your NFT transaction was submitted but not yet confirmed. Check the explorer: "+b.explorer(string(res.TxRef)))
		return
	}

	tokenID, err := chain.Uint64Result(res.ReturnValue)
	if err != nil {
		b.log.Error("createToken return value", zap.Error(err))
		b.reply(ctx, chatID, genericFailure)
		return
	}

	if err := b.tokens.Set(actor, int64(tokenID)); err != nil {
		b.log.Error("default token write failed", zap.Int64("actor", int64(actor)), zap.Error(err))
		b.reply(ctx, chatID, genericFailure)
		return
	}
	if err := b.appendAudit(model.AuditEntry{
		Action:      model.ActionCreate,
		ActorID:     actor,
		ActorHandle: q.From.Username,
		Chat:        model.ChatContext{ChatID: chatID, ChatTitle: q.Message.Chat.Title},
		Token:       &model.TokenEvent{TokenID: int64(tokenID), TxRef: string(res.TxRef), Metadata: &meta},
	}); err != nil {
		b.reply(ctx, chatID, genericFailure)
		return
	}

	b.reply(ctx, chatID, fmt.Sprintf("NFT created! Token ID: %d. Tx: %s", tokenID, b.explorer(string(res.TxRef))))
	b.reply(ctx, chatID, "It is recorded as your default NFT. Mint it to someone with /mint <address | ens-name>.")
}

// handleCreateCancel drops the wizard from the preview buttons.
func (b *Bot) handleCreateCancel(ctx context.Context, q *telegram.CallbackQuery) {
	b.sessions.CancelCreation(model.ActorID(q.From.ID))
	b.answer(ctx, q.ID, "")
	b.removeButtons(ctx, q.Message.Chat.ID, q.Message.MessageID)
	b.reply(ctx, q.Message.Chat.ID, "NFT creation cancelled.")
}

// handleCreateReplace restarts the wizard over an existing default token.
func (b *Bot) handleCreateReplace(ctx context.Context, q *telegram.CallbackQuery) {
	b.sessions.BeginCreation(model.ActorID(q.From.ID))
	b.answer(ctx, q.ID, "")
	b.reply(ctx, q.Message.Chat.ID, "Let's create your new NFT! Please send an image.")
}

// handleCreateKeep aborts the restart.
func (b *Bot) handleCreateKeep(ctx context.Context, q *telegram.CallbackQuery) {
	b.answer(ctx, q.ID, "")
	b.reply(ctx, q.Message.Chat.ID, "Keeping your existing NFT.")
}

// removeButtons strips the inline keyboard from a message once a terminal
// choice was made.
func (b *Bot) removeButtons(ctx context.Context, chatID int64, messageID int) {
	if err := b.api.EditMessageReplyMarkup(ctx, chatID, messageID, &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{}}); err != nil {
		b.log.Debug("remove buttons failed", zap.Error(err))
	}
}

func extOrJpg(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return filename[i:]
	}
	return ".jpg"
}
