package bot

import (
	"context"

	"github.com/kobuta23/telegram-minter/internal/telegram"
)

const welcomeText = `Welcome to the GroupChat NFT creator!

/create - create an NFT
/mint <address | ens-name> - mint your NFT to someone
/mint <address | ens-name> <token-id> - mint a specific NFT
/token <id> - show a token's details`

func (b *Bot) handleStart(ctx context.Context, msg *telegram.Message) {
	b.reply(ctx, msg.Chat.ID, welcomeText)
}
