package bot

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kobuta23/telegram-minter/internal/chain"
	"github.com/kobuta23/telegram-minter/internal/model"
)

// encodedAddress is an ABI-encoded address return word.
func encodedAddress(t *testing.T, addr string) []byte {
	t.Helper()
	b, err := hex.DecodeString(addr[2:])
	require.NoError(t, err)
	w := make([]byte, 32)
	copy(w[12:], b)
	return w
}

func TestTokensRequiresCapability(t *testing.T) {
	h := newHarness(t)
	h.bot.HandleUpdate(context.Background(), userMessage(10, "/tokens"))
	require.Equal(t, "You do not have permission to view tokens.", h.api.lastText(t))
}

func TestTokensEnumeratesBySupply(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.registry.Grant(10, model.CapViewTokens))
	h.chain.reads[chain.EntryTotalSupply] = encodedUint(2)
	h.chain.reads[chain.EntryOwnerOf] = encodedAddress(t, "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")

	h.bot.HandleUpdate(ctx, userMessage(10, "/tokens"))

	text := h.api.lastText(t)
	require.Contains(t, text, "Token ID: 0")
	require.Contains(t, text, "Token ID: 1")
	require.NotContains(t, text, "Token ID: 2")
	require.Contains(t, text, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
}

func TestTokenDetails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.chain.reads[chain.EntryURI] = encodedString("ipfs://metaQm")

	h.bot.HandleUpdate(ctx, userMessage(10, "/token 4"))

	require.Len(t, h.api.photos, 1)
	require.Contains(t, h.api.photos[0].Caption, "Token #4")
	require.Contains(t, h.api.photos[0].Caption, "Name: Sample")
}

func TestTokenDetailsMissing(t *testing.T) {
	h := newHarness(t)
	h.bot.HandleUpdate(context.Background(), userMessage(10, "/token 4"))
	require.Equal(t, "Token #4 does not exist.", h.api.lastText(t))
}

func TestMyTokenSetsDefault(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.bot.HandleUpdate(ctx, userMessage(10, "/mytoken 6"))
	require.Equal(t, "Token #6 is now your default token.", h.api.lastText(t))

	h.bot.HandleUpdate(ctx, userMessage(10, "/mytoken 9"))
	texts := h.api.texts()
	require.Contains(t, texts, "Token #6 was your default token.")
	require.Contains(t, texts, "Token #9 is now your default token.")

	id, ok := h.tokens.Get(10)
	require.True(t, ok)
	require.Equal(t, int64(9), id)
}

func TestTokenMinters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.tokens.Set(20, 5))
	h.bot.HandleUpdate(ctx, userMessage(20, "hello"))

	h.bot.HandleUpdate(ctx, userMessage(10, "/token-minters"))

	text := h.api.lastText(t)
	require.Contains(t, text, "@user20: Token #5")
	last := h.api.sent[len(h.api.sent)-1]
	require.NotNil(t, last.Opts)
	require.NotNil(t, last.Opts.ReplyMarkup, "expected a See All Tokens button")
}

func TestTokensAllButton(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.chain.reads[chain.EntryTotalSupply] = encodedUint(3)

	h.bot.HandleUpdate(ctx, buttonPress(10, TokensAll{Initiator: 10}.Encode()))

	text := h.api.lastText(t)
	require.Contains(t, text, "Token #0")
	require.Contains(t, text, "Token #2")
	require.NotContains(t, text, "Token #3")
}
