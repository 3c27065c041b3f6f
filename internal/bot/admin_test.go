package bot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kobuta23/telegram-minter/internal/model"
	"github.com/kobuta23/telegram-minter/internal/telegram"
)

func TestAdminBootstrapFirstActor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// empty registry: the first admin command bootstraps the caller
	h.bot.HandleUpdate(ctx, userMessage(10, "/adminhelp"))
	require.Equal(t, adminHelpText, h.api.lastText(t))
	require.True(t, h.registry.HasCapability(10, model.CapAdmin))

	// once populated, other actors are denied instead of bootstrapped
	h.bot.HandleUpdate(ctx, userMessage(11, "/adminhelp"))
	require.Equal(t, "You do not have admin permissions.", h.api.lastText(t))
	require.False(t, h.registry.HasCapability(11, model.CapAdmin))
}

func TestGrantRoleFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.registry.Grant(10, model.CapAdmin))

	// the target is unknown until they message the bot once
	h.bot.HandleUpdate(ctx, userMessage(10, "/grantrole @user20 mint"))
	require.Contains(t, h.api.lastText(t), "I don't know @user20 yet")

	h.bot.HandleUpdate(ctx, userMessage(20, "hello"))
	h.bot.HandleUpdate(ctx, userMessage(10, "/grantrole @user20 mint"))
	require.Equal(t, "Successfully granted mint role to @user20.", h.api.lastText(t))
	require.True(t, h.registry.HasCapability(20, model.CapMint))

	entries := h.trail.ByAction(model.ActionAdmin, 10)
	require.Len(t, entries, 1)
	require.Equal(t, model.ActorID(20), entries[0].Admin.TargetID)
	require.Equal(t, model.CapMint, entries[0].Admin.Role)
}

func TestGrantRoleRejectsUnknownRole(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.registry.Grant(10, model.CapAdmin))
	h.bot.HandleUpdate(ctx, userMessage(20, "hello"))

	h.bot.HandleUpdate(ctx, userMessage(10, "/grantrole @user20 superuser"))
	require.Equal(t, "Invalid role. Use /adminhelp to see available roles.", h.api.lastText(t))
	require.Empty(t, h.registry.Capabilities(20))
}

func TestRevokeRoleFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.registry.Grant(10, model.CapAdmin))
	require.NoError(t, h.registry.Grant(20, model.CapMint, model.CapCreate))
	h.bot.HandleUpdate(ctx, userMessage(20, "hello"))

	h.bot.HandleUpdate(ctx, userMessage(10, "/revokerole @user20 mint"))
	require.Equal(t, "Successfully revoked mint role from @user20.", h.api.lastText(t))
	require.False(t, h.registry.HasCapability(20, model.CapMint))
	require.True(t, h.registry.HasCapability(20, model.CapCreate))
}

func TestAddAndRemoveAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.registry.Grant(10, model.CapAdmin))
	h.bot.HandleUpdate(ctx, userMessage(20, "hello"))

	h.bot.HandleUpdate(ctx, userMessage(10, "/addadmin @user20"))
	require.Equal(t, "Successfully added @user20 as admin.", h.api.lastText(t))
	require.True(t, h.registry.HasCapability(20, model.CapAdmin))

	h.bot.HandleUpdate(ctx, userMessage(10, "/removeadmin @user20"))
	require.Equal(t, "Successfully removed @user20 from admins.", h.api.lastText(t))
	require.False(t, h.registry.HasCapability(20, model.CapAdmin))
}

func TestGroupWhitelist(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.registry.Grant(10, model.CapAdmin))

	h.bot.HandleUpdate(ctx, userMessage(10, "/addgroup"))
	require.Equal(t, "This group can now use the bot.", h.api.lastText(t))
	require.True(t, h.registry.IsWhitelisted(99, testChatID))

	h.bot.HandleUpdate(ctx, userMessage(10, "/removegroup"))
	require.Equal(t, "This group was removed from the whitelist.", h.api.lastText(t))
	require.False(t, h.registry.IsWhitelisted(99, testChatID))
}

func TestAddGroupRejectsPrivateChat(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.registry.Grant(10, model.CapAdmin))

	upd := userMessage(10, "/addgroup")
	upd.Message.Chat = telegram.Chat{ID: 10, Type: "private"}
	h.bot.HandleUpdate(context.Background(), upd)
	require.Equal(t, "This command only works in a group chat.", h.api.lastText(t))
}

func TestListRoles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.registry.Grant(10, model.CapAdmin))
	h.bot.HandleUpdate(ctx, userMessage(20, "hello"))

	h.bot.HandleUpdate(ctx, userMessage(10, "/listroles @user20"))
	require.Contains(t, h.api.lastText(t), "No roles assigned")

	require.NoError(t, h.registry.Grant(20, model.CapMint))
	h.bot.HandleUpdate(ctx, userMessage(10, "/listroles @user20"))
	require.Contains(t, h.api.lastText(t), "mint")
}
