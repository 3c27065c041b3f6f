package bot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kobuta23/telegram-minter/internal/model"
	"github.com/kobuta23/telegram-minter/internal/telegram"
)

const adminHelpText = `Admin commands:
/addadmin @username - Add a new admin
/removeadmin @username - Remove an admin
/grantrole @username <role> - Grant a role
/revokerole @username <role> - Revoke a role
/listroles @username - List roles for a user
/addgroup - Whitelist this group
/removegroup - Remove this group from the whitelist

Available roles:
- mint: Can mint their default NFT
- mint_any: Can mint any NFT
- create: Can create NFTs
- view_logs: Can view audit logs
- view_tokens: Can view token details
- admin: Full admin access

Example:
/grantrole @alice mint_any`

// requireAdmin is the single privileged-action checkpoint for the admin
// command family. The first actor to reach it while the registry is empty is
// bootstrapped as admin; the check-and-grant is atomic inside the registry,
// so two racing actors cannot both win.
func (b *Bot) requireAdmin(ctx context.Context, msg *telegram.Message) bool {
	actor := model.ActorID(msg.From.ID)
	granted, err := b.registry.BootstrapIfEmpty(actor)
	if err != nil {
		b.log.Error("bootstrap failed", zap.Int64("actor", int64(actor)), zap.Error(err))
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return false
	}
	if granted {
		b.log.Info("bootstrapped first admin", zap.Int64("actor", int64(actor)))
	}
	if !b.registry.HasCapability(actor, model.CapAdmin) {
		b.reply(ctx, msg.Chat.ID, "You do not have admin permissions.")
		return false
	}
	return true
}

// resolveTarget maps an @handle to a known actor via the directory.
func (b *Bot) resolveTarget(ctx context.Context, msg *telegram.Message, handle string) (model.Actor, bool) {
	target, ok := b.directory.ByHandle(handle)
	if !ok {
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("I don't know %s yet. They need to message the bot once first.", handle))
		return model.Actor{}, false
	}
	return target, true
}

func (b *Bot) handleAdminHelp(ctx context.Context, msg *telegram.Message) {
	if !b.requireAdmin(ctx, msg) {
		return
	}
	b.reply(ctx, msg.Chat.ID, adminHelpText)
}

func (b *Bot) handleAddAdmin(ctx context.Context, msg *telegram.Message, args []string) {
	if !b.requireAdmin(ctx, msg) {
		return
	}
	target, ok := b.resolveTarget(ctx, msg, args[0])
	if !ok {
		return
	}
	if err := b.registry.Grant(target.ID, model.CapAdmin); err != nil {
		b.log.Error("grant admin failed", zap.Int64("target", int64(target.ID)), zap.Error(err))
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}
	if err := b.auditAdmin(msg, target, model.CapAdmin); err != nil {
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Successfully added %s as admin.", args[0]))
}

func (b *Bot) handleRemoveAdmin(ctx context.Context, msg *telegram.Message, args []string) {
	if !b.requireAdmin(ctx, msg) {
		return
	}
	target, ok := b.resolveTarget(ctx, msg, args[0])
	if !ok {
		return
	}
	if err := b.registry.Revoke(target.ID, model.CapAdmin); err != nil {
		b.log.Error("revoke admin failed", zap.Int64("target", int64(target.ID)), zap.Error(err))
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}
	if err := b.auditAdmin(msg, target, model.CapAdmin); err != nil {
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Successfully removed %s from admins.", args[0]))
}

func (b *Bot) handleGrantRole(ctx context.Context, msg *telegram.Message, args []string) {
	if !b.requireAdmin(ctx, msg) {
		return
	}
	role := model.Capability(args[1])
	if !model.KnownCapability(role) {
		b.reply(ctx, msg.Chat.ID, "Invalid role. Use /adminhelp to see available roles.")
		return
	}
	target, ok := b.resolveTarget(ctx, msg, args[0])
	if !ok {
		return
	}
	if err := b.registry.Grant(target.ID, role); err != nil {
		b.log.Error("grant failed", zap.Int64("target", int64(target.ID)), zap.Error(err))
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}
	if err := b.auditAdmin(msg, target, role); err != nil {
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Successfully granted %s role to %s.", role, args[0]))
}

func (b *Bot) handleRevokeRole(ctx context.Context, msg *telegram.Message, args []string) {
	if !b.requireAdmin(ctx, msg) {
		return
	}
	role := model.Capability(args[1])
	if !model.KnownCapability(role) {
		b.reply(ctx, msg.Chat.ID, "Invalid role. Use /adminhelp to see available roles.")
		return
	}
	target, ok := b.resolveTarget(ctx, msg, args[0])
	if !ok {
		return
	}
	if err := b.registry.Revoke(target.ID, role); err != nil {
		b.log.Error("revoke failed", zap.Int64("target", int64(target.ID)), zap.Error(err))
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}
	if err := b.auditAdmin(msg, target, role); err != nil {
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Successfully revoked %s role from %s.", role, args[0]))
}

func (b *Bot) handleListRoles(ctx context.Context, msg *telegram.Message, args []string) {
	if !b.requireAdmin(ctx, msg) {
		return
	}
	target, ok := b.resolveTarget(ctx, msg, args[0])
	if !ok {
		return
	}
	caps := b.registry.Capabilities(target.ID)
	if len(caps) == 0 {
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Roles for %s:\nNo roles assigned", args[0]))
		return
	}
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("Roles for %s:\n%s", args[0], strings.Join(names, ", ")))
}

func (b *Bot) handleAddGroup(ctx context.Context, msg *telegram.Message) {
	if !b.requireAdmin(ctx, msg) {
		return
	}
	if msg.Chat.Type == "private" {
		b.reply(ctx, msg.Chat.ID, "This command only works in a group chat.")
		return
	}
	if err := b.registry.WhitelistGroup(msg.Chat.ID); err != nil {
		b.log.Error("whitelist group failed", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}
	b.reply(ctx, msg.Chat.ID, "This group can now use the bot.")
}

func (b *Bot) handleRemoveGroup(ctx context.Context, msg *telegram.Message) {
	if !b.requireAdmin(ctx, msg) {
		return
	}
	if err := b.registry.RemoveGroup(msg.Chat.ID); err != nil {
		b.log.Error("remove group failed", zap.Int64("chat", msg.Chat.ID), zap.Error(err))
		b.reply(ctx, msg.Chat.ID, genericFailure)
		return
	}
	b.reply(ctx, msg.Chat.ID, "This group was removed from the whitelist.")
}

func (b *Bot) auditAdmin(msg *telegram.Message, target model.Actor, role model.Capability) error {
	return b.appendAudit(model.AuditEntry{
		Action:      model.ActionAdmin,
		ActorID:     model.ActorID(msg.From.ID),
		ActorHandle: msg.From.Username,
		Chat:        chatContext(msg),
		Admin: &model.AdminEvent{
			TargetHandle: target.Handle,
			TargetID:     target.ID,
			Role:         role,
		},
	})
}
