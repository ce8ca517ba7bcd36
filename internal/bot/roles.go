package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"
)

func (b *Bot) handleStickyRoleCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	sub, options := subcommand(data)
	switch sub {
	case "add":
		b.handleStickyRoleAdd(s, i, options)
	case "remove":
		b.handleStickyRoleRemove(s, i, options)
	case "list":
		b.handleStickyRoleList(s, i, options)
	default:
		b.respondError(s, i, "Unknown subcommand.")
	}
}

func (b *Bot) handleStickyRoleAdd(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	user := option(options, "user").UserValue(nil)
	role := option(options, "role").RoleValue(nil, "")

	if err := b.roleStore.Add(context.Background(), user.ID, role.ID); err != nil {
		b.logger.Error("failed to add sticky role", "user_id", user.ID, "role_id", role.ID, "error", err)
		b.respondError(s, i, "Could not save the sticky role.")
		return
	}

	// apply right away so the member does not need to rejoin first
	if err := s.GuildMemberRoleAdd(b.guildID, user.ID, role.ID); err != nil {
		b.logger.Warn("failed to grant sticky role now, it will apply on rejoin",
			"user_id", user.ID,
			"role_id", role.ID,
			"error", err,
		)
	}

	b.respondText(s, i, fmt.Sprintf("<@&%s> will be restored for <@%s> when they rejoin.", role.ID, user.ID))
}

func (b *Bot) handleStickyRoleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	user := option(options, "user").UserValue(nil)
	role := option(options, "role").RoleValue(nil, "")

	err := b.roleStore.Remove(context.Background(), user.ID, role.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		b.respondError(s, i, fmt.Sprintf("<@&%s> is not sticky for <@%s>.", role.ID, user.ID))
		return
	}
	if err != nil {
		b.logger.Error("failed to remove sticky role", "user_id", user.ID, "role_id", role.ID, "error", err)
		b.respondError(s, i, "Could not remove the sticky role.")
		return
	}

	b.respondText(s, i, fmt.Sprintf("<@&%s> will no longer be restored for <@%s>.", role.ID, user.ID))
}

func (b *Bot) handleStickyRoleList(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	user := option(options, "user").UserValue(nil)

	roleIDs, err := b.roleStore.ListForUser(context.Background(), user.ID)
	if err != nil {
		b.logger.Error("failed to list sticky roles", "user_id", user.ID, "error", err)
		b.respondError(s, i, "Could not list the sticky roles.")
		return
	}
	if len(roleIDs) == 0 {
		b.respondError(s, i, fmt.Sprintf("<@%s> has no sticky roles.", user.ID))
		return
	}

	mentions := make([]string, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", roleID))
	}
	b.respondText(s, i, fmt.Sprintf("Sticky roles for <@%s>: %s", user.ID, strings.Join(mentions, ", ")))
}
