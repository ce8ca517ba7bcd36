package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/geode-sdk/GeodeDiscord/internal/index"
)

const searchPageSize = 10

func (b *Bot) handleIndexCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	sub, options := subcommand(data)
	switch sub {
	case "search":
		b.handleIndexSearch(s, i, options)
	case "mod":
		b.handleIndexMod(s, i, options)
	case "pending":
		b.handleIndexPending(s, i)
	default:
		b.respondError(s, i, "Unknown subcommand.")
	}
}

func (b *Bot) handleIndexSearch(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	query := option(options, "query").StringValue()

	mods, err := b.index.Search(context.Background(), query, searchPageSize)
	if err != nil {
		b.logger.Error("mod index search failed", "query", query, "error", err)
		b.respondError(s, i, "The mod index is not reachable right now.")
		return
	}
	if len(mods) == 0 {
		b.respondError(s, i, fmt.Sprintf("No mods found for `%s`.", query))
		return
	}

	var sb strings.Builder
	for _, mod := range mods {
		fmt.Fprintf(&sb, "**%s** (`%s`) — %d downloads%s\n",
			mod.DisplayName(), mod.ID, mod.DownloadCount, featuredMark(&mod))
	}

	b.respondEmbeds(s, i, []*discordgo.MessageEmbed{{
		Title:       fmt.Sprintf("Mods matching \"%s\"", query),
		Description: sb.String(),
	}}, nil)
}

func (b *Bot) handleIndexMod(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	id := option(options, "id").StringValue()

	mod, err := b.index.GetMod(context.Background(), id)
	if err != nil {
		b.logger.Error("mod index lookup failed", "id", id, "error", err)
		b.respondError(s, i, fmt.Sprintf("Could not find `%s` on the mod index.", id))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: mod.DisplayName() + featuredMark(mod),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: fmt.Sprintf("`%s`", mod.ID), Inline: true},
			{Name: "Downloads", Value: fmt.Sprintf("%d", mod.DownloadCount), Inline: true},
		},
	}
	if len(mod.Developers) > 0 {
		names := make([]string, 0, len(mod.Developers))
		for _, dev := range mod.Developers {
			if dev.DisplayName != "" {
				names = append(names, dev.DisplayName)
			} else {
				names = append(names, dev.Username)
			}
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Developers", Value: strings.Join(names, ", "), Inline: true,
		})
	}
	if len(mod.Versions) > 0 {
		latest := mod.Versions[0]
		embed.Description = latest.Description
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Latest version", Value: latest.Version, Inline: true,
		})
	}

	b.respondEmbeds(s, i, []*discordgo.MessageEmbed{embed}, nil)
}

func (b *Bot) handleIndexPending(s *discordgo.Session, i *discordgo.InteractionCreate) {
	count, err := b.index.PendingCount(context.Background())
	if err != nil {
		b.logger.Error("mod index pending count failed", "error", err)
		b.respondError(s, i, "The mod index is not reachable right now.")
		return
	}

	switch count {
	case 0:
		b.respondText(s, i, "No mods are awaiting verification. 🎉")
	case 1:
		b.respondText(s, i, "**1** mod is awaiting verification.")
	default:
		b.respondText(s, i, fmt.Sprintf("**%d** mods are awaiting verification.", count))
	}
}

func featuredMark(mod *index.Mod) string {
	if mod.Featured {
		return " ⭐"
	}
	return ""
}
