package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/geode-sdk/GeodeDiscord/internal/quotes"
	"gorm.io/gorm"
)

const listPageSize = 20

func (b *Bot) handleAddQuote(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	msg, ok := data.Resolved.Messages[data.TargetID]
	if !ok || msg == nil {
		b.respondError(s, i, "Could not read that message.")
		return
	}

	if _, err := b.quoteStore.GetByMessageID(context.Background(), msg.ID); err == nil {
		b.respondError(s, i, "That message is already quoted.")
		return
	}

	quote, err := quotes.Snapshot(msg, interactionUserID(i))
	if err != nil {
		b.logger.Error("failed to snapshot message", "message_id", msg.ID, "error", err)
		b.respondError(s, i, "Could not capture that message.")
		return
	}

	if err := b.quoteStore.Add(context.Background(), quote); err != nil {
		b.logger.Error("failed to add quote", "message_id", msg.ID, "error", err)
		b.respondError(s, i, "Could not save the quote.")
		return
	}

	b.showQuote(s, i, quote, fmt.Sprintf("Added quote **%s**.", quote.Name))
}

func (b *Bot) handleQuoteCommand(s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	sub, options := subcommand(data)
	switch sub {
	case "get":
		b.handleQuoteGet(s, i, options)
	case "random":
		b.handleQuoteRandom(s, i)
	case "author":
		b.handleQuoteAuthor(s, i, options)
	case "rename":
		b.handleQuoteRename(s, i, options)
	case "update":
		b.handleQuoteUpdate(s, i, options)
	case "delete":
		b.handleQuoteDelete(s, i, options)
	case "count":
		b.handleQuoteCount(s, i)
	case "list":
		b.handleQuoteList(s, i, options)
	case "guess":
		b.handleGuessStart(s, i)
	case "leaderboard":
		b.handleLeaderboard(s, i)
	case "stats":
		b.handleStats(s, i, options)
	default:
		b.respondError(s, i, "Unknown subcommand.")
	}
}

func (b *Bot) handleQuoteGet(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	name := option(options, "name").StringValue()
	quote, err := b.quoteStore.GetByName(context.Background(), name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.respondError(s, i, fmt.Sprintf("No quote named **%s**.", name))
			return
		}
		b.logger.Error("failed to get quote", "name", name, "error", err)
		b.respondError(s, i, "Could not load the quote.")
		return
	}
	b.showQuote(s, i, quote, "")
}

func (b *Bot) handleQuoteRandom(s *discordgo.Session, i *discordgo.InteractionCreate) {
	quote, err := b.quoteStore.Random(context.Background())
	if err != nil {
		b.logger.Error("failed to get random quote", "error", err)
		b.respondError(s, i, "Could not load a quote.")
		return
	}
	if quote == nil {
		b.respondError(s, i, "No quotes stored yet. Add some with the **Add quote** message command!")
		return
	}
	b.showQuote(s, i, quote, "")
}

func (b *Bot) handleQuoteAuthor(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	user := option(options, "user").UserValue(nil)
	quote, err := b.quoteStore.RandomByAuthor(context.Background(), user.ID)
	if err != nil {
		b.logger.Error("failed to get quote by author", "author_id", user.ID, "error", err)
		b.respondError(s, i, "Could not load a quote.")
		return
	}
	if quote == nil {
		b.respondError(s, i, fmt.Sprintf("No quotes by <@%s> yet.", user.ID))
		return
	}
	b.showQuote(s, i, quote, "")
}

func (b *Bot) handleQuoteRename(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	name := option(options, "name").StringValue()
	newName := option(options, "new_name").StringValue()

	err := b.quoteStore.Rename(context.Background(), name, newName)
	switch {
	case errors.Is(err, quotes.ErrNameTaken):
		b.respondError(s, i, fmt.Sprintf("A quote named **%s** already exists.", newName))
	case errors.Is(err, gorm.ErrRecordNotFound):
		b.respondError(s, i, fmt.Sprintf("No quote named **%s**.", name))
	case err != nil:
		b.logger.Error("failed to rename quote", "name", name, "error", err)
		b.respondError(s, i, "Could not rename the quote.")
	default:
		b.respondText(s, i, fmt.Sprintf("Renamed **%s** to **%s**.", name, newName))
	}
}

func (b *Bot) handleQuoteUpdate(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	name := option(options, "name").StringValue()

	quote, err := b.quoteStore.GetByName(context.Background(), name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.respondError(s, i, fmt.Sprintf("No quote named **%s**.", name))
			return
		}
		b.logger.Error("failed to get quote", "name", name, "error", err)
		b.respondError(s, i, "Could not load the quote.")
		return
	}

	msg, err := s.ChannelMessage(quote.ChannelID, quote.MessageID)
	if err != nil {
		b.respondError(s, i, "The original message is gone; the quote cannot be refreshed.")
		return
	}

	fresh, err := quotes.Snapshot(msg, quote.QuoterID)
	if err != nil {
		b.logger.Error("failed to snapshot message", "message_id", msg.ID, "error", err)
		b.respondError(s, i, "Could not capture the message.")
		return
	}

	updated, err := b.quoteStore.Update(context.Background(), fresh)
	if err != nil {
		b.logger.Error("failed to update quote", "name", name, "error", err)
		b.respondError(s, i, "Could not update the quote.")
		return
	}
	b.showQuote(s, i, updated, fmt.Sprintf("Updated quote **%s**.", updated.Name))
}

func (b *Bot) handleQuoteDelete(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	name := option(options, "name").StringValue()

	// Deleting through the game store removes the quote's guesses with it.
	quote, err := b.gameStore.DeleteQuote(context.Background(), name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			b.respondError(s, i, fmt.Sprintf("No quote named **%s**.", name))
			return
		}
		b.logger.Error("failed to delete quote", "name", name, "error", err)
		b.respondError(s, i, "Could not delete the quote.")
		return
	}
	b.respondText(s, i, fmt.Sprintf("Deleted quote **%s** (#%d).", quote.Name, quote.ID))
}

func (b *Bot) handleQuoteCount(s *discordgo.Session, i *discordgo.InteractionCreate) {
	count, err := b.quoteStore.Count(context.Background())
	if err != nil {
		b.logger.Error("failed to count quotes", "error", err)
		b.respondError(s, i, "Could not count the quotes.")
		return
	}
	b.respondText(s, i, fmt.Sprintf("There are **%d** quotes stored.", count))
}

func (b *Bot) handleQuoteList(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	page := 1
	if o := option(options, "page"); o != nil {
		page = int(o.IntValue())
	}
	if page < 1 {
		page = 1
	}

	names, err := b.quoteStore.Names(context.Background(), (page-1)*listPageSize, listPageSize)
	if err != nil {
		b.logger.Error("failed to list quotes", "error", err)
		b.respondError(s, i, "Could not list the quotes.")
		return
	}
	if len(names) == 0 {
		b.respondError(s, i, "Nothing on that page.")
		return
	}

	b.respondEmbeds(s, i, []*discordgo.MessageEmbed{{
		Title:       fmt.Sprintf("Quotes — page %d", page),
		Description: strings.Join(names, "\n"),
	}}, nil)
}

// showQuote replays a quote embed, optionally prefixed with a notice line
func (b *Bot) showQuote(s *discordgo.Session, i *discordgo.InteractionCreate, quote *quotes.Quote, notice string) {
	rendered, err := b.renderer.Render(quote, false)
	if err != nil {
		b.logger.Error("failed to render quote", "name", quote.Name, "error", err)
		b.respondError(s, i, "Could not render the quote.")
		return
	}

	embeds := append([]*discordgo.MessageEmbed{rendered.Embed}, rendered.Embeds...)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: notice,
			Embeds:  embeds,
		},
	})
	if err != nil {
		b.logger.Error("failed to respond to interaction", "error", err)
	}
}
