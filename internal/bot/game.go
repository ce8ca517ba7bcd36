package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/geode-sdk/GeodeDiscord/internal/game"
)

func (b *Bot) handleGuessStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)

	round, err := b.manager.Start(context.Background(), userID)
	switch {
	case errors.Is(err, game.ErrRoundActive):
		b.respondError(s, i, "Finish your current round first!")
		return
	case errors.Is(err, game.ErrNoQuotes):
		b.respondError(s, i, "No quotes stored yet. Add some with the **Add quote** message command!")
		return
	case errors.Is(err, game.ErrNoOpponents):
		b.respondError(s, i, "Not enough quoted authors to play yet.")
		return
	case err != nil:
		b.logger.Error("failed to start round", "user_id", userID, "error", err)
		b.respondError(s, i, "Could not start a round.")
		return
	}

	rendered, err := b.renderer.Render(&round.Quote, true)
	if err != nil {
		b.manager.Cancel(round)
		b.logger.Error("failed to render quote", "name", round.Quote.Name, "error", err)
		b.respondError(s, i, "Could not render the quote.")
		return
	}

	buttons := make([]discordgo.MessageComponent, 0, len(round.Options))
	for _, candidate := range round.Options {
		buttons = append(buttons, discordgo.Button{
			Label:    b.optionLabel(candidate.UserID),
			Style:    discordgo.SecondaryButton,
			CustomID: guessPrefix + candidate.UserID,
		})
	}

	// an action row holds at most 5 buttons
	var rows []discordgo.MessageComponent
	for len(buttons) > 0 {
		n := len(buttons)
		if n > 5 {
			n = 5
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons[:n]})
		buttons = buttons[n:]
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    fmt.Sprintf("<@%s>, who said this?", userID),
			Embeds:     []*discordgo.MessageEmbed{rendered.Embed},
			Components: rows,
		},
	})
	if err != nil {
		b.manager.Cancel(round)
		b.logger.Error("failed to post round prompt", "user_id", userID, "error", err)
		return
	}

	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		b.manager.Cancel(round)
		b.logger.Error("failed to fetch round prompt message", "user_id", userID, "error", err)
		return
	}
	b.manager.Track(round, msg.ChannelID, msg.ID)
}

func (b *Bot) handleGuessButton(s *discordgo.Session, i *discordgo.InteractionCreate, guessedID string) {
	userID := interactionUserID(i)

	result, err := b.manager.Resolve(context.Background(), i.Message.ID, userID, guessedID)
	switch {
	case errors.Is(err, game.ErrUnknownRound):
		b.respondError(s, i, "This round is already over.")
		return
	case errors.Is(err, game.ErrNotYourRound):
		b.respondError(s, i, "This round belongs to another player.")
		return
	case err != nil:
		b.logger.Error("failed to resolve round", "user_id", userID, "error", err)
		b.respondError(s, i, "Could not resolve the round.")
		return
	}

	embeds, content := b.roundResultMessage(result)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     embeds,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		b.logger.Error("failed to update round prompt", "error", err)
	}
}

// handleRoundTimeout edits the prompt when a round expires without a guess
func (b *Bot) handleRoundTimeout(result *game.Result) {
	embeds, content := b.roundResultMessage(result)
	components := []discordgo.MessageComponent{}
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    result.Round.ChannelID,
		ID:         result.Round.ResponseID,
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		b.logger.Error("failed to edit expired round prompt",
			"response_id", result.Round.ResponseID,
			"error", err,
		)
	}
}

// roundResultMessage builds the reveal shown when a round is settled
func (b *Bot) roundResultMessage(result *game.Result) ([]*discordgo.MessageEmbed, string) {
	quote := result.Round.Quote

	var verdict string
	switch {
	case result.TimedOut:
		verdict = fmt.Sprintf("Time's up! It was **%s**.", b.optionLabel(quote.AuthorID))
	case result.Correct:
		verdict = fmt.Sprintf("Correct! It was **%s**.", b.optionLabel(quote.AuthorID))
	default:
		verdict = fmt.Sprintf("Wrong! It was **%s**.", b.optionLabel(quote.AuthorID))
	}

	stats := result.Stats
	lines := []string{
		verdict,
		fmt.Sprintf("Streak: **%d** (best **%d**, %d/%d correct)",
			stats.Streak, stats.MaxStreak, stats.Correct, stats.Total),
	}
	if !result.Persisted {
		lines = append(lines, "⚠ This result could not be saved and will not count towards your stats.")
	}

	embeds := []*discordgo.MessageEmbed{}
	if rendered, err := b.renderer.Render(&quote, false); err == nil {
		embeds = append(embeds, rendered.Embed)
	} else {
		b.logger.Error("failed to render quote", "name", quote.Name, "error", err)
	}

	content := fmt.Sprintf("<@%s> %s", result.Round.UserID, strings.Join(lines, "\n"))
	return embeds, content
}

func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	board, err := b.gameStore.Leaderboard(context.Background(), 10)
	if err != nil {
		b.logger.Error("failed to load leaderboard", "error", err)
		b.respondError(s, i, "Could not load the leaderboard.")
		return
	}
	if len(board) == 0 {
		b.respondError(s, i, "Nobody has played yet.")
		return
	}

	var sb strings.Builder
	for rank, entry := range board {
		fmt.Fprintf(&sb, "%d. **%s** — best streak %d (%d/%d correct)\n",
			rank+1, b.optionLabel(entry.UserID), entry.MaxStreak, entry.Correct, entry.Total)
	}

	b.respondEmbeds(s, i, []*discordgo.MessageEmbed{{
		Title:       "Guessing leaderboard",
		Description: sb.String(),
	}}, nil)
}

func (b *Bot) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	userID := interactionUserID(i)
	if o := option(options, "user"); o != nil {
		userID = o.UserValue(nil).ID
	}

	stats, err := b.gameStore.Stats(context.Background(), userID)
	if err != nil {
		b.logger.Error("failed to load stats", "user_id", userID, "error", err)
		b.respondError(s, i, "Could not load the stats.")
		return
	}
	if stats.Total == 0 {
		b.respondError(s, i, fmt.Sprintf("<@%s> has not played yet.", userID))
		return
	}

	accuracy := float64(stats.Correct) / float64(stats.Total) * 100
	b.respondEmbeds(s, i, []*discordgo.MessageEmbed{{
		Title: fmt.Sprintf("Guessing stats for %s", b.optionLabel(userID)),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Current streak", Value: fmt.Sprintf("%d", stats.Streak), Inline: true},
			{Name: "Best streak", Value: fmt.Sprintf("%d", stats.MaxStreak), Inline: true},
			{Name: "Correct", Value: fmt.Sprintf("%d/%d (%.0f%%)", stats.Correct, stats.Total, accuracy), Inline: true},
		},
	}}, nil)
}

// optionLabel names a user for buttons and reveals; unresolvable users keep
// a stable placeholder so the round can still be played.
func (b *Bot) optionLabel(userID string) string {
	if name := b.resolver.DisplayName(userID); name != "" {
		return name
	}
	return fmt.Sprintf("Unknown user (%s)", userID)
}
