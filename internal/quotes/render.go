package quotes

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Renderer formats stored quotes as Discord embeds.
type Renderer struct {
	resolve func(userID string) string
}

// NewRenderer creates a renderer. resolve maps a user ID to a display name
// and returns "" when the user is unknown.
func NewRenderer(resolve func(userID string) string) *Renderer {
	return &Renderer{resolve: resolve}
}

// RenderResult contains the rendered embed and any replayed message blobs
type RenderResult struct {
	Embed  *discordgo.MessageEmbed
	Embeds []*discordgo.MessageEmbed
}

// Render builds the embed shown when a quote is replayed. When hideAuthor is
// set the author line is omitted (used by the guessing game prompt).
func (r *Renderer) Render(quote *Quote, hideAuthor bool) (*RenderResult, error) {
	if quote == nil {
		return nil, fmt.Errorf("cannot render nil quote")
	}

	embed := &discordgo.MessageEmbed{
		Title:       quote.Name,
		Description: quote.Content,
		Timestamp:   quote.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("#%d", quote.ID),
		},
	}

	if !hideAuthor {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name: r.displayName(quote.AuthorID),
		}
	}

	if quote.ReplyContent != "" || quote.ReplyAuthorID != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Replying to %s", r.displayName(quote.ReplyAuthorID)),
			Value: truncate(quote.ReplyContent, 1024),
		})
	}

	if len(quote.Attachments) > 0 {
		var attachments []*discordgo.MessageAttachment
		if err := json.Unmarshal(quote.Attachments, &attachments); err != nil {
			return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
		}
		if len(attachments) > 0 {
			// First image attachment becomes the embed image, the rest
			// are linked.
			var links []string
			for _, a := range attachments {
				if embed.Image == nil && strings.HasPrefix(a.ContentType, "image/") {
					embed.Image = &discordgo.MessageEmbedImage{URL: a.URL}
					continue
				}
				links = append(links, fmt.Sprintf("[%s](%s)", a.Filename, a.URL))
			}
			if len(links) > 0 {
				embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
					Name:  "Attachments",
					Value: truncate(strings.Join(links, "\n"), 1024),
				})
			}
		}
	}

	result := &RenderResult{Embed: embed}

	if len(quote.Embeds) > 0 {
		var embeds []*discordgo.MessageEmbed
		if err := json.Unmarshal(quote.Embeds, &embeds); err != nil {
			return nil, fmt.Errorf("failed to unmarshal embeds: %w", err)
		}
		result.Embeds = embeds
	}

	return result, nil
}

func (r *Renderer) displayName(userID string) string {
	if userID == "" {
		return "Unknown"
	}
	if r.resolve != nil {
		if name := r.resolve(userID); name != "" {
			return name
		}
	}
	return fmt.Sprintf("<@%s>", userID)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
