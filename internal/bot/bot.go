package bot

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/geode-sdk/GeodeDiscord/internal/config"
	"github.com/geode-sdk/GeodeDiscord/internal/game"
	"github.com/geode-sdk/GeodeDiscord/internal/index"
	"github.com/geode-sdk/GeodeDiscord/internal/quotes"
	"github.com/geode-sdk/GeodeDiscord/internal/roles"
	"github.com/geode-sdk/GeodeDiscord/internal/storage"
	"github.com/geode-sdk/GeodeDiscord/internal/users"
)

// Bot wires the Discord session to the stores and the game
type Bot struct {
	session *discordgo.Session
	logger  *slog.Logger
	guildID string

	quoteStore *quotes.Store
	gameStore  *game.Store
	roleStore  *roles.Store
	manager    *game.Manager
	applier    *roles.Applier
	resolver   *users.Resolver
	renderer   *quotes.Renderer
	index      *index.Client
}

// New creates the bot and registers its gateway handlers. The session is not
// opened yet; call Start.
func New(cfg *config.Config, db *storage.DB, cache *users.Cache, logger *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	b := &Bot{
		session:    session,
		logger:     logger,
		guildID:    cfg.Discord.GuildID,
		quoteStore: quotes.NewStore(db.DB),
		gameStore:  game.NewStore(db.DB, logger),
		roleStore:  roles.NewStore(db.DB),
		index:      index.NewClient(cfg.Index.BaseURL, cfg.Index.Timeout),
	}

	b.resolver = users.NewResolver(cache, session, cfg.Discord.GuildID, logger)
	b.renderer = quotes.NewRenderer(b.resolver.DisplayName)
	b.manager = game.NewManager(b.quoteStore, b.gameStore, game.ManagerConfig{
		Options: cfg.Game.Options,
		Timeout: cfg.Game.RoundTimeout,
	}, logger, b.handleRoundTimeout)
	b.applier = roles.NewApplier(b.roleStore, session, cfg.Discord.GuildID, logger)

	session.AddHandler(b.handleReady)
	session.AddHandler(b.handleInteraction)
	session.AddHandler(b.applier.HandleMemberAdd)

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages

	return b, nil
}

// Start opens the gateway connection and registers the slash commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	if err := RegisterCommands(b.session, b.guildID); err != nil {
		b.session.Close()
		return err
	}
	return nil
}

// Stop closes the gateway connection
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("connected to Discord",
		"username", r.User.Username,
		"guilds", len(r.Guilds),
	)
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID != b.guildID {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		b.logger.Info("executing command",
			"command", data.Name,
			"user_id", interactionUserID(i),
		)

		switch data.Name {
		case CommandAddQuote:
			b.handleAddQuote(s, i, data)
		case CommandQuote:
			b.handleQuoteCommand(s, i, data)
		case CommandStickyRole:
			b.handleStickyRoleCommand(s, i, data)
		case CommandIndex:
			b.handleIndexCommand(s, i, data)
		default:
			b.logger.Debug("unknown command", "command", data.Name)
		}

	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		if strings.HasPrefix(data.CustomID, guessPrefix) {
			b.handleGuessButton(s, i, strings.TrimPrefix(data.CustomID, guessPrefix))
		}
	}
}

// interactionUserID returns the invoking user's ID for guild and DM shapes
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// subcommand unpacks a one-level subcommand and its options
func subcommand(data discordgo.ApplicationCommandInteractionData) (string, []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(data.Options) == 0 {
		return "", nil
	}
	sub := data.Options[0]
	return sub.Name, sub.Options
}

// option finds a named option, or nil
func option(options []*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, o := range options {
		if o.Name == name {
			return o
		}
	}
	return nil
}
