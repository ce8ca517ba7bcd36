package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	// CommandAddQuote is the message context-menu entry
	CommandAddQuote = "Add quote"

	CommandQuote      = "quote"
	CommandStickyRole = "stickyrole"
	CommandIndex      = "index"
)

// guessPrefix namespaces the custom IDs of guess buttons; the rest of the ID
// is the guessed author's user ID.
const guessPrefix = "guess:"

var manageRolesPermission = int64(discordgo.PermissionManageRoles)

var commandDefinitions = []*discordgo.ApplicationCommand{
	{
		Name: CommandAddQuote,
		Type: discordgo.MessageApplicationCommand,
	},
	{
		Name:        CommandQuote,
		Description: "Store and replay memorable messages",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "get",
				Description: "Show a quote by name",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "The quote's name",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "random",
				Description: "Show a random quote",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "author",
				Description: "Show a random quote by a specific author",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "The quoted author",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "rename",
				Description: "Rename a quote",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "The quote's current name",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "new_name",
						Description: "The new name",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "update",
				Description: "Refresh a quote from its original message",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "The quote's name",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "delete",
				Description: "Delete a quote",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "The quote's name",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "count",
				Description: "Show how many quotes are stored",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List stored quote names",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "page",
						Description: "Page to show (starts at 1)",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "guess",
				Description: "Guess who said a random quote",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "leaderboard",
				Description: "Show the best guessing streaks",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "stats",
				Description: "Show guessing stats",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Whose stats to show (defaults to you)",
					},
				},
			},
		},
	},
	{
		Name:                     CommandStickyRole,
		Description:              "Manage roles that are restored when a member rejoins",
		DefaultMemberPermissions: &manageRolesPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Make a role sticky for a user",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "The member",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "The role to restore on rejoin",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Stop restoring a role for a user",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "The member",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "The role",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List sticky roles for a user",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "The member",
						Required:    true,
					},
				},
			},
		},
	},
	{
		Name:        CommandIndex,
		Description: "Query the Geode mod index",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "search",
				Description: "Search the mod index",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "query",
						Description: "Search terms",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "mod",
				Description: "Show a mod by its index ID",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "id",
						Description: "The mod ID, e.g. geode.devtools",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "pending",
				Description: "Show how many mods await verification",
			},
		},
	},
}

// RegisterCommands registers all application commands for the guild
func RegisterCommands(s *discordgo.Session, guildID string) error {
	if guildID == "" {
		return fmt.Errorf("bot: guild ID is required to register commands")
	}

	var failures []string
	for _, definition := range commandDefinitions {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, definition); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", definition.Name, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("bot: command registration errors: %s", strings.Join(failures, "; "))
	}
	return nil
}
