package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandDefinitions_UniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range commandDefinitions {
		assert.False(t, seen[def.Name], "duplicate command %q", def.Name)
		seen[def.Name] = true
	}

	assert.True(t, seen[CommandAddQuote])
	assert.True(t, seen[CommandQuote])
	assert.True(t, seen[CommandStickyRole])
	assert.True(t, seen[CommandIndex])
}

func TestCommandDefinitions_AddQuoteIsMessageCommand(t *testing.T) {
	for _, def := range commandDefinitions {
		if def.Name == CommandAddQuote {
			assert.Equal(t, discordgo.MessageApplicationCommand, def.Type)
			assert.Empty(t, def.Options)
			return
		}
	}
	t.Fatalf("command %q not defined", CommandAddQuote)
}

func TestCommandDefinitions_StickyRoleRequiresManageRoles(t *testing.T) {
	for _, def := range commandDefinitions {
		if def.Name == CommandStickyRole {
			require.NotNil(t, def.DefaultMemberPermissions)
			assert.Equal(t, int64(discordgo.PermissionManageRoles), *def.DefaultMemberPermissions)
			return
		}
	}
	t.Fatalf("command %q not defined", CommandStickyRole)
}

func TestInteractionUserID(t *testing.T) {
	tests := []struct {
		name        string
		interaction *discordgo.InteractionCreate
		want        string
	}{
		{
			name: "guild member",
			interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				Member: &discordgo.Member{User: &discordgo.User{ID: "111"}},
			}},
			want: "111",
		},
		{
			name: "direct message",
			interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				User: &discordgo.User{ID: "222"},
			}},
			want: "222",
		},
		{
			name:        "no user",
			interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}},
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, interactionUserID(tt.interaction))
		})
	}
}

func TestSubcommand(t *testing.T) {
	inner := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "name", Type: discordgo.ApplicationCommandOptionString},
	}
	data := discordgo.ApplicationCommandInteractionData{
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{Name: "get", Type: discordgo.ApplicationCommandOptionSubCommand, Options: inner},
		},
	}

	sub, options := subcommand(data)
	assert.Equal(t, "get", sub)
	assert.Equal(t, inner, options)

	sub, options = subcommand(discordgo.ApplicationCommandInteractionData{})
	assert.Empty(t, sub)
	assert.Nil(t, options)
}

func TestOption(t *testing.T) {
	options := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "name"},
		{Name: "page"},
	}

	require.NotNil(t, option(options, "page"))
	assert.Equal(t, "page", option(options, "page").Name)
	assert.Nil(t, option(options, "missing"))
}
