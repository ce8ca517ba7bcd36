package roles

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// RoleAdder is the slice of the Discord session the applier needs
type RoleAdder interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// Applier restores sticky roles when a member rejoins the guild
type Applier struct {
	store   *Store
	session RoleAdder
	guildID string
	logger  *slog.Logger
}

// NewApplier creates a new sticky role applier
func NewApplier(store *Store, session RoleAdder, guildID string, logger *slog.Logger) *Applier {
	return &Applier{
		store:   store,
		session: session,
		guildID: guildID,
		logger:  logger,
	}
}

// HandleMemberAdd is a discordgo event handler for GuildMemberAdd
func (a *Applier) HandleMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.GuildID != a.guildID {
		return
	}
	a.Apply(context.Background(), m.User.ID)
}

// Apply reapplies all recorded sticky roles for the user. Individual role
// failures are logged and skipped so one deleted role cannot block the rest.
func (a *Applier) Apply(ctx context.Context, userID string) {
	roleIDs, err := a.store.ListForUser(ctx, userID)
	if err != nil {
		a.logger.Error("failed to load sticky roles", "user_id", userID, "error", err)
		return
	}
	if len(roleIDs) == 0 {
		return
	}

	applied := 0
	for _, roleID := range roleIDs {
		if err := a.session.GuildMemberRoleAdd(a.guildID, userID, roleID); err != nil {
			a.logger.Warn("failed to reapply sticky role",
				"user_id", userID,
				"role_id", roleID,
				"error", err,
			)
			continue
		}
		applied++
	}

	a.logger.Info("reapplied sticky roles", "user_id", userID, "applied", applied, "recorded", len(roleIDs))
}
