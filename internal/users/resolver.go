package users

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// MemberSource is the slice of the Discord session the resolver needs
type MemberSource interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error)
}

// Resolver turns user IDs into display names, preferring the guild nickname.
// Lookups go through the injected cache; "" means the user is unresolvable.
type Resolver struct {
	cache   *Cache
	session MemberSource
	guildID string
	logger  *slog.Logger
}

// NewResolver creates a display-name resolver backed by the given cache
func NewResolver(cache *Cache, session MemberSource, guildID string, logger *slog.Logger) *Resolver {
	return &Resolver{
		cache:   cache,
		session: session,
		guildID: guildID,
		logger:  logger,
	}
}

// DisplayName resolves a user ID to a display name, or "" when the user
// cannot be resolved. Results are cached.
func (r *Resolver) DisplayName(userID string) string {
	if userID == "" {
		return ""
	}
	if name, ok := r.cache.Get(userID); ok {
		return name
	}

	name := r.lookup(userID)
	if name != "" {
		r.cache.Put(userID, name)
	}
	return name
}

func (r *Resolver) lookup(userID string) string {
	member, err := r.session.GuildMember(r.guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			return userName(member.User)
		}
	}

	// Not a member anymore; fall back to the global user record.
	user, err := r.session.User(userID)
	if err != nil || user == nil {
		r.logger.Debug("could not resolve user", "user_id", userID, "error", err)
		return ""
	}
	return userName(user)
}

func userName(user *discordgo.User) string {
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
