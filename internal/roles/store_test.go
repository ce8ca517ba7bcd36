package roles_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/geode-sdk/GeodeDiscord/internal/roles"
	"github.com/geode-sdk/GeodeDiscord/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStore_AddAndList(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := roles.NewStore(db.DB)

	require.NoError(t, store.Add(context.Background(), "user-1", "role-1"))
	require.NoError(t, store.Add(context.Background(), "user-1", "role-2"))
	require.NoError(t, store.Add(context.Background(), "user-2", "role-1"))

	got, err := store.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"role-1", "role-2"}, got)

	all, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStore_AddTwiceIsNoOp(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := roles.NewStore(db.DB)

	require.NoError(t, store.Add(context.Background(), "user-1", "role-1"))
	require.NoError(t, store.Add(context.Background(), "user-1", "role-1"))

	got, err := store.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"role-1"}, got)
}

func TestStore_Remove(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := roles.NewStore(db.DB)

	require.NoError(t, store.Add(context.Background(), "user-1", "role-1"))
	require.NoError(t, store.Remove(context.Background(), "user-1", "role-1"))

	got, err := store.ListForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)

	err = store.Remove(context.Background(), "user-1", "role-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

type fakeRoleAdder struct {
	added  [][2]string // (userID, roleID)
	failOn string      // roleID that errors
}

func (f *fakeRoleAdder) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	if roleID == f.failOn {
		return errors.New("role gone")
	}
	f.added = append(f.added, [2]string{userID, roleID})
	return nil
}

func TestApplier_ReappliesOnRejoin(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := roles.NewStore(db.DB)
	adder := &fakeRoleAdder{}
	applier := roles.NewApplier(store, adder, "guild-1", slog.Default())

	require.NoError(t, store.Add(context.Background(), "user-1", "role-1"))
	require.NoError(t, store.Add(context.Background(), "user-1", "role-2"))

	applier.HandleMemberAdd(nil, &discordgo.GuildMemberAdd{
		Member: &discordgo.Member{
			GuildID: "guild-1",
			User:    &discordgo.User{ID: "user-1"},
		},
	})

	assert.ElementsMatch(t, [][2]string{
		{"user-1", "role-1"},
		{"user-1", "role-2"},
	}, adder.added)
}

func TestApplier_IgnoresOtherGuilds(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := roles.NewStore(db.DB)
	adder := &fakeRoleAdder{}
	applier := roles.NewApplier(store, adder, "guild-1", slog.Default())

	require.NoError(t, store.Add(context.Background(), "user-1", "role-1"))

	applier.HandleMemberAdd(nil, &discordgo.GuildMemberAdd{
		Member: &discordgo.Member{
			GuildID: "guild-2",
			User:    &discordgo.User{ID: "user-1"},
		},
	})

	assert.Empty(t, adder.added)
}

func TestApplier_SkipsFailingRole(t *testing.T) {
	db := testutils.NewTestDB(t)
	store := roles.NewStore(db.DB)
	adder := &fakeRoleAdder{failOn: "role-1"}
	applier := roles.NewApplier(store, adder, "guild-1", slog.Default())

	require.NoError(t, store.Add(context.Background(), "user-1", "role-1"))
	require.NoError(t, store.Add(context.Background(), "user-1", "role-2"))

	applier.Apply(context.Background(), "user-1")

	assert.Equal(t, [][2]string{{"user-1", "role-2"}}, adder.added)
}
