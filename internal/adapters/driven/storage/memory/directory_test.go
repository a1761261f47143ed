package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tradematch/internal/core/domain"
)

func TestDirectory_Owners(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory()

	_, err := dir.GetOwner(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, dir.SaveOwner(ctx, domain.Owner{ID: "s1", Name: "Ann", AverageRating: 4.5}))
	owner, err := dir.GetOwner(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", owner.Name)

	require.NoError(t, dir.DeleteOwner(ctx, "s1"))
	_, err = dir.GetOwner(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDirectory_Roles(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory()

	created, err := dir.EnsureRole(ctx, domain.NewRole("Plumber"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = dir.EnsureRole(ctx, domain.NewRole("plumber"))
	require.NoError(t, err)
	assert.False(t, created)

	_, _ = dir.EnsureRole(ctx, domain.NewRole("barber"))
	roles, err := dir.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "barber", roles[0].Name)
	assert.Equal(t, "plumber", roles[1].Name)

	role, err := dir.GetRole(ctx, "PLUMBER")
	require.NoError(t, err)
	assert.Equal(t, "You are a plumber. You handle tasks related to plumber.", role.Description)

	_, err = dir.EnsureRole(ctx, domain.Role{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDirectory_LinkOwnerRole(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory()

	assert.ErrorIs(t, dir.LinkOwnerRole(ctx, "s1", "plumber"), domain.ErrNotFound)

	_, _ = dir.EnsureRole(ctx, domain.NewRole("plumber"))
	require.NoError(t, dir.LinkOwnerRole(ctx, "s1", "plumber"))
	require.NoError(t, dir.LinkOwnerRole(ctx, "s1", "plumber"))

	roles, err := dir.OwnerRoles(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"plumber"}, roles)
}

func TestDirectory_IsAvailable(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory()
	require.NoError(t, dir.SetAvailability(ctx, "s1", []domain.TimeWindow{
		{Day: time.Monday, Start: 9 * 60, End: 17 * 60},
	}))

	ok, err := dir.IsAvailable(ctx, "s1", domain.TimeWindow{Day: time.Monday, Start: 10 * 60, End: 12 * 60})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = dir.IsAvailable(ctx, "s1", domain.TimeWindow{Day: time.Monday, Start: 16 * 60, End: 18 * 60})
	assert.False(t, ok)

	ok, _ = dir.IsAvailable(ctx, "s1", domain.TimeWindow{Day: time.Tuesday, Start: 10 * 60, End: 11 * 60})
	assert.False(t, ok)

	ok, _ = dir.IsAvailable(ctx, "unknown", domain.TimeWindow{Day: time.Monday, Start: 10 * 60, End: 11 * 60})
	assert.False(t, ok)
}
