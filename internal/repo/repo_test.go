package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-gorm-messenger/internal/domain"
	"go-gin-gorm-messenger/internal/repo"
	"go-gin-gorm-messenger/internal/testutil"
)

func newUser(name string) *domain.User {
	return &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
}

func TestUserRepo_CreateWithRoles(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedRoles(t, db)
	ctx := context.Background()
	users, roles := repo.NewUserRepo(db), repo.NewRoleRepo(db)

	u := newUser("alice")
	require.NoError(t, users.CreateWithRoles(ctx, u, domain.RoleUser))
	require.NotZero(t, u.ID)

	rs, err := roles.RolesOf(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, domain.RoleUser, rs[0].Name)

	got, err := users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserRepo_DuplicateTranslated(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedRoles(t, db)
	ctx := context.Background()
	users := repo.NewUserRepo(db)

	require.NoError(t, users.CreateWithRoles(ctx, newUser("bob"), domain.RoleUser))

	dup := newUser("bob2")
	dup.Email = "bob@example.com"
	err := users.CreateWithRoles(ctx, dup, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Zero(t, dup.ID)

	var n int64
	require.NoError(t, db.Model(&domain.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestUserRepo_MissingRoleRollsBack(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	users := repo.NewUserRepo(db)

	err := users.CreateWithRoles(ctx, newUser("carol"), domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrRoleMissing)

	_, err = users.FindByEmail(ctx, "carol@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_NotFound(t *testing.T) {
	db := testutil.OpenDB(t)
	users := repo.NewUserRepo(db)

	_, err := users.FindByID(context.Background(), 42)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.ErrorIs(t, users.Delete(context.Background(), 42), domain.ErrNotFound)
}

func TestUserRepo_DeleteRemovesMessagesAndRoles(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedRoles(t, db)
	ctx := context.Background()
	users, roles, msgs := repo.NewUserRepo(db), repo.NewRoleRepo(db), repo.NewMessageRepo(db)

	u := newUser("dave")
	require.NoError(t, users.CreateWithRoles(ctx, u, domain.RoleUser, domain.RoleAdmin))
	require.NoError(t, msgs.Create(ctx, &domain.Message{UserID: u.ID, Content: "hello"}))

	require.NoError(t, users.Delete(ctx, u.ID))

	list, err := msgs.ListWithAuthor(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	rs, err := roles.RolesOf(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestUserRepo_ListAndUpdates(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedRoles(t, db)
	ctx := context.Background()
	users := repo.NewUserRepo(db)

	for _, n := range []string{"erin", "frank", "grace"} {
		require.NoError(t, users.CreateWithRoles(ctx, newUser(n), domain.RoleUser))
	}

	all, total, err := users.List(ctx, 0, 2, "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, all, 2)

	filtered, total, err := users.List(ctx, 0, 10, "fra")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "frank", filtered[0].Username)

	id := filtered[0].ID
	require.NoError(t, users.UpdateEmail(ctx, id, "frank@new.io"))
	require.NoError(t, users.UpdatePassword(ctx, id, "newhash"))
	got, err := users.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "frank@new.io", got.Email)
	assert.Equal(t, "newhash", got.PasswordHash)

	assert.ErrorIs(t, users.UpdateEmail(ctx, id, "erin@example.com"), domain.ErrDuplicate)
}

func TestRoleRepo_EnsureAndAssignIdempotent(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	roles, users := repo.NewRoleRepo(db), repo.NewUserRepo(db)

	a1, err := roles.Ensure(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	a2, err := roles.Ensure(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, a1.ID, a2.ID)
	_, err = roles.Ensure(ctx, domain.RoleUser)
	require.NoError(t, err)

	n, err := roles.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	u := newUser("heidi")
	require.NoError(t, users.CreateWithRoles(ctx, u, domain.RoleUser))
	require.NoError(t, roles.Assign(ctx, u.ID, domain.RoleAdmin, domain.RoleUser))
	require.NoError(t, roles.Assign(ctx, u.ID, domain.RoleAdmin))

	rs, err := roles.RolesOf(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, domain.RoleAdmin, rs[0].Name)
	assert.Equal(t, domain.RoleUser, rs[1].Name)

	assert.ErrorIs(t, roles.Assign(ctx, u.ID, "superuser"), domain.ErrRoleMissing)
}

func TestMessageRepo_CRUDAndOrder(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedRoles(t, db)
	ctx := context.Background()
	users, msgs := repo.NewUserRepo(db), repo.NewMessageRepo(db)

	u := newUser("ivan")
	require.NoError(t, users.CreateWithRoles(ctx, u, domain.RoleUser))

	first := &domain.Message{UserID: u.ID, Content: "first"}
	second := &domain.Message{UserID: u.ID, Content: "second"}
	require.NoError(t, msgs.Create(ctx, first))
	require.NoError(t, msgs.Create(ctx, second))

	list, err := msgs.ListWithAuthor(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Content)
	assert.Equal(t, "second", list[1].Content)
	assert.Equal(t, "ivan", list[0].Username)

	require.NoError(t, msgs.UpdateContent(ctx, first.ID, "edited"))
	got, err := msgs.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)

	require.NoError(t, msgs.Delete(ctx, first.ID))
	assert.ErrorIs(t, msgs.Delete(ctx, first.ID), domain.ErrNotFound)
	_, err = msgs.FindByID(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
