package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"blog_system/internal/db"
	"blog_system/internal/domain"
	"blog_system/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func tempDB(t *testing.T) opener {
	t.Helper()
	conn, err := db.Open(sqlite.Open(db.SQLiteDSN(filepath.Join(t.TempDir(), "blog.db"))), false)
	require.NoError(t, err)
	return func() (*gorm.DB, error) { return conn, nil }
}

func run(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(open)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateThenPromote(t *testing.T) {
	open := tempDB(t)

	_, err := run(t, open, "migrate")
	require.NoError(t, err)

	conn, err := open()
	require.NoError(t, err)
	users := repository.NewUserRepository(conn)
	require.NoError(t, users.Create(context.Background(), &domain.User{Username: "alice", Password: "hash"}))

	out, err := run(t, open, "promote", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "alice is now admin")

	u, err := users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	// Idempotent
	_, err = run(t, open, "promote", "alice")
	require.NoError(t, err)

	_, err = run(t, open, "demote", "alice")
	require.NoError(t, err)
	u, err = users.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, u.IsAdmin())
}

func TestPromote_UnknownUser(t *testing.T) {
	open := tempDB(t)
	_, err := run(t, open, "migrate")
	require.NoError(t, err)

	_, err = run(t, open, "promote", "nobody")
	assert.ErrorContains(t, err, `no user named "nobody"`)
}

func TestRoleCommands_RequireUsername(t *testing.T) {
	_, err := run(t, tempDB(t), "promote")
	assert.Error(t, err)
}
