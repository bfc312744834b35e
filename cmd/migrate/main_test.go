package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"futuristic-todo-api/internal/config"
	"futuristic-todo-api/internal/database"
	"futuristic-todo-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func useSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todos.db")
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("DB_PATH", path)
	return path
}

func TestMigrateCommands(t *testing.T) {
	useSQLite(t)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 0")

	out, err = run(t, "up")
	require.NoError(t, err)
	assert.Contains(t, out, "Migrations applied successfully")

	out, err = run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 1")

	out, err = run(t, "down")
	require.NoError(t, err)
	assert.Contains(t, out, "rolled back")

	out, err = run(t, "steps", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "ran 1 migration steps")

	out, err = run(t, "force", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Forced migration version to 1")
}

func TestMigrateArgumentErrors(t *testing.T) {
	useSQLite(t)

	_, err := run(t, "steps", "many")
	assert.ErrorContains(t, err, "invalid number of steps")

	_, err = run(t, "force")
	assert.Error(t, err)

	_, err = run(t, "sideways")
	assert.Error(t, err)
}

func TestCompact(t *testing.T) {
	path := useSQLite(t)

	_, err := run(t, "up")
	require.NoError(t, err)

	db, err := database.Connect(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: path, LogLevel: "silent"})
	require.NoError(t, err)
	for title, order := range map[string]int{"a": 4, "b": 9, "c": 9} {
		require.NoError(t, db.Create(&models.Todo{Title: title, Order: order}).Error)
	}
	require.NoError(t, database.Close(db))

	out, err := run(t, "compact")
	require.NoError(t, err)
	assert.Contains(t, out, "3 todos renumbered")

	db, err = database.Connect(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: path, LogLevel: "silent"})
	require.NoError(t, err)
	defer database.Close(db)

	var todos []models.Todo
	require.NoError(t, db.Order("position ASC").Find(&todos).Error)
	var orders []int
	for _, todo := range todos {
		orders = append(orders, todo.Order)
	}
	assert.Equal(t, []int{1, 2, 3}, orders)

	out, err = run(t, "compact")
	require.NoError(t, err)
	assert.Contains(t, out, "0 todos renumbered")
}
