package app

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labcatalog/catalog-sync/database"
)

type fakeMigrator struct {
	upErr    error
	downErr  error
	stepsErr error
	steps    []int
	up       int
	down     int
	closed   bool
	version  uint
}

func (f *fakeMigrator) Up() error   { f.up++; return f.upErr }
func (f *fakeMigrator) Down() error { f.down++; return f.downErr }
func (f *fakeMigrator) Steps(n int) error {
	f.steps = append(f.steps, n)
	return f.stepsErr
}
func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, false, nil }
func (f *fakeMigrator) Close() (error, error) {
	f.closed = true
	return nil, nil
}

func TestExecuteMigrateUp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		steps     int
		migrator  *fakeMigrator
		wantErr   bool
		wantUp    int
		wantSteps []int
	}{
		{name: "all pending", migrator: &fakeMigrator{}, wantUp: 1},
		{name: "no change is not an error", migrator: &fakeMigrator{upErr: migrate.ErrNoChange}, wantUp: 1},
		{name: "failure", migrator: &fakeMigrator{upErr: errors.New("boom")}, wantUp: 1, wantErr: true},
		{name: "bounded steps", steps: 2, migrator: &fakeMigrator{}, wantSteps: []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := executeMigrateUp(tt.migrator, tt.steps)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantUp, tt.migrator.up)
			assert.Equal(t, tt.wantSteps, tt.migrator.steps)
		})
	}
}

func TestExecuteMigrateDown(t *testing.T) {
	t.Parallel()

	all := &fakeMigrator{}
	require.NoError(t, executeMigrateDown(all, 0))
	assert.Equal(t, 1, all.down)

	some := &fakeMigrator{}
	require.NoError(t, executeMigrateDown(some, 3))
	assert.Equal(t, []int{-3}, some.steps)

	oldest := &fakeMigrator{stepsErr: migrate.ErrNoChange}
	require.NoError(t, executeMigrateDown(oldest, 1))

	failing := &fakeMigrator{downErr: errors.New("locked")}
	err := executeMigrateDown(failing, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")
}

func TestDownPrompt(t *testing.T) {
	t.Parallel()

	assert.Contains(t, downPrompt("u@db:5432/catalog", 0), "ALL migrations")
	assert.Contains(t, downPrompt("u@db:5432/catalog", 2), "revert 2 migration(s)")
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{input: "yes\n", want: true},
		{input: "Y\n", want: true},
		{input: "  yes  \n", want: true},
		{input: "yes", want: true},
		{input: "no\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			out := &bytes.Buffer{}
			assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), out, "Continue?"))
			assert.Equal(t, "Continue? (yes/no): ", out.String())
		})
	}
}

// The tests below swap package-level hooks and must not run in parallel.

func withMigrator(t *testing.T, m database.Migrator) *string {
	t.Helper()
	var gotConn string
	orig := newMigrator
	newMigrator = func(connString string) (database.Migrator, error) {
		gotConn = connString
		return m, nil
	}
	t.Cleanup(func() { newMigrator = orig })
	return &gotConn
}

func withTerminal(t *testing.T, isTTY bool) {
	t.Helper()
	orig := stdinIsTerminal
	stdinIsTerminal = func() bool { return isTTY }
	t.Cleanup(func() { stdinIsTerminal = orig })
}

const dbConfig = `academy:
  baseURL: https://academy.example.com/api
labs:
  baseURL: https://labs.example.com/api
database:
  host: db
  port: 5432
  user: catalog
  database: catalog
  sslMode: disable`

func TestMigrateUp_WithYes(t *testing.T) {
	t.Setenv("CATALOG_SYNC_DATABASE_PASSWORD", "secret")
	m := &fakeMigrator{version: 1}
	conn := withMigrator(t, m)

	_, err := executeCommand(t, "migrate", "up", "--config", writeConfig(t, dbConfig), "--yes")
	require.NoError(t, err)
	assert.Equal(t, 1, m.up)
	assert.True(t, m.closed)
	assert.Equal(t, "postgres://catalog:secret@db:5432/catalog?sslmode=disable", *conn)
}

func TestMigrateDown_NonInteractiveRequiresYes(t *testing.T) {
	t.Setenv("CATALOG_SYNC_DATABASE_PASSWORD", "secret")
	m := &fakeMigrator{}
	withMigrator(t, m)
	withTerminal(t, false)

	_, err := executeCommand(t, "migrate", "down", "--config", writeConfig(t, dbConfig))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass --yes")
	assert.Zero(t, m.down)
	assert.True(t, m.closed)
}

func TestMigrateDown_Declined(t *testing.T) {
	t.Setenv("CATALOG_SYNC_DATABASE_PASSWORD", "secret")
	m := &fakeMigrator{}
	withMigrator(t, m)
	withTerminal(t, true)

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("no\n"))
	cmd.SetArgs([]string{"migrate", "down", "-n", "1", "--config", writeConfig(t, dbConfig)})

	err := cmd.Execute()
	require.ErrorIs(t, err, errNotConfirmed)
	assert.Empty(t, m.steps)
}

func TestMigrate_RequiresDatabase(t *testing.T) {
	withMigrator(t, &fakeMigrator{})

	path := writeConfig(t, `academy:
  baseURL: https://academy.example.com/api
labs:
  baseURL: https://labs.example.com/api`)

	_, err := executeCommand(t, "migrate", "up", "--config", path, "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database configuration is required")
}
