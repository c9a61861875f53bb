package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"slices"
	"testing"

	"servicecatalog/internal/catalog"
	"servicecatalog/internal/testutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := testutil.WriteCatalog(t, dir, "catalog.md", testutil.SampleCatalog)
		out, err := execute(t, "validate", "-f", path)
		require.NoError(t, err)
		assert.Contains(t, out, "3 entries OK")
	})

	t.Run("missing field", func(t *testing.T) {
		path := testutil.WriteCatalog(t, dir, "bad.md", "Id: svc-1\nCategory: X\n")
		_, err := execute(t, "validate", "-f", path)
		assert.True(t, errors.Is(err, catalog.ErrMissingField))
	})

	t.Run("format override", func(t *testing.T) {
		path := testutil.WriteCatalog(t, dir, "catalog.data", "Category,Subcategory,Brief Description\nA,B,C\n")
		out, err := execute(t, "validate", "-f", path, "--format", "csv", "--json")
		require.NoError(t, err)
		assert.JSONEq(t, `{"valid":true,"entries":1}`, out)
	})

	t.Run("file flag required", func(t *testing.T) {
		_, err := execute(t, "validate")
		assert.Error(t, err)
	})
}

func TestLookup(t *testing.T) {
	path := testutil.WriteCatalog(t, t.TempDir(), "catalog.md", testutil.SampleCatalog)

	t.Run("single key", func(t *testing.T) {
		out, err := execute(t, "lookup", "-f", path, "svc-001")
		require.NoError(t, err)
		assert.Contains(t, out, "Virtual Machine Deployment")
		assert.NotContains(t, out, "Query Statistics")
	})

	t.Run("several keys with a miss", func(t *testing.T) {
		out, err := execute(t, "lookup", "-f", path, "svc-001", "Password Reset", "svc-999")
		assert.True(t, errors.Is(err, catalog.ErrNotFound))
		assert.Contains(t, out, "svc-999: not found")
		assert.Contains(t, out, "Query Statistics:\n  Total Queries: 3\n")
		assert.Contains(t, out, "Passed: 2 (66.7%)")
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "lookup", "-f", path, "--json", "entry-3")
		require.NoError(t, err)

		var got struct {
			Entries []catalog.Entry      `json:"entries"`
			Stats   catalog.StatsSummary `json:"stats"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got.Entries, 1)
		assert.Equal(t, "Network", got.Entries[0].Category)
		assert.EqualValues(t, 1, got.Stats.PassCount)
	})
}

func TestListAndCategories(t *testing.T) {
	path := testutil.WriteCatalog(t, t.TempDir(), "catalog.md", testutil.SampleCatalog)

	out, err := execute(t, "list", "-f", path, "--category", "identity")
	require.NoError(t, err)
	assert.Contains(t, out, "Password Reset")
	assert.NotContains(t, out, "svc-001")

	out, err = execute(t, "categories", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "Compute Resources (1)\nIdentity (1)\nNetwork (1)\n", out)
}

func TestDatabaseSource(t *testing.T) {
	t.Run("unreachable database", func(t *testing.T) {
		_, err := execute(t, "lookup", "--dsn", "postgres://nobody@127.0.0.1:1/none?connect_timeout=1", "svc-001")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database")
	})

	t.Run("validate still needs a file", func(t *testing.T) {
		_, err := execute(t, "validate", "--dsn", "postgres://nobody@127.0.0.1:1/none")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"file"`)
	})

	t.Run("reads stored catalog", func(t *testing.T) {
		dsn := os.Getenv("TEST_DB_DSN")
		if dsn == "" {
			t.Skip("Skipping test: TEST_DB_DSN not set")
		}
		pool, err := pgxpool.New(t.Context(), dsn)
		if err != nil {
			t.Skipf("Skipping test: cannot connect to test database: %v", err)
		}
		defer pool.Close()
		if err := pool.Ping(t.Context()); err != nil {
			t.Skipf("Skipping test: cannot ping test database: %v", err)
		}

		path := testutil.WriteCatalog(t, t.TempDir(), "catalog.md", testutil.SampleCatalog)
		idx, err := catalog.LoadFile(path)
		require.NoError(t, err)
		_, err = catalog.NewPostgresRepo(pool).ReplaceAll(t.Context(), slices.Collect(idx.All()))
		if err != nil {
			t.Skipf("Skipping test: catalog_entries not migrated: %v", err)
		}

		out, err := execute(t, "lookup", "--dsn", dsn, "Password Reset")
		require.NoError(t, err)
		assert.Contains(t, out, "Identity")

		out, err = execute(t, "list", "--dsn", dsn, "--category", "IDENTITY", "--json")
		require.NoError(t, err)
		var entries []catalog.Entry
		require.NoError(t, json.Unmarshal([]byte(out), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "Password Reset", entries[0].Key)
	})
}
