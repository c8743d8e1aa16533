package db

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJobUpdate(t *testing.T) {
	t.Run("rejects empty update", func(t *testing.T) {
		_, _, err := buildJobUpdate(map[string]any{})
		assert.ErrorIs(t, err, ErrInvalidUpdate)
	})

	t.Run("rejects unknown column", func(t *testing.T) {
		_, _, err := buildJobUpdate(map[string]any{"tracking_id": "x"})
		require.ErrorIs(t, err, ErrInvalidUpdate)
		assert.Contains(t, err.Error(), "not updatable")
	})

	t.Run("rejects injection through field name", func(t *testing.T) {
		_, _, err := buildJobUpdate(map[string]any{"company = 'x'; DROP TABLE jobs; --": "x"})
		assert.Error(t, err)
	})

	t.Run("builds deterministic clause order", func(t *testing.T) {
		clause, args, err := buildJobUpdate(map[string]any{
			"title":   "Backend Engineer",
			"company": "Initech",
		})
		require.NoError(t, err)
		assert.Equal(t, "company = $1, title = $2, updated_at = NOW()", clause)
		assert.Equal(t, []any{"Initech", "Backend Engineer"}, args)
	})

	t.Run("lifecycle flag appends status entry", func(t *testing.T) {
		clause, args, err := buildJobUpdate(map[string]any{"is_applied": true})
		require.NoError(t, err)
		assert.Contains(t, clause, "is_applied = $1")
		assert.Contains(t, clause, "statuses = statuses || $2::jsonb")
		require.Len(t, args, 2)

		var entries []StatusEntry
		require.NoError(t, json.Unmarshal(args[1].([]byte), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "Applied", entries[0].Status)
		assert.False(t, entries[0].Date.IsZero())
	})

	t.Run("clearing a flag appends nothing", func(t *testing.T) {
		clause, args, err := buildJobUpdate(map[string]any{"is_applied": false})
		require.NoError(t, err)
		assert.NotContains(t, clause, "statuses")
		assert.Len(t, args, 1)
	})

	t.Run("multiple flags append multiple entries", func(t *testing.T) {
		_, args, err := buildJobUpdate(map[string]any{
			"is_applied":     true,
			"is_shortlisted": true,
		})
		require.NoError(t, err)

		var entries []StatusEntry
		require.NoError(t, json.Unmarshal(args[len(args)-1].([]byte), &entries))
		assert.Len(t, entries, 2)
	})
}
