package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	candidates := []Candidate{
		{ID: "3", Name: "In Progress"},
		{ID: "4", Name: "In Review"},
	}

	t.Run("case-insensitive match", func(t *testing.T) {
		id, err := Resolve("in progress", candidates)
		require.NoError(t, err)
		assert.Equal(t, "3", id)
	})

	t.Run("exact match", func(t *testing.T) {
		id, err := Resolve("In Review", candidates)
		require.NoError(t, err)
		assert.Equal(t, "4", id)
	})

	t.Run("no fuzzy matching", func(t *testing.T) {
		_, err := Resolve("In Progres", candidates)
		var navail *NotAvailableError
		assert.ErrorAs(t, err, &navail)
	})

	t.Run("miss lists all legal alternatives", func(t *testing.T) {
		_, err := Resolve("Done", candidates)
		var navail *NotAvailableError
		require.ErrorAs(t, err, &navail)
		assert.Equal(t, "Done", navail.Target)
		assert.Equal(t, []string{"In Progress", "In Review"}, navail.Available)
		assert.Contains(t, navail.Error(), "In Progress, In Review")
	})

	t.Run("empty candidate list", func(t *testing.T) {
		_, err := Resolve("Done", nil)
		var navail *NotAvailableError
		require.ErrorAs(t, err, &navail)
		assert.Empty(t, navail.Available)
	})
}
