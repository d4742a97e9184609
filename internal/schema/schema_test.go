package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Run("mapped field", func(t *testing.T) {
		desc, ok := Lookup("ITCM", "risk_level")
		require.True(t, ok)
		assert.Equal(t, "customfield_10059", desc.WireID)
		assert.Equal(t, KindValueWrapped, desc.Kind)
	})

	t.Run("field not in this project", func(t *testing.T) {
		_, ok := Lookup("ITHELP", "risk_level")
		assert.False(t, ok)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, ok := Lookup("NOPE", "work_type")
		assert.False(t, ok)
	})

	t.Run("project with empty table", func(t *testing.T) {
		_, ok := Lookup("ITPROJ", "work_type")
		assert.False(t, ok)
	})
}

// The registry is keyed by (project, friendlyName): the same wire id
// may serve different friendly names, and the same friendly name may
// point at different descriptors per project.
func TestCompoundKey(t *testing.T) {
	t.Run("same wire id in two projects", func(t *testing.T) {
		itcm, ok := Lookup("ITCM", "approvers")
		require.True(t, ok)
		it, ok := Lookup("IT", "approvers")
		require.True(t, ok)
		assert.Equal(t, itcm.WireID, it.WireID)
	})

	t.Run("same friendly name resolves per project", func(t *testing.T) {
		ithelp, ok := Lookup("ITHELP", "work_type")
		require.True(t, ok)
		itcm, ok := Lookup("ITCM", "work_type")
		require.True(t, ok)
		assert.Equal(t, ithelp.WireID, itcm.WireID)
		assert.Equal(t, KindValueWrapped, ithelp.Kind)
	})
}

func TestReverseLookup(t *testing.T) {
	t.Run("mapped wire id", func(t *testing.T) {
		desc, ok := ReverseLookup("ITCM", "customfield_10063")
		require.True(t, ok)
		assert.Equal(t, "rollback_plan", desc.FriendlyName)
	})

	t.Run("wire id mapped elsewhere only", func(t *testing.T) {
		// customfield_10059 is risk_level in ITCM, unmapped in ITPROJECT.
		_, ok := ReverseLookup("ITPROJECT", "customfield_10059")
		assert.False(t, ok)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, ok := ReverseLookup("NOPE", "customfield_10055")
		assert.False(t, ok)
	})
}
