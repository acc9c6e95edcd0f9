package securetoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue(t *testing.T) {
	t.Parallel()

	plain, hash, err := Issue()
	require.NoError(t, err)

	assert.Len(t, plain, DefaultBytes*2, "hex encoding doubles the length")
	assert.Len(t, hash, 64)
	assert.NotEqual(t, plain, hash, "plaintext must never equal its stored hash")
	assert.Equal(t, HashForLookup(plain), hash)
}

func TestIssue_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		plain, _, err := Issue()
		require.NoError(t, err)
		_, dup := seen[plain]
		require.False(t, dup, "duplicate token generated")
		seen[plain] = struct{}{}
	}
}

func TestIssueN_TooShort(t *testing.T) {
	t.Parallel()

	_, _, err := IssueN(8)
	assert.Error(t, err)
}

func TestHashForLookup_Deterministic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, HashForLookup("abc"), HashForLookup("abc"))
	assert.NotEqual(t, HashForLookup("abc"), HashForLookup("abd"))
	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", HashForLookup("abc"))
}
