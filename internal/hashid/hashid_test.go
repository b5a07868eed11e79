package hashid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	c, err := New("plataforma-web", 8)
	require.NoError(t, err)

	seen := map[string]uint{}
	for _, id := range []uint{1, 2, 3, 10, 999, 123456} {
		s, err := c.Encode(id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(s), 8)
		if other, ok := seen[s]; ok {
			t.Fatalf("ids %d and %d share encoding %s", id, other, s)
		}
		seen[s] = id

		got, err := c.Decode(s)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestSaltChangesEncoding(t *testing.T) {
	a, err := New("uno", 8)
	require.NoError(t, err)
	b, err := New("dos", 8)
	require.NoError(t, err)
	sa, _ := a.Encode(42)
	sb, _ := b.Encode(42)
	assert.NotEqual(t, sa, sb)
}

func TestDecodeGarbage(t *testing.T) {
	c, err := New("plataforma-web", 8)
	require.NoError(t, err)
	_, err = c.Decode("not-a-hash!")
	assert.Error(t, err)
}
