package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()

	require.False(t, a.IsZero())
	require.False(t, b.IsZero())
	require.NotEqual(t, a, b)
	require.Len(t, a.String(), 26)
}

func TestNewAt_SortsByTime(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	earlier := NewAt(t0)
	later := NewAt(t0.Add(time.Hour))

	require.Less(t, earlier.String(), later.String())
	require.Equal(t, t0.Truncate(time.Millisecond), earlier.Time())
}

func TestParse(t *testing.T) {
	id := New()

	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	t.Run("rejects garbage", func(t *testing.T) {
		for _, s := range []string{"", "   ", "not-a-ulid", "0000"} {
			_, err := Parse(s)
			require.ErrorIs(t, err, ErrInvalid)
		}
	})

	t.Run("trims whitespace", func(t *testing.T) {
		parsed, err := Parse("  " + id.String() + " ")
		require.NoError(t, err)
		require.Equal(t, id, parsed)
	})
}

func TestMustParse_PanicsOnInvalid(t *testing.T) {
	require.Panics(t, func() { MustParse("definitely-not-a-ulid") })
}

func TestTime_InvalidIsZero(t *testing.T) {
	require.True(t, ID("bogus").Time().IsZero())
	require.True(t, Zero.Time().IsZero())
}
