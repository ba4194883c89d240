package idx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/usergate/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestNewAndParse(t *testing.T) {
	id := idx.New()
	require.False(t, id.IsZero())

	parsed, err := idx.Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = idx.Parse("not-a-ulid")
	require.ErrorIs(t, err, idx.ErrInvalid)
}

func TestOrdering(t *testing.T) {
	now := time.Now().UTC()
	a := idx.NewAt(now)
	b := idx.NewAt(now)
	c := idx.NewAt(now.Add(time.Second))

	require.Less(t, a.String(), b.String())
	require.Less(t, b.String(), c.String())
}

func TestTimeExtraction(t *testing.T) {
	tm := time.Unix(1700000000, 0).UTC()
	require.WithinDuration(t, tm, idx.NewAt(tm).Time(), time.Millisecond)
	require.True(t, idx.ID("abc").Time().IsZero())
}

func TestFromHeader(t *testing.T) {
	require.Equal(t, idx.ID("req-123_abc.def"), idx.FromHeader("req-123_abc.def"))

	for _, bad := range []string{"", "has space", "line\nbreak", strings.Repeat("a", 65)} {
		got := idx.FromHeader(bad)
		_, err := idx.Parse(got.String())
		require.NoError(t, err, "input %q should be replaced with a fresh id", bad)
	}
}
