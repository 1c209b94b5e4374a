package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClockNowIsUTC(t *testing.T) {
	t.Parallel()

	now := New().Now()
	require.Equal(t, time.UTC, now.Location())
	require.WithinDuration(t, time.Now().UTC(), now, time.Second)
}
