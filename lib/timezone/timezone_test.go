package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocationOffset(t *testing.T) {
	at := time.Date(2024, time.January, 1, 12, 0, 0, 0, Location)
	_, offset := at.Zone()
	// Bangkok has no daylight saving, the offset is fixed
	require.Equal(t, 7*60*60, offset)
}

func TestNowIsInLocation(t *testing.T) {
	now := Now()
	require.Equal(t, Location.String(), now.Location().String())
}
