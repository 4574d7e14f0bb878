package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayoutAmount(t *testing.T) {
	t.Run("dice win pays five to one", func(t *testing.T) {
		// 10.00 on an exact dice match returns 50.00.
		assert.Equal(t, int64(50_00), payoutAmount(10_00, 5.0))
	})

	t.Run("near even money rounds to whole minor units", func(t *testing.T) {
		assert.Equal(t, int64(19_00), payoutAmount(10_00, 1.9))
		assert.Equal(t, int64(190), payoutAmount(100, 1.9))
		assert.Equal(t, int64(2), payoutAmount(1, 1.9))
	})

	t.Run("loss pays nothing", func(t *testing.T) {
		assert.Equal(t, int64(0), payoutAmount(10_00, 0))
	})

	t.Run("adjacent slot pair", func(t *testing.T) {
		assert.Equal(t, int64(15_00), payoutAmount(10_00, 1.5))
		assert.Equal(t, int64(2), payoutAmount(1, 1.5))
	})
}

func TestDayStart(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	t.Run("utc midnight", func(t *testing.T) {
		s := &Service{loc: time.UTC}
		now := time.Date(2024, 3, 15, 17, 42, 9, 0, time.UTC)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), s.dayStart(now))
	})

	t.Run("platform zone decides the calendar day", func(t *testing.T) {
		s := &Service{loc: ny}
		// 03:00 UTC on the 15th is still the evening of the 14th in New York.
		now := time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC)
		start := s.dayStart(now)
		assert.Equal(t, 14, start.Day())
		assert.Equal(t, 0, start.Hour())
	})
}
