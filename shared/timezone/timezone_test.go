package timezone_test

import (
	"testing"
	"time"

	"stayvista/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNow(t *testing.T) {
	now := timezone.Now()

	assert.False(t, now.IsZero())
	assert.Equal(t, timezone.Location(), now.Location())
}

func TestFormat(t *testing.T) {
	instant := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, instant.In(timezone.Location()).Format(time.RFC3339), timezone.Format(instant, time.RFC3339))
}

func TestStartOfDay(t *testing.T) {
	got := timezone.StartOfDay(time.Date(2024, 3, 9, 23, 59, 0, 0, timezone.Location()))

	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, timezone.Location()), got)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "date only", value: "2024-01-04", want: time.Date(2024, 1, 4, 0, 0, 0, 0, timezone.Location())},
		{name: "rfc3339 truncated to its day", value: "2024-01-04T15:30:00Z", want: timezone.StartOfDay(time.Date(2024, 1, 4, 15, 30, 0, 0, time.UTC))},
		{name: "slashes rejected", value: "04/01/2024", wantErr: true},
		{name: "empty rejected", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timezone.ParseDate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
			assert.Zero(t, got.Hour())
		})
	}
}
