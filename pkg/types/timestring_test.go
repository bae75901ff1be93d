package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "hh:mm", input: "09:30", want: "09:30"},
		{name: "postgres time", input: "18:00:00", want: "18:00"},
		{name: "midnight", input: "00:00", want: "00:00"},
		{name: "last minute", input: "23:59", want: "23:59"},
		{name: "hour overflow", input: "24:00", wantErr: true},
		{name: "minute overflow", input: "10:60", wantErr: true},
		{name: "single digit", input: "9:30", wantErr: true},
		{name: "seconds", input: "10:00:30", wantErr: true},
		{name: "garbage", input: "noon", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_Arithmetic(t *testing.T) {
	start := MustTimeString("11:30")

	assert.Equal(t, 690, start.Minutes())

	end, err := start.AddMinutes(60)
	require.NoError(t, err)
	assert.Equal(t, TimeString("12:30"), end)

	_, err = MustTimeString("23:30").AddMinutes(30)
	assert.ErrorIs(t, err, ErrTimeOverflow)

	assert.True(t, start.IsBefore(end))
	assert.True(t, end.IsAfter(start))
	assert.False(t, start.IsBefore(start))
}

func TestTimeString_On(t *testing.T) {
	date := time.Date(2025, 10, 15, 17, 45, 0, 0, time.UTC)

	got := MustTimeString("10:15").On(date)

	assert.Equal(t, time.Date(2025, 10, 15, 10, 15, 0, 0, time.UTC), got)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("08:00:00")))
	assert.Equal(t, TimeString("08:00"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))

	v, err := MustTimeString("13:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "13:00", v)
}
