package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		loc  *time.Location
		want string
	}{
		{"plain date", "2024-01-10", ist, "2024-01-10"},
		{"utc timestamp stays in utc", "2024-01-10T10:00:00Z", time.UTC, "2024-01-10"},
		{"midnight IST sent as UTC", "2024-01-09T18:30:00.000Z", ist, "2024-01-10"},
		{"space separated", "2024-02-01 09:15:00", nil, "2024-02-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.in, tt.loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("10/01/2024", time.UTC)
	assert.Error(t, err)

	_, err = ParseDate("  ", time.UTC)
	assert.Error(t, err)
}

func TestParseOptionalDate(t *testing.T) {
	d, err := ParseOptionalDate("", time.UTC)
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseOptionalDate("2025-01-05", time.UTC)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "2025-01-05", d.String())
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(time.Date(2024, 2, 1, 23, 59, 0, 0, time.UTC))

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-02-01"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)
}

func TestDate_Scan(t *testing.T) {
	var d Date

	require.NoError(t, d.Scan(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-04", d.String())

	require.NoError(t, d.Scan("2024-03-05 00:00:00+00:00"))
	assert.Equal(t, "2024-03-05", d.String())

	require.NoError(t, d.Scan([]byte("2024-03-06")))
	assert.Equal(t, "2024-03-06", d.String())

	assert.Error(t, d.Scan(42))
}

func TestDate_Before(t *testing.T) {
	a, _ := ParseDate("2024-01-10", time.UTC)
	b, _ := ParseDate("2024-02-01", time.UTC)
	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
}
