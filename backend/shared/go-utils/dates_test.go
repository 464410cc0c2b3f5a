package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonthsClamped(t *testing.T) {
	cases := []struct {
		in   time.Time
		n    int
		want time.Time
	}{
		{Date(2024, 1, 10), 1, Date(2024, 2, 10)},
		{Date(2024, 1, 31), 1, Date(2024, 2, 29)},
		{Date(2023, 1, 31), 1, Date(2023, 2, 28)},
		{Date(2024, 1, 31), 2, Date(2024, 3, 31)},
		{Date(2024, 11, 15), 3, Date(2025, 2, 15)},
		{Date(2024, 8, 31), 1, Date(2024, 9, 30)},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AddMonthsClamped(tc.in, tc.n), "%s + %d", tc.in.Format(DateLayout), tc.n)
	}
}

func TestDateOnlyUsesLocation(t *testing.T) {
	ktm := LoadLocation("Asia/Kathmandu")
	// 20:00 UTC on Feb 9 is already Feb 10 in Kathmandu (+05:45).
	instant := time.Date(2024, 2, 9, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, Date(2024, 2, 10), DateOnly(instant, ktm))
	assert.Equal(t, Date(2024, 2, 9), DateOnly(instant, time.UTC))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 2, DaysBetween(Date(2024, 2, 8), Date(2024, 2, 10)))
	assert.Equal(t, -3, DaysBetween(Date(2024, 2, 13), Date(2024, 2, 10)))
	assert.Equal(t, 0, DaysBetween(Date(2024, 2, 10), Date(2024, 2, 10)))
	assert.Equal(t, 29, DaysBetween(Date(2024, 2, 1), Date(2024, 3, 1)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, Date(2024, 6, 10), d)

	_, err = ParseDate("10/06/2024")
	require.Error(t, err)
}

func TestLoadLocationFallback(t *testing.T) {
	assert.Equal(t, time.UTC, LoadLocation("Not/AZone"))
	assert.Equal(t, time.UTC, LoadLocation(""))
}
