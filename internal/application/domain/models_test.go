package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to ApplicationStatus
		want     bool
	}{
		{StatusPending, StatusReviewed, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusInterview, false},
		{StatusReviewed, StatusInterview, true},
		{StatusReviewed, StatusRejected, true},
		{StatusReviewed, StatusPending, false},
		{StatusInterview, StatusReviewed, true},
		{StatusInterview, StatusRejected, true},
		{StatusInterview, StatusPending, false},
		{StatusRejected, StatusPending, true},
		{StatusRejected, StatusReviewed, false},
		{StatusRejected, StatusInterview, false},
		{StatusPending, StatusPending, false},
		{ApplicationStatus("bogus"), StatusReviewed, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestValidStatus(t *testing.T) {
	require.True(t, ValidStatus(StatusPending))
	require.True(t, ValidStatus(StatusInterview))
	require.False(t, ValidStatus(ApplicationStatus("")))
	require.False(t, ValidStatus(ApplicationStatus("archived")))
}
