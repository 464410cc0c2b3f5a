package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModerationActionAppliesTo(t *testing.T) {
	cases := []struct {
		action ModerationAction
		from   UnitStatus
		want   bool
	}{
		{ModerationApprove, UnitStatusPendingVerification, true},
		{ModerationApprove, UnitStatusDisabled, true},
		{ModerationApprove, UnitStatusAvailable, false},
		{ModerationApprove, UnitStatusOccupied, false},
		{ModerationApprove, UnitStatusRented, false},
		{ModerationDisable, UnitStatusOccupied, true},
		{ModerationDisable, UnitStatusRented, true},
		{ModerationDisable, UnitStatusPendingVerification, true},
		{ModerationAction("ARCHIVE"), UnitStatusAvailable, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.action.AppliesTo(tc.from), "%s from %s", tc.action, tc.from)
	}
}
