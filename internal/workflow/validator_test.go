package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func statusPtr(s Status) *Status {
	return &s
}

func strPtr(s string) *string {
	return &s
}

func TestProposeChange_DerivesPendingForNewCalling(t *testing.T) {
	res, err := ProposeChange(CallingState{}, ChangeRequest{
		Name: strPtr("Jane Doe"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, res.Effective.Status)
	require.False(t, res.StatusChanged)
}

func TestProposeChange_PresidencyApprovalDerivesApproved(t *testing.T) {
	current := CallingState{Status: StatusPending}

	res, err := ProposeChange(current, ChangeRequest{
		PresidencyApproved: date("2026-03-01"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusApproved, res.Effective.Status)
	require.True(t, res.StatusChanged)
	require.Equal(t, StatusPending, res.PreviousStatus)
}

func TestProposeChange_HCApprovalWinsOverPresidency(t *testing.T) {
	current := CallingState{
		Status:             StatusApproved,
		PresidencyApproved: date("2026-03-01"),
	}

	res, err := ProposeChange(current, ChangeRequest{
		HCApproved: date("2026-03-08"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusHCApproved, res.Effective.Status)
}

func TestProposeChange_ExplicitOnHoldWinsOverDerivation(t *testing.T) {
	current := CallingState{
		Status:             StatusHCApproved,
		PresidencyApproved: date("2026-03-01"),
		HCApproved:         date("2026-03-08"),
	}

	res, err := ProposeChange(current, ChangeRequest{
		Status: statusPtr(StatusOnHold),
	})
	require.NoError(t, err)
	require.Equal(t, StatusOnHold, res.Effective.Status)
}

func TestProposeChange_PersistedOnHoldSurvivesUnrelatedUpdate(t *testing.T) {
	current := CallingState{
		Status:             StatusOnHold,
		PresidencyApproved: date("2026-03-01"),
		HCApproved:         date("2026-03-08"),
	}

	res, err := ProposeChange(current, ChangeRequest{
		Notes: strPtr("spoke with the family"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusOnHold, res.Effective.Status)
	require.False(t, res.StatusChanged)
}

func TestProposeChange_AddingHCDateRederivesOverPersistedHold(t *testing.T) {
	current := CallingState{
		Status:             StatusOnHold,
		PresidencyApproved: date("2026-03-01"),
	}

	res, err := ProposeChange(current, ChangeRequest{
		HCApproved: date("2026-03-15"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusHCApproved, res.Effective.Status)
}

func TestProposeChange_ExplicitCalledSurvivesWithPresidencyApproval(t *testing.T) {
	current := CallingState{
		Status:             StatusApproved,
		PresidencyApproved: date("2026-03-01"),
	}

	res, err := ProposeChange(current, ChangeRequest{
		Status:     statusPtr(StatusCalled),
		DateCalled: date("2026-03-10"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusCalled, res.Effective.Status)

	// And the explicit CALLED survives a later note-only edit
	res2, err := ProposeChange(res.Effective, ChangeRequest{
		Notes: strPtr("set apart scheduled"),
	})
	require.NoError(t, err)
	require.Equal(t, StatusCalled, res2.Effective.Status)
}

func TestProposeChange_ClearingApprovalFallsBack(t *testing.T) {
	current := CallingState{
		Status:             StatusHCApproved,
		PresidencyApproved: date("2026-03-01"),
		HCApproved:         date("2026-03-08"),
	}

	res, err := ProposeChange(current, ChangeRequest{
		ClearHCApproved: true,
	})
	require.NoError(t, err)
	require.Equal(t, StatusApproved, res.Effective.Status)
}

func TestProposeChange_NoOpYieldsZeroDiff(t *testing.T) {
	current := CallingState{
		UnitID:             1,
		OrganizationID:     2,
		PositionID:         3,
		Name:               strPtr("Jane Doe"),
		Status:             StatusHCApproved,
		DateCalled:         date("2026-03-10"),
		PresidencyApproved: date("2026-03-01"),
		HCApproved:         date("2026-03-08"),
		Notes:              "note",
		IsActive:           true,
	}

	res, err := ProposeChange(current, ChangeRequest{})
	require.NoError(t, err)
	require.Empty(t, res.Changes)
	require.False(t, res.StatusChanged)
	require.Equal(t, current, res.Effective)
}

func TestProposeChange_Idempotent(t *testing.T) {
	current := CallingState{Status: StatusPending, IsActive: true}
	req := ChangeRequest{
		Name:               strPtr("Jane Doe"),
		PresidencyApproved: date("2026-03-01"),
	}

	first, err := ProposeChange(current, req)
	require.NoError(t, err)

	second, err := ProposeChange(first.Effective, req)
	require.NoError(t, err)
	require.Equal(t, first.Effective, second.Effective)
	require.Empty(t, second.Changes)
}

func TestProposeChange_DateOrderViolation(t *testing.T) {
	_, err := ProposeChange(CallingState{}, ChangeRequest{
		DateCalled:    date("2026-03-10"),
		DateSustained: date("2026-03-01"),
	})
	require.Error(t, err)

	var orderErr *DateOrderError
	require.ErrorAs(t, err, &orderErr)
	require.Equal(t, FieldDateCalled, orderErr.Earlier)
	require.Equal(t, FieldDateSustained, orderErr.Later)
}

func TestProposeChange_DateOrderChecksNonAdjacentPairs(t *testing.T) {
	// sustained absent; called vs released must still be checked
	_, err := ProposeChange(CallingState{}, ChangeRequest{
		DateCalled:   date("2026-06-01"),
		DateReleased: date("2026-05-01"),
	})
	var orderErr *DateOrderError
	require.ErrorAs(t, err, &orderErr)
	require.Equal(t, FieldDateCalled, orderErr.Earlier)
	require.Equal(t, FieldDateReleased, orderErr.Later)
}

func TestProposeChange_EqualDatesAllowed(t *testing.T) {
	res, err := ProposeChange(CallingState{}, ChangeRequest{
		DateCalled:    date("2026-03-10"),
		DateSustained: date("2026-03-10"),
		DateSetApart:  date("2026-03-10"),
	})
	require.NoError(t, err)
	require.NotNil(t, res)
}

func TestProposeChange_DateOrderValidatedAgainstMergedState(t *testing.T) {
	current := CallingState{DateCalled: date("2026-03-10")}

	_, err := ProposeChange(current, ChangeRequest{
		DateSustained: date("2026-03-01"),
	})
	var orderErr *DateOrderError
	require.ErrorAs(t, err, &orderErr)
}

func TestProposeChange_DiffRecordsOldAndNew(t *testing.T) {
	current := CallingState{
		UnitID:   1,
		Name:     strPtr("Old Name"),
		Status:   StatusPending,
		IsActive: true,
	}

	res, err := ProposeChange(current, ChangeRequest{
		Name:       strPtr("New Name"),
		DateCalled: date("2026-04-01"),
	})
	require.NoError(t, err)

	byField := map[string]FieldChange{}
	for _, c := range res.Changes {
		byField[c.Field] = c
	}

	require.Equal(t, "Old Name", byField["name"].Old)
	require.Equal(t, "New Name", byField["name"].New)
	require.Nil(t, byField["date_called"].Old)
	require.Equal(t, "2026-04-01", byField["date_called"].New)
}

func TestProposeChange_ClearFlagsNullFields(t *testing.T) {
	current := CallingState{
		Name:         strPtr("Jane Doe"),
		HomeUnitID:   func() *uint64 { v := uint64(4); return &v }(),
		DateReleased: date("2026-02-01"),
		Status:       StatusPending,
	}

	res, err := ProposeChange(current, ChangeRequest{
		ClearName:         true,
		ClearHomeUnit:     true,
		ClearDateReleased: true,
	})
	require.NoError(t, err)
	require.Nil(t, res.Effective.Name)
	require.Nil(t, res.Effective.HomeUnitID)
	require.Nil(t, res.Effective.DateReleased)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name     string
		state    CallingState
		expected string
	}{
		{
			name:     "no occupant",
			state:    CallingState{},
			expected: "",
		},
		{
			name:     "occupied and unreleased",
			state:    CallingState{Name: strPtr("Jane Doe")},
			expected: "Jane Doe (active)",
		},
		{
			name:     "occupied and released",
			state:    CallingState{Name: strPtr("Jane Doe"), DateReleased: date("2026-01-01")},
			expected: "Jane Doe",
		},
		{
			name:     "empty name",
			state:    CallingState{Name: strPtr("")},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, DisplayName(tt.state))
		})
	}
}

func TestBadgeFor_CoversEveryStatus(t *testing.T) {
	expected := map[Status]Badge{
		StatusPending:    BadgeWarning,
		StatusOnHold:     BadgeWarning,
		StatusApproved:   BadgeSuccess,
		StatusHCApproved: BadgeSuccess,
		StatusCalled:     BadgePrimary,
		StatusLCRUpdated: BadgeInfo,
	}

	for _, s := range AllStatuses {
		require.Equal(t, expected[s], BadgeFor(s), "status %s", s)
	}
}

func TestBadgeFor_UnknownStatusGetsNeutralBadge(t *testing.T) {
	require.Equal(t, BadgeSecondary, BadgeFor(Status("RETIRED_VALUE")))
}

func TestStatusIsValid(t *testing.T) {
	for _, s := range AllStatuses {
		require.True(t, s.IsValid())
	}
	require.False(t, Status("ACTIVE").IsValid())
	require.False(t, Status("").IsValid())
}
