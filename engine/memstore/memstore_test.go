package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nominalabs/vacation-engine/engine"
)

func req(id string, start, end engine.Date) engine.LeaveRequest {
	return engine.LeaveRequest{ID: id, Status: engine.RequestApproved, StartDate: start, EndDate: end}
}

func TestLeaveRequests_YearOverlapFilter(t *testing.T) {
	m := NewMemory()
	m.AddLeaveRequest("ana", req("prior", engine.NewDate(2023, time.August, 1), engine.NewDate(2023, time.August, 5)))
	m.AddLeaveRequest("ana", req("straddle", engine.NewDate(2023, time.December, 27), engine.NewDate(2024, time.January, 3)))
	m.AddLeaveRequest("ana", req("inside", engine.NewDate(2024, time.June, 3), engine.NewDate(2024, time.June, 7)))
	m.AddLeaveRequest("ana", req("next", engine.NewDate(2025, time.February, 3), engine.NewDate(2025, time.February, 7)))

	got, err := m.LeaveRequests(context.Background(), "ana", 2024)

	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"straddle", "inside"}, ids)
}

func TestActiveContract_CopiesPauseHistory(t *testing.T) {
	m := NewMemory()
	m.PutContract("luis", engine.ContractInfo{
		ID:   "c1",
		Type: engine.ContractFixedDiscontinuous,
		PauseHistory: []engine.PauseHistoryEntry{
			{ID: "p2", Action: engine.ActionPause, StartDate: engine.NewDate(2024, time.October, 1)},
			{ID: "p1", Action: engine.ActionPause, StartDate: engine.NewDate(2024, time.February, 1)},
		},
	})

	first, err := m.ActiveContract(context.Background(), "luis")
	require.NoError(t, err)

	// History comes back sorted by start date.
	assert.Equal(t, "p1", first.PauseHistory[0].ID)
	assert.Equal(t, "p2", first.PauseHistory[1].ID)

	// Mutating the returned slice must not leak into the store.
	first.PauseHistory[0].ID = "mutated"
	second, err := m.ActiveContract(context.Background(), "luis")
	require.NoError(t, err)
	assert.Equal(t, "p1", second.PauseHistory[0].ID)
}

func TestAdjustments_Filter(t *testing.T) {
	m := NewMemory()
	m.AddAdjustment("ana", engine.Adjustment{ID: "one-off", Year: 2024})
	m.AddAdjustment("ana", engine.Adjustment{ID: "recurring", Recurring: true, StartYear: 2023})
	m.AddAdjustment("ana", engine.Adjustment{ID: "future", Year: 2026})

	got, err := m.Adjustments(context.Background(), "ana", 2024)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "one-off", got[0].ID)
	assert.Equal(t, "recurring", got[1].ID)
}

func TestNotFoundSentinels(t *testing.T) {
	m := NewMemory()

	_, err := m.Employee(context.Background(), "ghost")
	assert.ErrorIs(t, err, engine.ErrEmployeeNotFound)

	_, err = m.Organization(context.Background(), "ghost")
	assert.ErrorIs(t, err, engine.ErrOrganizationNotFound)

	_, err = m.ActiveContract(context.Background(), "ghost")
	assert.ErrorIs(t, err, engine.ErrNoActiveContract)
}
