package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nominalabs/vacation-engine/engine"
	"github.com/nominalabs/vacation-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

const demoPolicy = `{"annual_days": 23, "carryover_mode": "NONE", "rounding_unit": 1}`

func seedEmployee(t *testing.T, s *sqlite.Store, contract engine.ContractInfo) *engine.Employee {
	t.Helper()
	ctx := context.Background()
	org, err := s.CreateOrganization(ctx, "Demo S.L.", []byte(demoPolicy))
	require.NoError(t, err)
	emp, err := s.CreateEmployee(ctx, org.ID, "Ana García", "ana@demo.es")
	require.NoError(t, err)
	_, err = s.CreateContract(ctx, emp.ID, contract)
	require.NoError(t, err)
	return emp
}

func fullTime(start engine.Date) engine.ContractInfo {
	return engine.ContractInfo{
		Type:               engine.ContractOrdinary,
		StartDate:          start,
		WeeklyHours:        decimal.NewFromInt(40),
		WorkingDaysPerWeek: 5,
	}
}

func TestOrganizations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	org, err := s.CreateOrganization(ctx, "Demo S.L.", []byte(demoPolicy))
	require.NoError(t, err)
	assert.NotEmpty(t, org.ID)
	assert.Equal(t, "Demo S.L.", org.Name)
	assert.True(t, org.Policy.AnnualDays.Equal(decimal.NewFromInt(23)))
	assert.Equal(t, engine.CarryoverNone, org.Policy.CarryoverMode)

	// Policy updates are validated and visible on the next read.
	err = s.SetPTOPolicy(ctx, org.ID, []byte(`{"annual_days": 25, "carryover_mode": "UNLIMITED"}`))
	require.NoError(t, err)
	reread, err := s.Organization(ctx, org.ID)
	require.NoError(t, err)
	assert.True(t, reread.Policy.AnnualDays.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, engine.CarryoverUnlimited, reread.Policy.CarryoverMode)

	_, err = s.CreateOrganization(ctx, "Broken", []byte(`{"annual_days": 0}`))
	assert.Error(t, err)

	err = s.SetPTOPolicy(ctx, "missing-org", []byte(demoPolicy))
	assert.ErrorIs(t, err, engine.ErrOrganizationNotFound)

	_, err = s.Organization(ctx, "missing-org")
	assert.ErrorIs(t, err, engine.ErrOrganizationNotFound)
}

func TestEmployees(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	org, err := s.CreateOrganization(ctx, "Demo S.L.", []byte(demoPolicy))
	require.NoError(t, err)

	_, err = s.CreateEmployee(ctx, "missing-org", "Ana", "ana@demo.es")
	assert.ErrorIs(t, err, engine.ErrOrganizationNotFound)

	luis, err := s.CreateEmployee(ctx, org.ID, "Luis Ortega", "luis@demo.es")
	require.NoError(t, err)
	ana, err := s.CreateEmployee(ctx, org.ID, "Ana García", "ana@demo.es")
	require.NoError(t, err)

	got, err := s.Employee(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana García", got.Name)
	assert.Equal(t, org.ID, got.OrganizationID)

	list, err := s.ListEmployees(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ana.ID, list[0].ID) // sorted by name
	assert.Equal(t, luis.ID, list[1].ID)

	_, err = s.Employee(ctx, "ghost")
	assert.ErrorIs(t, err, engine.ErrEmployeeNotFound)
}

func TestContracts_RoundTripAndReplacement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	emp := seedEmployee(t, s, fullTime(engine.NewDate(2023, time.January, 1)))

	first, err := s.ActiveContract(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.ContractOrdinary, first.Type)
	assert.True(t, first.StartDate.Equal(engine.NewDate(2023, time.January, 1)))
	assert.Nil(t, first.EndDate)
	assert.Equal(t, 480, first.WorkdayMinutes())

	// A replacement contract deactivates the previous one.
	end := engine.NewDate(2026, time.December, 31)
	_, err = s.CreateContract(ctx, emp.ID, engine.ContractInfo{
		Type:                   engine.ContractTemporary,
		StartDate:              engine.NewDate(2025, time.January, 1),
		EndDate:                &end,
		WeeklyHours:            decimal.NewFromInt(35),
		WorkingDaysPerWeek:     5,
		WorkdayMinutesOverride: 400,
	})
	require.NoError(t, err)

	active, err := s.ActiveContract(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.ContractTemporary, active.Type)
	require.NotNil(t, active.EndDate)
	assert.True(t, active.EndDate.Equal(end))
	assert.Equal(t, 400, active.WorkdayMinutes())

	_, err = s.ActiveContract(ctx, "ghost")
	assert.ErrorIs(t, err, engine.ErrNoActiveContract)

	_, err = s.CreateContract(ctx, "ghost", fullTime(engine.NewDate(2024, time.January, 1)))
	assert.ErrorIs(t, err, engine.ErrEmployeeNotFound)
}

func TestPauseEvents(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	contract := fullTime(engine.NewDate(2024, time.January, 1))
	contract.Type = engine.ContractFixedDiscontinuous
	contract.DiscontinuousStatus = engine.DiscontinuousActive
	emp := seedEmployee(t, s, contract)

	// GIVEN a pause event
	err := s.AddPauseEvent(ctx, emp.ID, engine.PauseHistoryEntry{
		Action:    engine.ActionPause,
		StartDate: engine.NewDate(2024, time.June, 1),
		Reason:    "fin de campaña",
	})
	require.NoError(t, err)

	// THEN the contract is paused with one open pause
	paused, err := s.ActiveContract(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.DiscontinuousPaused, paused.DiscontinuousStatus)
	require.Len(t, paused.PauseHistory, 1)
	assert.Nil(t, paused.PauseHistory[0].EndDate)
	assert.Equal(t, "fin de campaña", paused.PauseHistory[0].Reason)
	assert.True(t, engine.IsCurrentlyPaused(paused.PauseHistory))

	// WHEN a resume arrives
	err = s.AddPauseEvent(ctx, emp.ID, engine.PauseHistoryEntry{
		Action:    engine.ActionResume,
		StartDate: engine.NewDate(2024, time.September, 1),
	})
	require.NoError(t, err)

	// THEN the open pause is closed at the resume date
	resumed, err := s.ActiveContract(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.DiscontinuousActive, resumed.DiscontinuousStatus)
	require.Len(t, resumed.PauseHistory, 2)
	require.NotNil(t, resumed.PauseHistory[0].EndDate)
	assert.True(t, resumed.PauseHistory[0].EndDate.Equal(engine.NewDate(2024, time.September, 1)))
	assert.False(t, engine.IsCurrentlyPaused(resumed.PauseHistory))
}

func TestLeaveRequests_YearFilterAndRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	emp := seedEmployee(t, s, fullTime(engine.NewDate(2023, time.January, 1)))

	submitted := time.Date(2024, time.February, 1, 9, 30, 0, 0, time.UTC)
	_, err := s.CreateLeaveRequest(ctx, emp.ID, engine.LeaveRequest{
		Status:      engine.RequestApproved,
		StartDate:   engine.NewDate(2024, time.March, 4),
		EndDate:     engine.NewDate(2024, time.March, 8),
		WorkingDays: decimal.NewFromInt(5),
		SubmittedAt: &submitted,
	})
	require.NoError(t, err)
	_, err = s.CreateLeaveRequest(ctx, emp.ID, engine.LeaveRequest{
		Status:           engine.RequestPending,
		StartDate:        engine.NewDate(2023, time.December, 27),
		EndDate:          engine.NewDate(2024, time.January, 3),
		EffectiveMinutes: 1920,
	})
	require.NoError(t, err)
	_, err = s.CreateLeaveRequest(ctx, emp.ID, engine.LeaveRequest{
		Status:    engine.RequestApproved,
		StartDate: engine.NewDate(2023, time.August, 7),
		EndDate:   engine.NewDate(2023, time.August, 11),
	})
	require.NoError(t, err)

	// 2024 sees the March request and the straddling one, not August 2023.
	got, err := s.LeaveRequests(ctx, emp.ID, 2024)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, engine.RequestPending, got[0].Status)
	assert.Equal(t, int64(1920), got[0].EffectiveMinutes)
	assert.Equal(t, engine.RequestApproved, got[1].Status)
	assert.True(t, got[1].WorkingDays.Equal(decimal.NewFromInt(5)))
	require.NotNil(t, got[1].SubmittedAt)
	assert.True(t, got[1].SubmittedAt.Equal(submitted))
}

func TestAdjustments_Filter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	emp := seedEmployee(t, s, fullTime(engine.NewDate(2023, time.January, 1)))

	_, err := s.CreateAdjustment(ctx, emp.ID, engine.Adjustment{Days: decimal.NewFromInt(2), Year: 2024, Reason: "antigüedad"})
	require.NoError(t, err)
	_, err = s.CreateAdjustment(ctx, emp.ID, engine.Adjustment{Days: decimal.NewFromInt(1), Recurring: true, StartYear: 2023})
	require.NoError(t, err)
	_, err = s.CreateAdjustment(ctx, emp.ID, engine.Adjustment{Days: decimal.NewFromInt(9), Year: 2026})
	require.NoError(t, err)

	got, err := s.Adjustments(ctx, emp.ID, 2024)
	require.NoError(t, err)
	require.Len(t, got, 2)
	total := decimal.Zero
	for _, adj := range got {
		assert.True(t, adj.AppliesTo(2024))
		total = total.Add(adj.Days)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(3)))
}

func TestBalanceOverSQLiteStore(t *testing.T) {
	// End to end: the engine computes a balance straight off the store.
	s := newTestStore(t)
	ctx := context.Background()
	emp := seedEmployee(t, s, fullTime(engine.NewDate(2024, time.January, 1)))

	submitted := time.Date(2024, time.February, 1, 9, 0, 0, 0, time.UTC)
	_, err := s.CreateLeaveRequest(ctx, emp.ID, engine.LeaveRequest{
		Status:      engine.RequestApproved,
		StartDate:   engine.NewDate(2024, time.March, 4),
		EndDate:     engine.NewDate(2024, time.March, 8),
		WorkingDays: decimal.NewFromInt(5),
		SubmittedAt: &submitted,
	})
	require.NoError(t, err)

	service := engine.NewService(s, nil)
	cutoff := engine.NewDate(2024, time.December, 31)
	opts := engine.DefaultOptions()
	opts.CutoffDate = &cutoff
	opts.Year = 2024

	balance, err := service.CalculateVacationBalance(ctx, emp.ID, opts)
	require.NoError(t, err)
	assert.Equal(t, int64(11040), balance.AccruedMinutes)
	assert.Equal(t, int64(2400), balance.UsedMinutes)
	assert.Equal(t, int64(8640), balance.AvailableMinutes)
	assert.Equal(t, "18", balance.AvailableDays.String())
}
