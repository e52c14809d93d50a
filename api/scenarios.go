/*
scenarios.go - Demo data seeding

Installs a small demo organization so the balance endpoints have something
to show: one standard mid-year hire, one fixed-discontinuous employee with
a summer pause, plus a few leave requests and an adjustment.
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nominalabs/vacation-engine/engine"
	"github.com/nominalabs/vacation-engine/policy"
)

// SeedDemo loads the demo scenario and returns the created IDs.
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	ids, err := h.seedDemo(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, ids)
}

func (h *Handler) seedDemo(ctx context.Context) (map[string]string, error) {
	year := time.Now().Year()

	policyJSON, err := policy.Marshal(policy.ConfigJSON{
		AnnualDays:    23,
		CarryoverMode: string(engine.CarryoverUntilDate),
		UsageDeadline: &policy.DeadlineJSON{Month: 3, Day: 31},
		RoundingUnit:  0.5,
		RoundingMode:  string(engine.RoundNearest),
	})
	if err != nil {
		return nil, err
	}
	org, err := h.Store.CreateOrganization(ctx, "Demo S.L.", policyJSON)
	if err != nil {
		return nil, err
	}

	// Standard contract, hired July 1st.
	ana, err := h.Store.CreateEmployee(ctx, org.ID, "Ana García", "ana@demo.example")
	if err != nil {
		return nil, err
	}
	if _, err := h.Store.CreateContract(ctx, ana.ID, engine.ContractInfo{
		Type:               engine.ContractOrdinary,
		StartDate:          engine.NewDate(year, time.July, 1),
		WeeklyHours:        decimal.NewFromInt(40),
		WorkingDaysPerWeek: 5,
	}); err != nil {
		return nil, err
	}
	submitted := time.Date(year, time.July, 20, 9, 0, 0, 0, time.UTC)
	if _, err := h.Store.CreateLeaveRequest(ctx, ana.ID, engine.LeaveRequest{
		Status:      engine.RequestApproved,
		StartDate:   engine.NewDate(year, time.August, 4),
		EndDate:     engine.NewDate(year, time.August, 8),
		WorkingDays: decimal.NewFromInt(5),
		SubmittedAt: &submitted,
	}); err != nil {
		return nil, err
	}
	if _, err := h.Store.CreateAdjustment(ctx, ana.ID, engine.Adjustment{
		Days:   decimal.NewFromInt(1),
		Year:   year,
		Reason: "convenio: día extra por antigüedad",
	}); err != nil {
		return nil, err
	}

	// Fixed-discontinuous contract with a summer pause.
	luis, err := h.Store.CreateEmployee(ctx, org.ID, "Luis Ortega", "luis@demo.example")
	if err != nil {
		return nil, err
	}
	if _, err := h.Store.CreateContract(ctx, luis.ID, engine.ContractInfo{
		Type:                engine.ContractFixedDiscontinuous,
		StartDate:           engine.NewDate(year, time.January, 1),
		WeeklyHours:         decimal.NewFromInt(40),
		WorkingDaysPerWeek:  5,
		DiscontinuousStatus: engine.DiscontinuousActive,
	}); err != nil {
		return nil, err
	}
	if err := h.Store.AddPauseEvent(ctx, luis.ID, engine.PauseHistoryEntry{
		Action:    engine.ActionPause,
		StartDate: engine.NewDate(year, time.June, 1),
		Reason:    "fin de campaña",
	}); err != nil {
		return nil, err
	}

	h.Log.Info("demo scenario seeded",
		zap.String("organization_id", org.ID),
		zap.String("standard_employee_id", ana.ID),
		zap.String("discontinuous_employee_id", luis.ID))

	return map[string]string{
		"organizationId":          org.ID,
		"standardEmployeeId":      ana.ID,
		"discontinuousEmployeeId": luis.ID,
	}, nil
}
