/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the engine's domain
  model from the external contract. Day amounts cross the wire as floats;
  minutes stay integral.

VALIDATION:
  Request types carry validator/v10 struct tags; handlers run the shared
  validator before touching the engine.
*/
package api

import (
	"time"

	"github.com/nominalabs/vacation-engine/engine"
	"github.com/nominalabs/vacation-engine/policy"
)

const dateLayout = "2006-01-02"

// =============================================================================
// RESPONSE TYPES
// =============================================================================

type EmployeeDTO struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organizationId"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
}

func toEmployeeDTO(e engine.Employee) EmployeeDTO {
	return EmployeeDTO{ID: e.ID, OrganizationID: e.OrganizationID, Name: e.Name, Email: e.Email}
}

type BalanceDTO struct {
	EmployeeID string `json:"employeeId"`
	Year       int    `json:"year"`

	AnnualAllowanceDays float64 `json:"annualAllowanceDays"`

	AccruedDays    float64 `json:"accruedDays"`
	AccruedMinutes int64   `json:"accruedMinutes"`

	UsedDays    float64 `json:"usedDays"`
	UsedMinutes int64   `json:"usedMinutes"`

	PendingDays    float64 `json:"pendingDays"`
	PendingMinutes int64   `json:"pendingMinutes"`

	CarryoverDays    float64 `json:"carryoverDays"`
	CarryoverMinutes int64   `json:"carryoverMinutes"`

	AvailableDays    float64 `json:"availableDays"`
	AvailableMinutes int64   `json:"availableMinutes"`

	WorkdayMinutes int `json:"workdayMinutes"`

	DisplayLabel        string `json:"displayLabel"`
	ContractType        string `json:"contractType"`
	DiscontinuousStatus string `json:"discontinuousStatus,omitempty"`

	RoundingUnit float64 `json:"roundingUnit"`
	RoundingMode string  `json:"roundingMode"`
}

func toBalanceDTO(b *engine.VacationBalance) BalanceDTO {
	return BalanceDTO{
		EmployeeID:          b.EmployeeID,
		Year:                b.Year,
		AnnualAllowanceDays: b.AnnualAllowanceDays.InexactFloat64(),
		AccruedDays:         b.AccruedDays.InexactFloat64(),
		AccruedMinutes:      b.AccruedMinutes,
		UsedDays:            b.UsedDays.InexactFloat64(),
		UsedMinutes:         b.UsedMinutes,
		PendingDays:         b.PendingDays.InexactFloat64(),
		PendingMinutes:      b.PendingMinutes,
		CarryoverDays:       b.CarryoverDays.InexactFloat64(),
		CarryoverMinutes:    b.CarryoverMinutes,
		AvailableDays:       b.AvailableDays.InexactFloat64(),
		AvailableMinutes:    b.AvailableMinutes,
		WorkdayMinutes:      b.WorkdayMinutes,
		DisplayLabel:        b.DisplayLabel,
		ContractType:        string(b.ContractType),
		DiscontinuousStatus: string(b.DiscontinuousStatus),
		RoundingUnit:        b.RoundingUnit.InexactFloat64(),
		RoundingMode:        string(b.RoundingMode),
	}
}

type DisplayInfoDTO struct {
	Label               string `json:"label"`
	Sublabel            string `json:"sublabel"`
	ShowFrozenIndicator bool   `json:"showFrozenIndicator"`
	FrozenSince         string `json:"frozenSince,omitempty"`
}

func toDisplayInfoDTO(info *engine.VacationDisplayInfo) DisplayInfoDTO {
	dto := DisplayInfoDTO{
		Label:               info.Label,
		Sublabel:            info.Sublabel,
		ShowFrozenIndicator: info.ShowFrozenIndicator,
	}
	if info.FrozenSince != nil {
		dto.FrozenSince = info.FrozenSince.String()
	}
	return dto
}

type EligibilityDTO struct {
	CanRequest    bool    `json:"canRequest"`
	AvailableDays float64 `json:"availableDays"`
	Reason        string  `json:"reason,omitempty"`
}

type ContractDTO struct {
	ID                  string  `json:"id"`
	Type                string  `json:"type"`
	StartDate           string  `json:"startDate"`
	EndDate             string  `json:"endDate,omitempty"`
	WeeklyHours         float64 `json:"weeklyHours"`
	WorkingDaysPerWeek  int     `json:"workingDaysPerWeek"`
	WorkdayMinutes      int     `json:"workdayMinutes"`
	DiscontinuousStatus string  `json:"discontinuousStatus,omitempty"`
	PauseEntries        int     `json:"pauseEntries"`
}

func toContractDTO(c *engine.ContractInfo) ContractDTO {
	dto := ContractDTO{
		ID:                  c.ID,
		Type:                string(c.Type),
		StartDate:           c.StartDate.String(),
		WeeklyHours:         c.WeeklyHours.InexactFloat64(),
		WorkingDaysPerWeek:  c.WorkingDaysPerWeek,
		WorkdayMinutes:      c.WorkdayMinutes(),
		DiscontinuousStatus: string(c.DiscontinuousStatus),
		PauseEntries:        len(c.PauseHistory),
	}
	if c.EndDate != nil {
		dto.EndDate = c.EndDate.String()
	}
	return dto
}

type ErrorDTO struct {
	Error string `json:"error"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

type CreateEmployeeRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
}

type CreateOrganizationRequest struct {
	Name   string            `json:"name" validate:"required"`
	Policy policy.ConfigJSON `json:"policy"`
}

type CreateContractRequest struct {
	Type               string  `json:"type" validate:"required,oneof=ordinary temporary internship fixed_discontinuous"`
	StartDate          string  `json:"startDate" validate:"required"`
	EndDate            string  `json:"endDate,omitempty"`
	WeeklyHours        float64 `json:"weeklyHours" validate:"gt=0"`
	WorkingDaysPerWeek int     `json:"workingDaysPerWeek" validate:"gte=0,lte=7"`
	WorkdayMinutes     int     `json:"workdayMinutes,omitempty" validate:"gte=0"`
}

type PauseEventRequest struct {
	Action    string `json:"action" validate:"required,oneof=PAUSE RESUME"`
	StartDate string `json:"startDate" validate:"required"`
	Reason    string `json:"reason,omitempty"`
}

type CreateLeaveRequestRequest struct {
	Status           string  `json:"status" validate:"required,oneof=APPROVED PENDING REJECTED CANCELLED DRAFT"`
	StartDate        string  `json:"startDate" validate:"required"`
	EndDate          string  `json:"endDate" validate:"required"`
	EffectiveMinutes int64   `json:"effectiveMinutes,omitempty" validate:"gte=0"`
	DurationMinutes  int64   `json:"durationMinutes,omitempty" validate:"gte=0"`
	WorkingDays      float64 `json:"workingDays,omitempty" validate:"gte=0"`
	SubmittedAt      string  `json:"submittedAt,omitempty"`
}

type CreateAdjustmentRequest struct {
	Days      float64 `json:"days" validate:"required"`
	Year      int     `json:"year,omitempty"`
	Recurring bool    `json:"recurring,omitempty"`
	StartYear int     `json:"startYear,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

type CanRequestRequest struct {
	Days float64 `json:"days" validate:"gt=0"`
}

// parseDate parses a wire-format date.
func parseDate(s string) (engine.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return engine.Date{}, err
	}
	return engine.DateOf(t), nil
}
