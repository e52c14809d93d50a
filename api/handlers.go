/*
handlers.go - HTTP handlers for the vacation balance service

ENDPOINTS:
  Organizations:
    POST /api/organizations                   Create org with PTO policy
    PUT  /api/organizations/{id}/pto-policy   Replace the PTO policy
    GET  /api/organizations/{id}/employees    List employees

  Employees:
    POST /api/employees                       Create employee
    GET  /api/employees/{id}                  Get employee
    PUT  /api/employees/{id}/contract         Set the active contract
    POST /api/employees/{id}/pause-events     Append a PAUSE/RESUME event
    POST /api/employees/{id}/requests         Record a leave request
    POST /api/employees/{id}/adjustments      Record a balance adjustment

  Balances:
    GET  /api/employees/{id}/balance          Vacation balance
         ?year=2025&cutoff=2025-06-30&mode=ACCRUED&pending=false
    GET  /api/employees/{id}/balance/settlement?date=2025-06-30
    GET  /api/employees/{id}/vacation         Display info
    POST /api/employees/{id}/can-request      Eligibility check

ERROR HANDLING:
  Engine NotFound errors map to 404; validation problems to 400; anything
  else to 500. Responses are {"error": "..."} JSON.
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/nominalabs/vacation-engine/engine"
	"github.com/nominalabs/vacation-engine/policy"
	"github.com/nominalabs/vacation-engine/store/sqlite"
)

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Service  *engine.Service
	Log      *zap.Logger
	validate *validator.Validate
}

func NewHandler(store *sqlite.Store, service *engine.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:    store,
		Service:  service,
		Log:      log,
		validate: validator.New(),
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Log.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if engine.IsNotFound(err) {
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		h.Log.Error("request failed", zap.Error(err))
	}
	h.respondJSON(w, status, ErrorDTO{Error: err.Error()})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.respondJSON(w, http.StatusBadRequest, ErrorDTO{Error: msg})
}

// decodeAndValidate decodes the JSON body into dst and runs struct validation.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.badRequest(w, "invalid JSON body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.badRequest(w, err.Error())
		return false
	}
	return true
}

// =============================================================================
// ORGANIZATION HANDLERS
// =============================================================================

func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req CreateOrganizationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	raw, err := policy.Marshal(req.Policy)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	org, err := h.Store.CreateOrganization(r.Context(), req.Name, raw)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]string{"id": org.ID, "name": org.Name})
}

func (h *Handler) SetPTOPolicy(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "id")
	var cfg policy.ConfigJSON
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.badRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	raw, err := policy.Marshal(cfg)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if err := h.Store.SetPTOPolicy(r.Context(), orgID, raw); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "id")
	employees, err := h.Store.ListEmployees(r.Context(), orgID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	out := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeDTO(e))
	}
	h.respondJSON(w, http.StatusOK, out)
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	emp, err := h.Store.CreateEmployee(r.Context(), req.OrganizationID, req.Name, req.Email)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, toEmployeeDTO(*emp))
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.Employee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

func (h *Handler) SetContract(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	var req CreateContractRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		h.badRequest(w, "startDate: "+err.Error())
		return
	}
	contract := engine.ContractInfo{
		Type:                   engine.ContractType(req.Type),
		StartDate:              start,
		WeeklyHours:            decimal.NewFromFloat(req.WeeklyHours),
		WorkingDaysPerWeek:     req.WorkingDaysPerWeek,
		WorkdayMinutesOverride: req.WorkdayMinutes,
	}
	if req.EndDate != "" {
		end, err := parseDate(req.EndDate)
		if err != nil {
			h.badRequest(w, "endDate: "+err.Error())
			return
		}
		contract.EndDate = &end
	}
	if contract.Type == engine.ContractFixedDiscontinuous {
		contract.DiscontinuousStatus = engine.DiscontinuousActive
	}
	stored, err := h.Store.CreateContract(r.Context(), employeeID, contract)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, toContractDTO(stored))
}

func (h *Handler) AddPauseEvent(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	var req PauseEventRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		h.badRequest(w, "startDate: "+err.Error())
		return
	}
	entry := engine.PauseHistoryEntry{
		Action:    engine.PauseAction(req.Action),
		StartDate: start,
		Reason:    req.Reason,
	}
	if err := h.Store.AddPauseEvent(r.Context(), employeeID, entry); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}

func (h *Handler) CreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	var req CreateLeaveRequestRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		h.badRequest(w, "startDate: "+err.Error())
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		h.badRequest(w, "endDate: "+err.Error())
		return
	}
	if end.Before(start) {
		h.badRequest(w, "endDate before startDate")
		return
	}
	leave := engine.LeaveRequest{
		Status:           engine.RequestStatus(req.Status),
		StartDate:        start,
		EndDate:          end,
		EffectiveMinutes: req.EffectiveMinutes,
		DurationMinutes:  req.DurationMinutes,
		WorkingDays:      decimal.NewFromFloat(req.WorkingDays),
	}
	if req.SubmittedAt != "" {
		t, err := time.Parse(time.RFC3339, req.SubmittedAt)
		if err != nil {
			h.badRequest(w, "submittedAt: "+err.Error())
			return
		}
		leave.SubmittedAt = &t
	} else {
		now := time.Now().UTC()
		leave.SubmittedAt = &now
	}
	stored, err := h.Store.CreateLeaveRequest(r.Context(), employeeID, leave)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]string{"id": stored.ID})
}

func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	var req CreateAdjustmentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	adj := engine.Adjustment{
		Days:      decimal.NewFromFloat(req.Days),
		Year:      req.Year,
		Recurring: req.Recurring,
		StartYear: req.StartYear,
		Reason:    req.Reason,
	}
	stored, err := h.Store.CreateAdjustment(r.Context(), employeeID, adj)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]string{"id": stored.ID})
}

// =============================================================================
// BALANCE HANDLERS
// =============================================================================

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	opts := engine.DefaultOptions()

	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			h.badRequest(w, "year: "+err.Error())
			return
		}
		opts.Year = year
	}
	if v := q.Get("cutoff"); v != "" {
		cutoff, err := parseDate(v)
		if err != nil {
			h.badRequest(w, "cutoff: "+err.Error())
			return
		}
		opts.CutoffDate = &cutoff
	}
	if v := q.Get("mode"); v != "" {
		switch engine.AccrualMode(v) {
		case engine.AccrualAssigned, engine.AccrualAccrued:
			opts.AccrualMode = engine.AccrualMode(v)
		default:
			h.badRequest(w, "mode must be ASSIGNED or ACCRUED")
			return
		}
	}
	if v := q.Get("pending"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			h.badRequest(w, "pending: "+err.Error())
			return
		}
		opts.IncludePending = include
	}
	if v := q.Get("carryover"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			h.badRequest(w, "carryover: "+err.Error())
			return
		}
		opts.IncludeCarryover = include
	}

	balance, err := h.Service.CalculateVacationBalance(r.Context(), employeeID, opts)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toBalanceDTO(balance))
}

func (h *Handler) GetSettlementBalance(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.badRequest(w, "date query parameter is required")
		return
	}
	date, err := parseDate(dateStr)
	if err != nil {
		h.badRequest(w, "date: "+err.Error())
		return
	}
	balance, err := h.Service.CalculateSettlementBalance(r.Context(), employeeID, date)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toBalanceDTO(balance))
}

func (h *Handler) GetVacationDisplayInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.Service.GetVacationDisplayInfo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toDisplayInfoDTO(info))
}

func (h *Handler) CanRequestVacation(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	var req CanRequestRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	result := h.Service.CanRequestVacation(r.Context(), employeeID, decimal.NewFromFloat(req.Days))
	h.respondJSON(w, http.StatusOK, EligibilityDTO{
		CanRequest:    result.CanRequest,
		AvailableDays: result.AvailableDays.InexactFloat64(),
		Reason:        result.Reason,
	})
}
