package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nominalabs/vacation-engine/api"
	"github.com/nominalabs/vacation-engine/engine"
	"github.com/nominalabs/vacation-engine/store/sqlite"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type harness struct {
	t      *testing.T
	router http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	service := engine.NewService(store, nil)
	return &harness{t: t, router: api.NewRouter(api.NewHandler(store, service, nil))}
}

func (h *harness) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) decode(rec *httptest.ResponseRecorder, into interface{}) {
	h.t.Helper()
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), into))
}

type orgResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *harness) createOrg(policy map[string]interface{}) string {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/organizations", map[string]interface{}{
		"name":   "Demo S.L.",
		"policy": policy,
	})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	var org orgResponse
	h.decode(rec, &org)
	return org.ID
}

func (h *harness) createEmployee(orgID, name string) string {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/employees", map[string]interface{}{
		"organizationId": orgID,
		"name":           name,
	})
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
	var emp api.EmployeeDTO
	h.decode(rec, &emp)
	return emp.ID
}

func (h *harness) setContract(empID string, contract map[string]interface{}) {
	h.t.Helper()
	rec := h.do(http.MethodPut, "/api/employees/"+empID+"/contract", contract)
	require.Equal(h.t, http.StatusCreated, rec.Code, rec.Body.String())
}

func standardPolicy() map[string]interface{} {
	return map[string]interface{}{
		"annual_days":   23,
		"rounding_unit": 1,
	}
}

func ordinaryContractBody(start string) map[string]interface{} {
	return map[string]interface{}{
		"type":               "ordinary",
		"startDate":          start,
		"weeklyHours":        40,
		"workingDaysPerWeek": 5,
	}
}

// =============================================================================
// TESTS
// =============================================================================

func TestCreateOrganization_Validation(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/organizations", map[string]interface{}{
		"policy": standardPolicy(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPost, "/api/organizations", map[string]interface{}{
		"name":   "Broken",
		"policy": map[string]interface{}{"annual_days": 0},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmployeeLifecycle(t *testing.T) {
	h := newHarness(t)
	orgID := h.createOrg(standardPolicy())

	empID := h.createEmployee(orgID, "Ana García")

	rec := h.do(http.MethodGet, "/api/employees/"+empID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var emp api.EmployeeDTO
	h.decode(rec, &emp)
	assert.Equal(t, "Ana García", emp.Name)
	assert.Equal(t, orgID, emp.OrganizationID)

	rec = h.do(http.MethodGet, "/api/organizations/"+orgID+"/employees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []api.EmployeeDTO
	h.decode(rec, &list)
	require.Len(t, list, 1)

	rec = h.do(http.MethodGet, "/api/employees/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBalanceEndpoint(t *testing.T) {
	// GIVEN a full-year ordinary contract with one approved 5-day request
	h := newHarness(t)
	orgID := h.createOrg(standardPolicy())
	empID := h.createEmployee(orgID, "Ana García")
	h.setContract(empID, ordinaryContractBody("2024-01-01"))

	rec := h.do(http.MethodPost, "/api/employees/"+empID+"/requests", map[string]interface{}{
		"status":      "APPROVED",
		"startDate":   "2024-03-04",
		"endDate":     "2024-03-08",
		"workingDays": 5,
		"submittedAt": "2024-02-01T09:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// WHEN fetching the 2024 year-end balance
	rec = h.do(http.MethodGet, fmt.Sprintf("/api/employees/%s/balance?year=2024&cutoff=2024-12-31", empID), nil)

	// THEN 18 of 23 days remain
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var balance api.BalanceDTO
	h.decode(rec, &balance)
	assert.Equal(t, 2024, balance.Year)
	assert.Equal(t, float64(23), balance.AnnualAllowanceDays)
	assert.Equal(t, int64(2400), balance.UsedMinutes)
	assert.Equal(t, float64(18), balance.AvailableDays)
	assert.Equal(t, int64(8640), balance.AvailableMinutes)
	assert.Equal(t, "Vacaciones asignadas", balance.DisplayLabel)

	// Excluding pending is a query-param concern only.
	rec = h.do(http.MethodGet, fmt.Sprintf("/api/employees/%s/balance?year=2024&cutoff=2024-12-31&pending=false", empID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// An unparseable cutoff is rejected.
	rec = h.do(http.MethodGet, "/api/employees/"+empID+"/balance?cutoff=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettlementEndpoint(t *testing.T) {
	h := newHarness(t)
	orgID := h.createOrg(map[string]interface{}{"annual_days": 23, "rounding_unit": 0.5})
	empID := h.createEmployee(orgID, "Ana García")
	h.setContract(empID, ordinaryContractBody("2024-01-01"))

	rec := h.do(http.MethodGet, "/api/employees/"+empID+"/balance/settlement?date=2024-06-30", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var balance api.BalanceDTO
	h.decode(rec, &balance)
	assert.Equal(t, int64(5491), balance.AccruedMinutes)
	assert.Equal(t, 11.5, balance.AvailableDays)

	// The settlement date is mandatory.
	rec = h.do(http.MethodGet, "/api/employees/"+empID+"/balance/settlement", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPauseEventsAndDisplayInfo(t *testing.T) {
	// GIVEN a fixed-discontinuous contract
	h := newHarness(t)
	orgID := h.createOrg(standardPolicy())
	empID := h.createEmployee(orgID, "Luis Ortega")
	h.setContract(empID, map[string]interface{}{
		"type":               "fixed_discontinuous",
		"startDate":          "2024-01-01",
		"weeklyHours":        40,
		"workingDaysPerWeek": 5,
	})

	rec := h.do(http.MethodGet, "/api/employees/"+empID+"/vacation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info api.DisplayInfoDTO
	h.decode(rec, &info)
	assert.Equal(t, "Vacaciones devengadas", info.Label)
	assert.False(t, info.ShowFrozenIndicator)

	// WHEN the season ends and the contract is paused
	rec = h.do(http.MethodPost, "/api/employees/"+empID+"/pause-events", map[string]interface{}{
		"action":    "PAUSE",
		"startDate": "2024-06-01",
		"reason":    "fin de campaña",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// THEN the display info freezes and requests are refused
	rec = h.do(http.MethodGet, "/api/employees/"+empID+"/vacation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	h.decode(rec, &info)
	assert.True(t, info.ShowFrozenIndicator)
	assert.Equal(t, "2024-06-01", info.FrozenSince)

	rec = h.do(http.MethodPost, "/api/employees/"+empID+"/can-request", map[string]interface{}{"days": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	var eligibility api.EligibilityDTO
	h.decode(rec, &eligibility)
	assert.False(t, eligibility.CanRequest)
	assert.Equal(t, "contract is currently paused", eligibility.Reason)
}

func TestCanRequestEndpoint(t *testing.T) {
	h := newHarness(t)
	orgID := h.createOrg(standardPolicy())
	empID := h.createEmployee(orgID, "Ana García")
	h.setContract(empID, ordinaryContractBody("2020-01-01"))

	rec := h.do(http.MethodPost, "/api/employees/"+empID+"/can-request", map[string]interface{}{"days": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	var eligibility api.EligibilityDTO
	h.decode(rec, &eligibility)
	assert.True(t, eligibility.CanRequest)
	assert.Equal(t, float64(23), eligibility.AvailableDays)

	rec = h.do(http.MethodPost, "/api/employees/"+empID+"/can-request", map[string]interface{}{"days": 30})
	require.Equal(t, http.StatusOK, rec.Code)
	h.decode(rec, &eligibility)
	assert.False(t, eligibility.CanRequest)
	assert.Equal(t, "insufficient vacation balance", eligibility.Reason)

	// Zero or negative day counts fail validation.
	rec = h.do(http.MethodPost, "/api/employees/"+empID+"/can-request", map[string]interface{}{"days": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdjustmentEndpoint(t *testing.T) {
	h := newHarness(t)
	orgID := h.createOrg(standardPolicy())
	empID := h.createEmployee(orgID, "Ana García")
	h.setContract(empID, ordinaryContractBody("2024-01-01"))

	rec := h.do(http.MethodPost, "/api/employees/"+empID+"/adjustments", map[string]interface{}{
		"days":   2,
		"year":   2024,
		"reason": "antigüedad",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/employees/%s/balance?year=2024&cutoff=2024-12-31", empID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balance api.BalanceDTO
	h.decode(rec, &balance)
	assert.Equal(t, float64(25), balance.AnnualAllowanceDays)
	assert.Equal(t, float64(25), balance.AvailableDays)
}

func TestSeedEndpoint(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/seed", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
