// Package memstore provides an in-memory engine.Store for tests and demos.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/nominalabs/vacation-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu            sync.RWMutex
	employees     map[string]engine.Employee
	organizations map[string]engine.Organization
	contracts     map[string]engine.ContractInfo // keyed by employee ID
	requests      map[string][]engine.LeaveRequest
	adjustments   map[string][]engine.Adjustment
}

func NewMemory() *Memory {
	return &Memory{
		employees:     make(map[string]engine.Employee),
		organizations: make(map[string]engine.Organization),
		contracts:     make(map[string]engine.ContractInfo),
		requests:      make(map[string][]engine.LeaveRequest),
		adjustments:   make(map[string][]engine.Adjustment),
	}
}

var _ engine.Store = (*Memory)(nil)

// -----------------------------------------------------------------------------
// engine.Store reads
// -----------------------------------------------------------------------------

func (m *Memory) Employee(_ context.Context, id string) (*engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	emp, ok := m.employees[id]
	if !ok {
		return nil, engine.ErrEmployeeNotFound
	}
	return &emp, nil
}

func (m *Memory) Organization(_ context.Context, id string) (*engine.Organization, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	org, ok := m.organizations[id]
	if !ok {
		return nil, engine.ErrOrganizationNotFound
	}
	return &org, nil
}

func (m *Memory) ActiveContract(_ context.Context, employeeID string) (*engine.ContractInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	contract, ok := m.contracts[employeeID]
	if !ok {
		return nil, engine.ErrNoActiveContract
	}
	// Copy so callers cannot mutate shared pause history.
	out := contract
	out.PauseHistory = append([]engine.PauseHistoryEntry(nil), contract.PauseHistory...)
	return &out, nil
}

func (m *Memory) LeaveRequests(_ context.Context, employeeID string, year int) ([]engine.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	yearStart := engine.StartOfYear(year)
	yearEnd := engine.EndOfYear(year)
	var out []engine.LeaveRequest
	for _, req := range m.requests[employeeID] {
		if req.EndDate.Before(yearStart) || req.StartDate.After(yearEnd) {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func (m *Memory) Adjustments(_ context.Context, employeeID string, year int) ([]engine.Adjustment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Adjustment
	for _, adj := range m.adjustments[employeeID] {
		if adj.AppliesTo(year) {
			out = append(out, adj)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Seeding helpers (test/demo writes)
// -----------------------------------------------------------------------------

func (m *Memory) PutOrganization(org engine.Organization) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.organizations[org.ID] = org
}

func (m *Memory) PutEmployee(emp engine.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[emp.ID] = emp
}

func (m *Memory) PutContract(employeeID string, contract engine.ContractInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sort.SliceStable(contract.PauseHistory, func(i, j int) bool {
		return contract.PauseHistory[i].StartDate.Before(contract.PauseHistory[j].StartDate)
	})
	m.contracts[employeeID] = contract
}

func (m *Memory) AddLeaveRequest(employeeID string, req engine.LeaveRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[employeeID] = append(m.requests[employeeID], req)
}

func (m *Memory) AddAdjustment(employeeID string, adj engine.Adjustment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments[employeeID] = append(m.adjustments[employeeID], adj)
}
