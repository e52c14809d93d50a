/*
Package sqlite provides the SQLite-backed implementation of engine.Store.

PURPOSE:
  Persists the records the balance engine reads: organizations (with their
  PTO policy JSON), employees, contracts with pause history, leave requests,
  and balance adjustments. The same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

TABLES:
  organizations            id, name, PTO policy JSON
  employees                one row per employee, linked to an organization
  contracts                at most one active contract per employee
  contract_pause_history   PAUSE/RESUME events ordered by start date
  leave_requests           absence requests with status and duration fields
  balance_adjustments      manual per-year and recurring allowance changes

DATES:
  Stored as "2006-01-02" TEXT. The engine only does date-only arithmetic,
  so no timezone or sub-day precision is persisted for calendar fields.

WAL MODE:
  Opened with WAL so balance reads do not block writes.

USAGE:
  store, err := sqlite.New("./data/vacations.db")   // ":memory:" for tests
  svc := engine.NewService(store, logger)
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/nominalabs/vacation-engine/engine"
	"github.com/nominalabs/vacation-engine/policy"
)

const dateLayout = "2006-01-02"

// Store implements engine.Store plus the writes the HTTP API needs.
type Store struct {
	db *sqlx.DB
}

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS organizations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		pto_policy TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		organization_id TEXT NOT NULL REFERENCES organizations(id),
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_employees_org ON employees(organization_id);

	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		contract_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		weekly_hours TEXT NOT NULL,
		working_days_per_week INTEGER NOT NULL,
		workday_minutes INTEGER,
		discontinuous_status TEXT,
		active INTEGER NOT NULL DEFAULT 1
	);
	-- One active contract per employee
	CREATE UNIQUE INDEX IF NOT EXISTS idx_contracts_active_employee
		ON contracts(employee_id) WHERE active = 1;

	CREATE TABLE IF NOT EXISTS contract_pause_history (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id),
		action TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		reason TEXT NOT NULL DEFAULT '',
		performed_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pause_history_contract
		ON contract_pause_history(contract_id, start_date);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		status TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		effective_minutes INTEGER NOT NULL DEFAULT 0,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		working_days TEXT NOT NULL DEFAULT '0',
		submitted_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee_dates
		ON leave_requests(employee_id, start_date, end_date);

	CREATE TABLE IF NOT EXISTS balance_adjustments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		days TEXT NOT NULL,
		year INTEGER NOT NULL DEFAULT 0,
		recurring INTEGER NOT NULL DEFAULT 0,
		start_year INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		reason TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_adjustments_employee
		ON balance_adjustments(employee_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ROW TYPES
// =============================================================================

type organizationRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	PTOPolicy string `db:"pto_policy"`
}

type employeeRow struct {
	ID             string `db:"id"`
	OrganizationID string `db:"organization_id"`
	Name           string `db:"name"`
	Email          string `db:"email"`
	CreatedAt      string `db:"created_at"`
}

type contractRow struct {
	ID                  string         `db:"id"`
	EmployeeID          string         `db:"employee_id"`
	ContractType        string         `db:"contract_type"`
	StartDate           string         `db:"start_date"`
	EndDate             sql.NullString `db:"end_date"`
	WeeklyHours         string         `db:"weekly_hours"`
	WorkingDaysPerWeek  int            `db:"working_days_per_week"`
	WorkdayMinutes      sql.NullInt64  `db:"workday_minutes"`
	DiscontinuousStatus sql.NullString `db:"discontinuous_status"`
	Active              bool           `db:"active"`
}

type pauseRow struct {
	ID          string         `db:"id"`
	ContractID  string         `db:"contract_id"`
	Action      string         `db:"action"`
	StartDate   string         `db:"start_date"`
	EndDate     sql.NullString `db:"end_date"`
	Reason      string         `db:"reason"`
	PerformedAt string         `db:"performed_at"`
}

type leaveRequestRow struct {
	ID               string         `db:"id"`
	EmployeeID       string         `db:"employee_id"`
	Status           string         `db:"status"`
	StartDate        string         `db:"start_date"`
	EndDate          string         `db:"end_date"`
	EffectiveMinutes int64          `db:"effective_minutes"`
	DurationMinutes  int64          `db:"duration_minutes"`
	WorkingDays      string         `db:"working_days"`
	SubmittedAt      sql.NullString `db:"submitted_at"`
}

type adjustmentRow struct {
	ID         string `db:"id"`
	EmployeeID string `db:"employee_id"`
	Days       string `db:"days"`
	Year       int    `db:"year"`
	Recurring  bool   `db:"recurring"`
	StartYear  int    `db:"start_year"`
	Active     bool   `db:"active"`
	Reason     string `db:"reason"`
}

// =============================================================================
// engine.Store READS
// =============================================================================

var _ engine.Store = (*Store)(nil)

func (s *Store) Employee(ctx context.Context, id string) (*engine.Employee, error) {
	var row employeeRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM employees WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query employee: %w", err)
	}
	return &engine.Employee{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		Name:           row.Name,
		Email:          row.Email,
	}, nil
}

func (s *Store) Organization(ctx context.Context, id string) (*engine.Organization, error) {
	var row organizationRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM organizations WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query organization: %w", err)
	}
	pol, err := policy.Parse([]byte(row.PTOPolicy))
	if err != nil {
		return nil, fmt.Errorf("organization %s: %w", id, err)
	}
	return &engine.Organization{ID: row.ID, Name: row.Name, Policy: pol}, nil
}

func (s *Store) ActiveContract(ctx context.Context, employeeID string) (*engine.ContractInfo, error) {
	var row contractRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM contracts WHERE employee_id = ? AND active = 1`, employeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, engine.ErrNoActiveContract
	}
	if err != nil {
		return nil, fmt.Errorf("query active contract: %w", err)
	}

	var pauses []pauseRow
	err = s.db.SelectContext(ctx, &pauses,
		`SELECT * FROM contract_pause_history WHERE contract_id = ? ORDER BY start_date ASC`, row.ID)
	if err != nil {
		return nil, fmt.Errorf("query pause history: %w", err)
	}

	return toContractInfo(row, pauses)
}

func (s *Store) LeaveRequests(ctx context.Context, employeeID string, year int) ([]engine.LeaveRequest, error) {
	yearStart := engine.StartOfYear(year).String()
	yearEnd := engine.EndOfYear(year).String()

	var rows []leaveRequestRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM leave_requests
		 WHERE employee_id = ? AND end_date >= ? AND start_date <= ?
		 ORDER BY start_date ASC`,
		employeeID, yearStart, yearEnd)
	if err != nil {
		return nil, fmt.Errorf("query leave requests: %w", err)
	}

	out := make([]engine.LeaveRequest, 0, len(rows))
	for _, row := range rows {
		req, err := toLeaveRequest(row)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

func (s *Store) Adjustments(ctx context.Context, employeeID string, year int) ([]engine.Adjustment, error) {
	var rows []adjustmentRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM balance_adjustments
		 WHERE employee_id = ? AND active = 1
		   AND ((recurring = 0 AND year = ?) OR (recurring = 1 AND start_year <= ?))`,
		employeeID, year, year)
	if err != nil {
		return nil, fmt.Errorf("query adjustments: %w", err)
	}

	out := make([]engine.Adjustment, 0, len(rows))
	for _, row := range rows {
		days, err := decimal.NewFromString(row.Days)
		if err != nil {
			return nil, fmt.Errorf("adjustment %s: bad days %q: %w", row.ID, row.Days, err)
		}
		out = append(out, engine.Adjustment{
			ID:        row.ID,
			Days:      days,
			Year:      row.Year,
			Recurring: row.Recurring,
			StartYear: row.StartYear,
			Reason:    row.Reason,
		})
	}
	return out, nil
}

// =============================================================================
// WRITES (API surface)
// =============================================================================

func (s *Store) CreateOrganization(ctx context.Context, name string, policyJSON []byte) (*engine.Organization, error) {
	if _, err := policy.Parse(policyJSON); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, pto_policy) VALUES (?, ?, ?)`,
		id, name, string(policyJSON))
	if err != nil {
		return nil, fmt.Errorf("insert organization: %w", err)
	}
	return s.Organization(ctx, id)
}

func (s *Store) SetPTOPolicy(ctx context.Context, organizationID string, policyJSON []byte) error {
	if _, err := policy.Parse(policyJSON); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE organizations SET pto_policy = ? WHERE id = ?`,
		string(policyJSON), organizationID)
	if err != nil {
		return fmt.Errorf("update PTO policy: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrOrganizationNotFound
	}
	return nil
}

func (s *Store) CreateEmployee(ctx context.Context, organizationID, name, email string) (*engine.Employee, error) {
	if _, err := s.Organization(ctx, organizationID); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (id, organization_id, name, email, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, organizationID, name, email, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert employee: %w", err)
	}
	return s.Employee(ctx, id)
}

func (s *Store) ListEmployees(ctx context.Context, organizationID string) ([]engine.Employee, error) {
	var rows []employeeRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM employees WHERE organization_id = ? ORDER BY name ASC`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	out := make([]engine.Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, engine.Employee{
			ID:             row.ID,
			OrganizationID: row.OrganizationID,
			Name:           row.Name,
			Email:          row.Email,
		})
	}
	return out, nil
}

// CreateContract stores a contract and marks it active, deactivating any
// previous active contract for the employee.
func (s *Store) CreateContract(ctx context.Context, employeeID string, contract engine.ContractInfo) (*engine.ContractInfo, error) {
	if _, err := s.Employee(ctx, employeeID); err != nil {
		return nil, err
	}
	if contract.ID == "" {
		contract.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE contracts SET active = 0 WHERE employee_id = ? AND active = 1`, employeeID); err != nil {
		return nil, fmt.Errorf("deactivate contracts: %w", err)
	}

	var endDate interface{}
	if contract.EndDate != nil {
		endDate = contract.EndDate.String()
	}
	var workday interface{}
	if contract.WorkdayMinutesOverride > 0 {
		workday = contract.WorkdayMinutesOverride
	}
	var status interface{}
	if contract.DiscontinuousStatus != "" {
		status = string(contract.DiscontinuousStatus)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO contracts
		 (id, employee_id, contract_type, start_date, end_date, weekly_hours,
		  working_days_per_week, workday_minutes, discontinuous_status, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		contract.ID, employeeID, string(contract.Type), contract.StartDate.String(), endDate,
		contract.WeeklyHours.String(), contract.WorkingDaysPerWeek, workday, status)
	if err != nil {
		return nil, fmt.Errorf("insert contract: %w", err)
	}

	for _, entry := range contract.PauseHistory {
		if err := insertPause(ctx, tx, contract.ID, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.ActiveContract(ctx, employeeID)
}

// AddPauseEvent appends a PAUSE/RESUME event to the employee's active
// contract. A RESUME also closes the open pause by setting its end date to
// the resume start date, keeping the "one open pause, last entry" invariant.
func (s *Store) AddPauseEvent(ctx context.Context, employeeID string, entry engine.PauseHistoryEntry) error {
	contract, err := s.ActiveContract(ctx, employeeID)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if entry.Action == engine.ActionResume {
		_, err = tx.ExecContext(ctx,
			`UPDATE contract_pause_history SET end_date = ?
			 WHERE contract_id = ? AND action = 'PAUSE' AND end_date IS NULL`,
			entry.StartDate.String(), contract.ID)
		if err != nil {
			return fmt.Errorf("close open pause: %w", err)
		}
	}
	if err := insertPause(ctx, tx, contract.ID, entry); err != nil {
		return err
	}

	status := engine.DiscontinuousActive
	if entry.Action == engine.ActionPause {
		status = engine.DiscontinuousPaused
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE contracts SET discontinuous_status = ? WHERE id = ?`,
		string(status), contract.ID); err != nil {
		return fmt.Errorf("update contract status: %w", err)
	}

	return tx.Commit()
}

func insertPause(ctx context.Context, tx *sqlx.Tx, contractID string, entry engine.PauseHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	performedAt := entry.PerformedAt
	if performedAt.IsZero() {
		performedAt = time.Now().UTC()
	}
	var endDate interface{}
	if entry.EndDate != nil {
		endDate = entry.EndDate.String()
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO contract_pause_history
		 (id, contract_id, action, start_date, end_date, reason, performed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, contractID, string(entry.Action), entry.StartDate.String(), endDate,
		entry.Reason, performedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert pause event: %w", err)
	}
	return nil
}

func (s *Store) CreateLeaveRequest(ctx context.Context, employeeID string, req engine.LeaveRequest) (*engine.LeaveRequest, error) {
	if _, err := s.Employee(ctx, employeeID); err != nil {
		return nil, err
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	var submittedAt interface{}
	if req.SubmittedAt != nil {
		submittedAt = req.SubmittedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leave_requests
		 (id, employee_id, status, start_date, end_date, effective_minutes,
		  duration_minutes, working_days, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, employeeID, string(req.Status), req.StartDate.String(), req.EndDate.String(),
		req.EffectiveMinutes, req.DurationMinutes, req.WorkingDays.String(), submittedAt)
	if err != nil {
		return nil, fmt.Errorf("insert leave request: %w", err)
	}
	return &req, nil
}

func (s *Store) CreateAdjustment(ctx context.Context, employeeID string, adj engine.Adjustment) (*engine.Adjustment, error) {
	if _, err := s.Employee(ctx, employeeID); err != nil {
		return nil, err
	}
	if adj.ID == "" {
		adj.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO balance_adjustments
		 (id, employee_id, days, year, recurring, start_year, active, reason)
		 VALUES (?, ?, ?, ?, ?, ?, 1, ?)`,
		adj.ID, employeeID, adj.Days.String(), adj.Year, adj.Recurring, adj.StartYear, adj.Reason)
	if err != nil {
		return nil, fmt.Errorf("insert adjustment: %w", err)
	}
	return &adj, nil
}

// =============================================================================
// ROW CONVERSION
// =============================================================================

func parseDate(s string) (engine.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return engine.Date{}, fmt.Errorf("bad date %q: %w", s, err)
	}
	return engine.DateOf(t), nil
}

func toContractInfo(row contractRow, pauses []pauseRow) (*engine.ContractInfo, error) {
	start, err := parseDate(row.StartDate)
	if err != nil {
		return nil, fmt.Errorf("contract %s: %w", row.ID, err)
	}
	weeklyHours, err := decimal.NewFromString(row.WeeklyHours)
	if err != nil {
		return nil, fmt.Errorf("contract %s: bad weekly_hours %q: %w", row.ID, row.WeeklyHours, err)
	}

	contract := engine.ContractInfo{
		ID:                 row.ID,
		Type:               engine.ContractType(row.ContractType),
		StartDate:          start,
		WeeklyHours:        weeklyHours,
		WorkingDaysPerWeek: row.WorkingDaysPerWeek,
	}
	if row.EndDate.Valid {
		end, err := parseDate(row.EndDate.String)
		if err != nil {
			return nil, fmt.Errorf("contract %s: %w", row.ID, err)
		}
		contract.EndDate = &end
	}
	if row.WorkdayMinutes.Valid {
		contract.WorkdayMinutesOverride = int(row.WorkdayMinutes.Int64)
	}
	if row.DiscontinuousStatus.Valid {
		contract.DiscontinuousStatus = engine.DiscontinuousStatus(row.DiscontinuousStatus.String)
	}

	for _, p := range pauses {
		entry, err := toPauseEntry(p)
		if err != nil {
			return nil, err
		}
		contract.PauseHistory = append(contract.PauseHistory, entry)
	}
	return &contract, nil
}

func toPauseEntry(row pauseRow) (engine.PauseHistoryEntry, error) {
	start, err := parseDate(row.StartDate)
	if err != nil {
		return engine.PauseHistoryEntry{}, fmt.Errorf("pause %s: %w", row.ID, err)
	}
	entry := engine.PauseHistoryEntry{
		ID:        row.ID,
		Action:    engine.PauseAction(row.Action),
		StartDate: start,
		Reason:    row.Reason,
	}
	if row.EndDate.Valid {
		end, err := parseDate(row.EndDate.String)
		if err != nil {
			return engine.PauseHistoryEntry{}, fmt.Errorf("pause %s: %w", row.ID, err)
		}
		entry.EndDate = &end
	}
	if t, err := time.Parse(time.RFC3339, row.PerformedAt); err == nil {
		entry.PerformedAt = t
	}
	return entry, nil
}

func toLeaveRequest(row leaveRequestRow) (engine.LeaveRequest, error) {
	start, err := parseDate(row.StartDate)
	if err != nil {
		return engine.LeaveRequest{}, fmt.Errorf("request %s: %w", row.ID, err)
	}
	end, err := parseDate(row.EndDate)
	if err != nil {
		return engine.LeaveRequest{}, fmt.Errorf("request %s: %w", row.ID, err)
	}
	workingDays, err := decimal.NewFromString(row.WorkingDays)
	if err != nil {
		return engine.LeaveRequest{}, fmt.Errorf("request %s: bad working_days %q: %w", row.ID, row.WorkingDays, err)
	}

	req := engine.LeaveRequest{
		ID:               row.ID,
		Status:           engine.RequestStatus(row.Status),
		StartDate:        start,
		EndDate:          end,
		EffectiveMinutes: row.EffectiveMinutes,
		DurationMinutes:  row.DurationMinutes,
		WorkingDays:      workingDays,
	}
	if row.SubmittedAt.Valid {
		if t, err := time.Parse(time.RFC3339, row.SubmittedAt.String); err == nil {
			req.SubmittedAt = &t
		}
	}
	return req, nil
}
