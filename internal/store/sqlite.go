// Package store provides storage backends for enrollbot leads.
//
// This file implements a SQLite-backed lead store.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/learningcurve/enrollbot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// AddLead inserts a lead and returns its generated id.
func (s *SQLiteStore) AddLead(lead models.Lead) (int64, error) {
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	res, err := s.db.Exec(
		`INSERT INTO leads (parent_name, phone, child_age_group, program_interest, visit_preference, inquiry_type, status, conversation, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ParentName, lead.Phone, nilIfEmpty(lead.ChildAgeGroup), nilIfEmpty(lead.ProgramInterest),
		nilIfEmpty(lead.VisitPreference), nilIfEmpty(lead.InquiryType), lead.Status,
		nilIfEmpty(lead.Conversation), lead.CreatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore AddLead failed", "error", err, "parent", lead.ParentName)
		return 0, fmt.Errorf("failed to insert lead for %s: %w", lead.ParentName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		slog.Error("SQLiteStore AddLead id lookup failed", "error", err)
		return 0, fmt.Errorf("failed to read inserted lead id: %w", err)
	}
	slog.Debug("SQLiteStore AddLead succeeded", "id", id, "parent", lead.ParentName)
	return id, nil
}

// GetLead returns the lead with the given id.
func (s *SQLiteStore) GetLead(id int64) (*models.Lead, error) {
	row := s.db.QueryRow(`SELECT `+leadColumns+` FROM leads WHERE id = ?`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrLeadNotFound
	}
	if err != nil {
		slog.Error("SQLiteStore GetLead failed", "error", err, "id", id)
		return nil, err
	}
	return &lead, nil
}

// ListLeads returns one page of leads matching the filter, newest first,
// together with the total match count.
func (s *SQLiteStore) ListLeads(filter models.LeadFilter) ([]models.Lead, int, error) {
	filter.Normalize()
	where, args := buildLeadFilter(filter)

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		slog.Error("SQLiteStore ListLeads count failed", "error", err)
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	query := `SELECT ` + leadColumns + ` FROM leads` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := s.db.Query(query, append(args, filter.Limit, filter.Offset())...)
	if err != nil {
		slog.Error("SQLiteStore ListLeads query failed", "error", err)
		return nil, 0, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			slog.Error("SQLiteStore ListLeads scan failed", "error", err)
			return nil, 0, err
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListLeads rows iteration failed", "error", err)
		return nil, 0, fmt.Errorf("failed to iterate lead rows: %w", err)
	}
	slog.Debug("SQLiteStore ListLeads succeeded", "count", len(leads), "total", total)
	return leads, total, nil
}

// AllLeads returns every stored lead, newest first.
func (s *SQLiteStore) AllLeads() ([]models.Lead, error) {
	rows, err := s.db.Query(`SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("SQLiteStore AllLeads query failed", "error", err)
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			slog.Error("SQLiteStore AllLeads scan failed", "error", err)
			return nil, err
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lead rows: %w", err)
	}
	return leads, nil
}

// UpdateLeadStatus sets the status of the lead with the given id.
func (s *SQLiteStore) UpdateLeadStatus(id int64, status models.LeadStatus) (*models.Lead, error) {
	if !models.IsValidLeadStatus(status) {
		return nil, models.ErrInvalidLeadStatus
	}
	res, err := s.db.Exec(`UPDATE leads SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		slog.Error("SQLiteStore UpdateLeadStatus failed", "error", err, "id", id, "status", status)
		return nil, fmt.Errorf("failed to update lead %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check lead update: %w", err)
	}
	if affected == 0 {
		return nil, models.ErrLeadNotFound
	}
	slog.Debug("SQLiteStore UpdateLeadStatus succeeded", "id", id, "status", status)
	return s.GetLead(id)
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}

// buildLeadFilter assembles the WHERE clause for a lead filter using SQLite
// "?" placeholders.
func buildLeadFilter(f models.LeadFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.Program != "" {
		clauses = append(clauses, "program_interest = ?")
		args = append(args, f.Program)
	}
	if !f.DateFrom.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, f.DateTo)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}
