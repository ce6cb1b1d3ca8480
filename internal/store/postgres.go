// Package store provides storage backends for enrollbot leads.
//
// This file implements a PostgreSQL-backed lead store.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/learningcurve/enrollbot/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// AddLead inserts a lead and returns its generated id.
func (s *PostgresStore) AddLead(lead models.Lead) (int64, error) {
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	var id int64
	err := s.db.QueryRow(
		`INSERT INTO leads (parent_name, phone, child_age_group, program_interest, visit_preference, inquiry_type, status, conversation, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		lead.ParentName, lead.Phone, nilIfEmpty(lead.ChildAgeGroup), nilIfEmpty(lead.ProgramInterest),
		nilIfEmpty(lead.VisitPreference), nilIfEmpty(lead.InquiryType), lead.Status,
		nilIfEmpty(lead.Conversation), lead.CreatedAt,
	).Scan(&id)
	if err != nil {
		slog.Error("PostgresStore AddLead failed", "error", err, "parent", lead.ParentName)
		return 0, fmt.Errorf("failed to insert lead for %s: %w", lead.ParentName, err)
	}
	slog.Debug("PostgresStore AddLead succeeded", "id", id, "parent", lead.ParentName)
	return id, nil
}

// GetLead returns the lead with the given id.
func (s *PostgresStore) GetLead(id int64) (*models.Lead, error) {
	row := s.db.QueryRow(`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrLeadNotFound
	}
	if err != nil {
		slog.Error("PostgresStore GetLead failed", "error", err, "id", id)
		return nil, err
	}
	return &lead, nil
}

// ListLeads returns one page of leads matching the filter, newest first,
// together with the total match count.
func (s *PostgresStore) ListLeads(filter models.LeadFilter) ([]models.Lead, int, error) {
	filter.Normalize()
	where, args := buildLeadFilterPg(filter)

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM leads`+where, args...).Scan(&total); err != nil {
		slog.Error("PostgresStore ListLeads count failed", "error", err)
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM leads%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		leadColumns, where, len(args)+1, len(args)+2)
	rows, err := s.db.Query(query, append(args, filter.Limit, filter.Offset())...)
	if err != nil {
		slog.Error("PostgresStore ListLeads query failed", "error", err)
		return nil, 0, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			slog.Error("PostgresStore ListLeads scan failed", "error", err)
			return nil, 0, err
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListLeads rows iteration failed", "error", err)
		return nil, 0, fmt.Errorf("failed to iterate lead rows: %w", err)
	}
	slog.Debug("PostgresStore ListLeads succeeded", "count", len(leads), "total", total)
	return leads, total, nil
}

// AllLeads returns every stored lead, newest first.
func (s *PostgresStore) AllLeads() ([]models.Lead, error) {
	rows, err := s.db.Query(`SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`)
	if err != nil {
		slog.Error("PostgresStore AllLeads query failed", "error", err)
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			slog.Error("PostgresStore AllLeads scan failed", "error", err)
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
func (s *PostgresStore) UpdateLeadStatus(id int64, status models.LeadStatus) (*models.Lead, error) {
	if !models.IsValidLeadStatus(status) {
		return nil, models.ErrInvalidLeadStatus
	}
	row := s.db.QueryRow(`UPDATE leads SET status = $1 WHERE id = $2 RETURNING `+leadColumns, status, id)
	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrLeadNotFound
	}
	if err != nil {
		slog.Error("PostgresStore UpdateLeadStatus failed", "error", err, "id", id, "status", status)
		return nil, fmt.Errorf("failed to update lead %d: %w", id, err)
	}
	slog.Debug("PostgresStore UpdateLeadStatus succeeded", "id", id, "status", status)
	return &lead, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}

// buildLeadFilterPg assembles the WHERE clause for a lead filter using
// numbered Postgres placeholders.
func buildLeadFilterPg(f models.LeadFilter) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	add := func(expr string, v interface{}) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Program != "" {
		add("program_interest = $%d", f.Program)
	}
	if !f.DateFrom.IsZero() {
		add("created_at >= $%d", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		add("created_at <= $%d", f.DateTo)
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
