// Package store provides storage backends for enrollbot leads.
//
// It includes an in-memory store used by default and in tests, plus SQLite
// and PostgreSQL backed stores selected by DSN.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/learningcurve/enrollbot/internal/models"
)

// Opts holds configuration options for store implementations.
type Opts struct {
	DSN string
}

// Option defines a configuration option for stores.
type Option func(*Opts)

// WithSQLiteDSN sets a SQLite file path as the store DSN.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets a PostgreSQL connection string as the store DSN.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports "postgres" for PostgreSQL connection strings and
// "sqlite" for anything else (file paths).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// Store is the persistence contract for leads. Leads are append-only except
// for their status, which staff update as the follow-up progresses.
type Store interface {
	AddLead(lead models.Lead) (int64, error)
	GetLead(id int64) (*models.Lead, error)
	ListLeads(filter models.LeadFilter) ([]models.Lead, int, error)
	AllLeads() ([]models.Lead, error)
	UpdateLeadStatus(id int64, status models.LeadStatus) (*models.Lead, error)
	Close() error
}

// matchesFilter reports whether a lead passes the filter's criteria
// (pagination excluded).
func matchesFilter(l models.Lead, f models.LeadFilter) bool {
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.Program != "" && l.ProgramInterest != f.Program {
		return false
	}
	if !f.DateFrom.IsZero() && l.CreatedAt.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && l.CreatedAt.After(f.DateTo) {
		return false
	}
	return true
}

// InMemoryStore keeps leads in process memory. It is the default backend when
// no DSN is configured and the test double everywhere else.
type InMemoryStore struct {
	mu     sync.Mutex
	nextID int64
	leads  []models.Lead
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

// AddLead appends a lead and assigns it an id.
func (s *InMemoryStore) AddLead(lead models.Lead) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead.ID = s.nextID
	s.nextID++
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	s.leads = append(s.leads, lead)
	return lead.ID, nil
}

// GetLead returns the lead with the given id.
func (s *InMemoryStore) GetLead(id int64) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.leads {
		if s.leads[i].ID == id {
			l := s.leads[i]
			return &l, nil
		}
	}
	return nil, models.ErrLeadNotFound
}

// ListLeads returns one page of leads matching the filter, newest first,
// together with the total match count.
func (s *InMemoryStore) ListLeads(filter models.LeadFilter) ([]models.Lead, int, error) {
	filter.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Lead
	for _, l := range s.leads {
		if matchesFilter(l, filter) {
			matched = append(matched, l)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	stop := start + filter.Limit
	if stop > total {
		stop = total
	}
	page := make([]models.Lead, stop-start)
	copy(page, matched[start:stop])
	return page, total, nil
}

// AllLeads returns every stored lead.
func (s *InMemoryStore) AllLeads() ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Lead, len(s.leads))
	copy(out, s.leads)
	return out, nil
}

// UpdateLeadStatus sets the status of the lead with the given id.
func (s *InMemoryStore) UpdateLeadStatus(id int64, status models.LeadStatus) (*models.Lead, error) {
	if !models.IsValidLeadStatus(status) {
		return nil, models.ErrInvalidLeadStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads[i].Status = status
			l := s.leads[i]
			return &l, nil
		}
	}
	return nil, models.ErrLeadNotFound
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
