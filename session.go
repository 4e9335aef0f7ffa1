package doclens

import (
	"context"
	"time"
)

// SessionStatus is the lifecycle state of a crawl session.
type SessionStatus string

// Crawl session states. Sessions move pending → processing → completed,
// with failed as the alternate terminal state.
const (
	SessionPending    SessionStatus = "pending"
	SessionProcessing SessionStatus = "processing"
	SessionCompleted  SessionStatus = "completed"
	SessionFailed     SessionStatus = "failed"
)

// CrawlSession tracks ingestion progress for one domain. There is at most
// one session per domain.
type CrawlSession struct {
	ID             string        `json:"id"`
	Domain         string        `json:"domain"`
	BaseURL        string        `json:"baseUrl"`
	Status         SessionStatus `json:"status"`
	TotalPages     int           `json:"totalPages"`
	ProcessedPages int           `json:"processedPages"`
	Error          string        `json:"error,omitempty"`
	StartedAt      time.Time     `json:"startedAt"`
	CompletedAt    *time.Time    `json:"completedAt,omitempty"`
}

// Validate returns an error if the session contains invalid fields.
func (s *CrawlSession) Validate() error {
	if s.Domain == "" {
		return Errorf(EINVALID, "session domain required")
	}
	if s.TotalPages < 0 {
		return Errorf(EINVALID, "session total pages must not be negative")
	}
	if s.ProcessedPages > s.TotalPages {
		return Errorf(EINVALID, "session processed pages exceed total pages")
	}
	return nil
}

// Terminal reports whether the session reached completed or failed.
func (s *CrawlSession) Terminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionFailed
}

// SessionService represents a service for managing crawl sessions.
type SessionService interface {
	// CreateSession stores a new session. Returns ECONFLICT if the domain
	// already has one.
	CreateSession(ctx context.Context, session *CrawlSession) error

	// FindSessionByDomain retrieves the session for a domain.
	// Returns ENOTFOUND if none exists.
	FindSessionByDomain(ctx context.Context, domain string) (*CrawlSession, error)

	// IncrementProcessed adds one processed page. Returns EINVALID when the
	// counter already equals the total.
	IncrementProcessed(ctx context.Context, domain string) error

	// CompleteSession marks the session completed at the current time.
	CompleteSession(ctx context.Context, domain string) error

	// FailSession marks the session failed with a reason.
	FailSession(ctx context.Context, domain, reason string) error

	// DeleteSessionByDomain removes the session for a domain.
	// Deleting a missing session is not an error.
	DeleteSessionByDomain(ctx context.Context, domain string) error
}
