package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/doclens"
	"github.com/google/uuid"
	"github.com/ncruces/go-sqlite3"
)

// Compile-time interface verification.
var _ doclens.SessionService = (*SessionService)(nil)

// SessionService implements doclens.SessionService using SQLite.
type SessionService struct {
	db *DB
}

// NewSessionService creates a new SessionService.
func NewSessionService(db *DB) *SessionService {
	return &SessionService{db: db}
}

// CreateSession creates a new session with a generated ID and start time.
// An empty status defaults to pending.
func (s *SessionService) CreateSession(ctx context.Context, session *doclens.CrawlSession) error {
	if err := session.Validate(); err != nil {
		return err
	}

	session.ID = uuid.New().String()
	session.StartedAt = time.Now().UTC()
	if session.Status == "" {
		session.Status = doclens.SessionPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crawl_sessions (id, domain, base_url, status, total_pages, processed_pages, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, session.ID, session.Domain, session.BaseURL, string(session.Status), session.TotalPages,
		session.ProcessedPages, session.Error, formatTime(session.StartedAt))
	if isConstraint(err, sqlite3.CONSTRAINT_UNIQUE) {
		return doclens.Errorf(doclens.ECONFLICT, "session for domain %q already exists", session.Domain)
	}
	return err
}

// FindSessionByDomain retrieves the session for a domain.
func (s *SessionService) FindSessionByDomain(ctx context.Context, domain string) (*doclens.CrawlSession, error) {
	var session doclens.CrawlSession
	var status, startedAt string
	var completedAt sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, domain, base_url, status, total_pages, processed_pages, error, started_at, completed_at
		FROM crawl_sessions
		WHERE domain = ?
	`, domain).Scan(&session.ID, &session.Domain, &session.BaseURL, &status, &session.TotalPages,
		&session.ProcessedPages, &session.Error, &startedAt, &completedAt)

	if err == sql.ErrNoRows {
		return nil, doclens.Errorf(doclens.ENOTFOUND, "no crawl session for domain %q", domain)
	}
	if err != nil {
		return nil, err
	}

	session.Status = doclens.SessionStatus(status)
	if session.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t, err := parseRFC3339(completedAt.String, "completed_at")
		if err != nil {
			return nil, err
		}
		session.CompletedAt = &t
	}

	return &session, nil
}

// IncrementProcessed adds one processed page, never exceeding the total.
func (s *SessionService) IncrementProcessed(ctx context.Context, domain string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE crawl_sessions
		SET processed_pages = processed_pages + 1
		WHERE domain = ? AND processed_pages < total_pages
	`, domain)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	if _, err := s.FindSessionByDomain(ctx, domain); err != nil {
		return err
	}
	return doclens.Errorf(doclens.EINVALID, "all pages of domain %q already processed", domain)
}

// CompleteSession marks the session completed.
func (s *SessionService) CompleteSession(ctx context.Context, domain string) error {
	return s.finish(ctx, domain, doclens.SessionCompleted, "")
}

// FailSession marks the session failed with a reason.
func (s *SessionService) FailSession(ctx context.Context, domain, reason string) error {
	return s.finish(ctx, domain, doclens.SessionFailed, reason)
}

func (s *SessionService) finish(ctx context.Context, domain string, status doclens.SessionStatus, reason string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE crawl_sessions
		SET status = ?, error = ?, completed_at = ?
		WHERE domain = ?
	`, string(status), reason, formatTime(time.Now()), domain)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return doclens.Errorf(doclens.ENOTFOUND, "no crawl session for domain %q", domain)
	}
	return nil
}

// DeleteSessionByDomain removes the session for a domain.
func (s *SessionService) DeleteSessionByDomain(ctx context.Context, domain string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM crawl_sessions WHERE domain = ?", domain)
	return err
}
