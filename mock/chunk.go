package mock

import (
	"context"

	"github.com/fwojciec/doclens"
)

var _ doclens.ChunkService = (*ChunkService)(nil)

// ChunkService is a mock implementation of doclens.ChunkService.
type ChunkService struct {
	CreateChunksFn         func(ctx context.Context, chunks []*doclens.Chunk) error
	DeleteChunksByDomainFn func(ctx context.Context, domain string) error
	CountChunksFn          func(ctx context.Context, domain string) (int, error)
	SemanticSearchFn       func(ctx context.Context, domain string, vector []float32, limit int) ([]doclens.ScoredChunk, error)
	LexicalSearchFn        func(ctx context.Context, domain string, keywords []string, limit int) ([]doclens.ScoredChunk, error)
}

func (s *ChunkService) CreateChunks(ctx context.Context, chunks []*doclens.Chunk) error {
	return s.CreateChunksFn(ctx, chunks)
}

func (s *ChunkService) DeleteChunksByDomain(ctx context.Context, domain string) error {
	return s.DeleteChunksByDomainFn(ctx, domain)
}

func (s *ChunkService) CountChunks(ctx context.Context, domain string) (int, error) {
	return s.CountChunksFn(ctx, domain)
}

func (s *ChunkService) SemanticSearch(ctx context.Context, domain string, vector []float32, limit int) ([]doclens.ScoredChunk, error) {
	return s.SemanticSearchFn(ctx, domain, vector, limit)
}

func (s *ChunkService) LexicalSearch(ctx context.Context, domain string, keywords []string, limit int) ([]doclens.ScoredChunk, error) {
	return s.LexicalSearchFn(ctx, domain, keywords, limit)
}

var _ doclens.SessionService = (*SessionService)(nil)

// SessionService is a mock implementation of doclens.SessionService.
type SessionService struct {
	CreateSessionFn         func(ctx context.Context, session *doclens.CrawlSession) error
	FindSessionByDomainFn   func(ctx context.Context, domain string) (*doclens.CrawlSession, error)
	IncrementProcessedFn    func(ctx context.Context, domain string) error
	CompleteSessionFn       func(ctx context.Context, domain string) error
	FailSessionFn           func(ctx context.Context, domain, reason string) error
	DeleteSessionByDomainFn func(ctx context.Context, domain string) error
}

func (s *SessionService) CreateSession(ctx context.Context, session *doclens.CrawlSession) error {
	return s.CreateSessionFn(ctx, session)
}

func (s *SessionService) FindSessionByDomain(ctx context.Context, domain string) (*doclens.CrawlSession, error) {
	return s.FindSessionByDomainFn(ctx, domain)
}

func (s *SessionService) IncrementProcessed(ctx context.Context, domain string) error {
	return s.IncrementProcessedFn(ctx, domain)
}

func (s *SessionService) CompleteSession(ctx context.Context, domain string) error {
	return s.CompleteSessionFn(ctx, domain)
}

func (s *SessionService) FailSession(ctx context.Context, domain, reason string) error {
	return s.FailSessionFn(ctx, domain, reason)
}

func (s *SessionService) DeleteSessionByDomain(ctx context.Context, domain string) error {
	return s.DeleteSessionByDomainFn(ctx, domain)
}
