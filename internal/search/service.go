package search

import (
	"context"
	"log"
)

// Service is the facade that tries Meilisearch first and falls back to PG FTS.
type Service struct {
	meili *Meili
	pgfts *PgFTS
}

// NewService creates a search service. meili may be nil if Meilisearch is not configured.
func NewService(meili *Meili, pgfts *PgFTS) *Service {
	return &Service{meili: meili, pgfts: pgfts}
}

// Search tries Meilisearch if healthy, otherwise falls back to PG FTS.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to pgfts: %v", err)
	}

	results, total, err := s.pgfts.Search(q)
	if err != nil {
		log.Printf("search: pgfts error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexProject indexes a project (fire-and-forget to Meilisearch).
func (s *Service) IndexProject(p ProjectRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexProject(p); err != nil {
			log.Printf("search: index project %s: %v", p.ID, err)
		}
	}()
}

// IndexClient indexes a client (fire-and-forget to Meilisearch).
func (s *Service) IndexClient(c ClientRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexClient(c); err != nil {
			log.Printf("search: index client %s: %v", c.ID, err)
		}
	}()
}

// IndexMessage indexes a project chat message (fire-and-forget to Meilisearch).
// Callers must not pass direct messages.
func (s *Service) IndexMessage(m MessageRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexMessage(m); err != nil {
			log.Printf("search: index message %s: %v", m.ID, err)
		}
	}()
}

// DeleteProject removes a project from the search index (fire-and-forget).
func (s *Service) DeleteProject(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteProject(id); err != nil {
			log.Printf("search: delete project %s: %v", id, err)
		}
	}()
}

// DeleteClient removes a client from the search index (fire-and-forget).
func (s *Service) DeleteClient(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteClient(id); err != nil {
			log.Printf("search: delete client %s: %v", id, err)
		}
	}()
}

// DeleteMessage removes a message from the search index (fire-and-forget).
func (s *Service) DeleteMessage(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteMessage(id); err != nil {
			log.Printf("search: delete message %s: %v", id, err)
		}
	}()
}

// ReindexAll pushes the given records to Meilisearch in bulk.
func (s *Service) ReindexAll(projects []ProjectRecord, clients []ClientRecord, messages []MessageRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}

	if len(projects) > 0 {
		if err := s.meili.IndexProjects(projects); err != nil {
			log.Printf("search: reindex projects: %v", err)
		}
	}
	if len(clients) > 0 {
		if err := s.meili.IndexClients(clients); err != nil {
			log.Printf("search: reindex clients: %v", err)
		}
	}
	if len(messages) > 0 {
		if err := s.meili.IndexMessages(messages); err != nil {
			log.Printf("search: reindex messages: %v", err)
		}
	}
}

// ReindexAllFromPG reindexes all searchable entities from PostgreSQL into Meilisearch.
func (s *Service) ReindexAllFromPG(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() || s.pgfts == nil {
		return
	}
	projects, clients, messages, err := s.pgfts.LoadAllRecords(ctx)
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	s.ReindexAll(projects, clients, messages)
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
