package search

import "log"

// Service is the facade that tries Meilisearch first and falls back to
// scanning the live document.
type Service struct {
	meili   *Meili
	scanner *Scanner
}

// NewService creates a search service. meili may be nil if Meilisearch is not
// configured; scanner must always be set.
func NewService(meili *Meili, scanner *Scanner) *Service {
	return &Service{meili: meili, scanner: scanner}
}

// Search tries Meilisearch if healthy, otherwise scans the document.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to document scan: %v", err)
	}

	results, total, err := s.scanner.Search(q)
	if err != nil {
		log.Printf("search: document scan error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// SyncProject pushes the flattened document into Meilisearch, fire and
// forget. The fallback scanner always reads live state and needs no sync.
func (s *Service) SyncProject(tasks []TaskRecord, dishes []DishRecord, reviews []ReviewRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.SyncProject(tasks, dishes, reviews); err != nil {
			log.Printf("search: sync project: %v", err)
		}
	}()
}

// DeleteDish removes one dish record from Meilisearch (fire-and-forget).
func (s *Service) DeleteDish(recordID string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteDish(recordID); err != nil {
			log.Printf("search: delete dish %s: %v", recordID, err)
		}
	}()
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
