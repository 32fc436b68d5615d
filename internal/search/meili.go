package search

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const (
	idxTasks   = "brigade_tasks"
	idxDishes  = "brigade_dishes"
	idxReviews = "brigade_reviews"
)

// Meili implements Searcher via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	profile string
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures indexes. The service
// keeps running with the fallback scanner when the instance is unreachable.
func NewMeili(url, apiKey, profile string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client:  client,
		profile: profile,
		done:    make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndexes()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndexes() {
	indexes := []struct {
		uid        string
		filterable []string
		searchable []string
	}{
		{
			uid:        idxTasks,
			filterable: []string{"profile", "assigneeId"},
			searchable: []string{"title", "report"},
		},
		{
			uid:        idxDishes,
			filterable: []string{"profile", "authorId", "dishType"},
			searchable: []string{"name", "description"},
		},
		{
			uid:        idxReviews,
			filterable: []string{"profile", "reviewerId", "revieweeId"},
			searchable: []string{"comment"},
		},
	}

	for _, idx := range indexes {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{
			Uid:        idx.uid,
			PrimaryKey: "id",
		}); err != nil {
			log.Printf("search: create index %s (may already exist): %v", idx.uid, err)
		}

		index := m.client.Index(idx.uid)
		filterableInterface := make([]interface{}, len(idx.filterable))
		for i, v := range idx.filterable {
			filterableInterface[i] = v
		}
		if _, err := index.UpdateFilterableAttributes(&filterableInterface); err != nil {
			log.Printf("search: update filterable attrs for %s: %v", idx.uid, err)
		}
		if _, err := index.UpdateSearchableAttributes(&idx.searchable); err != nil {
			log.Printf("search: update searchable attrs for %s: %v", idx.uid, err)
		}
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring indexes")
				m.configureIndexes()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// searchRequests builds one per-index request carrying the query text, the
// limit, and the profile filter.
func searchRequests(q Query, profile string) []*meili.SearchRequest {
	limit := int64(q.Limit)
	if limit <= 0 {
		limit = 20
	}

	var queries []*meili.SearchRequest
	targetIndexes := []struct {
		uid  string
		rtyp ResultType
	}{
		{idxTasks, ResultTask},
		{idxDishes, ResultDish},
		{idxReviews, ResultReview},
	}

	for _, ti := range targetIndexes {
		if q.FilterType != "" && q.FilterType != ti.rtyp {
			continue
		}
		queries = append(queries, &meili.SearchRequest{
			IndexUID:              ti.uid,
			Query:                 q.Text,
			Limit:                 limit,
			AttributesToHighlight: []string{"*"},
			HighlightPreTag:       "<mark>",
			HighlightPostTag:      "</mark>",
			Filter:                []string{fmt.Sprintf("profile = %q", profile)},
		})
	}
	return queries
}

// Search queries all three indexes (or a filtered subset) and merges results.
func (m *Meili) Search(q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	queries := searchRequests(q, m.profile)
	if len(queries) == 0 {
		return nil, 0, nil
	}

	resp, err := m.client.MultiSearch(&meili.MultiSearchRequest{
		Queries: queries,
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	var results []Result
	total := 0
	for _, sr := range resp.Results {
		total += int(sr.EstimatedTotalHits)
		rtyp := indexToResultType(sr.IndexUID)
		for _, hit := range sr.Hits {
			results = append(results, hitToResult(hit, rtyp))
		}
	}

	return results, total, nil
}

// SyncProject replaces the indexed records for the profile with the current
// flattened document. Stale rows for removed entities stay until the next
// full reindex; the profile filter keeps them harmless across profiles.
func (m *Meili) SyncProject(tasks []TaskRecord, dishes []DishRecord, reviews []ReviewRecord) error {
	if !m.healthy.Load() {
		return fmt.Errorf("meilisearch unhealthy")
	}
	if len(tasks) > 0 {
		if _, err := m.client.Index(idxTasks).AddDocuments(tasks, nil); err != nil {
			return fmt.Errorf("index tasks: %w", err)
		}
	}
	if len(dishes) > 0 {
		if _, err := m.client.Index(idxDishes).AddDocuments(dishes, nil); err != nil {
			return fmt.Errorf("index dishes: %w", err)
		}
	}
	if len(reviews) > 0 {
		if _, err := m.client.Index(idxReviews).AddDocuments(reviews, nil); err != nil {
			return fmt.Errorf("index reviews: %w", err)
		}
	}
	return nil
}

// DeleteDish removes one dish from the index after a roster member deletes it.
func (m *Meili) DeleteDish(recordID string) error {
	_, err := m.client.Index(idxDishes).DeleteDocument(recordID, nil)
	return err
}

func indexToResultType(uid string) ResultType {
	switch uid {
	case idxTasks:
		return ResultTask
	case idxDishes:
		return ResultDish
	case idxReviews:
		return ResultReview
	default:
		return ""
	}
}

func hitToResult(hit meili.Hit, rtyp ResultType) Result {
	r := Result{Type: rtyp}
	r.ID = decodeString(hit, "id")

	switch rtyp {
	case ResultTask:
		r.Title = firstNonBlank(decodeFormattedString(hit, "title"), decodeString(hit, "title"))
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "report"), decodeString(hit, "report"))
		r.MemberID = decodeString(hit, "assigneeId")
	case ResultDish:
		r.Title = firstNonBlank(decodeFormattedString(hit, "name"), decodeString(hit, "name"))
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "description"), decodeString(hit, "description"))
		r.MemberID = decodeString(hit, "authorId")
	case ResultReview:
		r.Title = decodeString(hit, "revieweeId")
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "comment"), decodeString(hit, "comment"))
		r.MemberID = decodeString(hit, "reviewerId")
	}
	return r
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]string
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	return strings.TrimSpace(formatted[key])
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
