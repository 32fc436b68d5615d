package search

import "strings"

// Scanner is the fallback searcher. It walks the flattened records of the
// live document on every query, so it needs no external service and can
// never drift from the document it searches.
type Scanner struct {
	source func() ([]TaskRecord, []DishRecord, []ReviewRecord)
}

func NewScanner(source func() ([]TaskRecord, []DishRecord, []ReviewRecord)) *Scanner {
	return &Scanner{source: source}
}

func (s *Scanner) Healthy() bool {
	return s.source != nil
}

func (s *Scanner) Search(q Query) ([]Result, int, error) {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	if needle == "" {
		return []Result{}, 0, nil
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	tasks, dishes, reviews := s.source()

	var results []Result
	if q.FilterType == "" || q.FilterType == ResultTask {
		for _, task := range tasks {
			if matchAny(needle, task.Title, task.Report) {
				results = append(results, Result{
					Type:     ResultTask,
					ID:       task.ID,
					Title:    task.Title,
					Snippet:  snippetAround(task.Report, needle),
					MemberID: task.AssigneeID,
				})
			}
		}
	}
	if q.FilterType == "" || q.FilterType == ResultDish {
		for _, dish := range dishes {
			if matchAny(needle, dish.Name, dish.Description) {
				results = append(results, Result{
					Type:     ResultDish,
					ID:       dish.ID,
					Title:    dish.Name,
					Snippet:  snippetAround(dish.Description, needle),
					MemberID: dish.AuthorID,
				})
			}
		}
	}
	if q.FilterType == "" || q.FilterType == ResultReview {
		for _, review := range reviews {
			if matchAny(needle, review.Comment) {
				results = append(results, Result{
					Type:     ResultReview,
					ID:       review.ID,
					Title:    review.RevieweeID,
					Snippet:  snippetAround(review.Comment, needle),
					MemberID: review.ReviewerID,
				})
			}
		}
	}

	total := len(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, total, nil
}

func matchAny(needle string, haystacks ...string) bool {
	for _, haystack := range haystacks {
		if strings.Contains(strings.ToLower(haystack), needle) {
			return true
		}
	}
	return false
}

// snippetAround trims text to a short window centered on the first match.
func snippetAround(text, needle string) string {
	const window = 80
	lower := strings.ToLower(text)
	idx := strings.Index(lower, needle)
	if idx < 0 {
		if len(text) > 2*window {
			return text[:2*window] + "…"
		}
		return text
	}

	start := idx - window
	if start < 0 {
		start = 0
	}
	end := idx + len(needle) + window
	if end > len(text) {
		end = len(text)
	}
	snippet := text[start:end]
	if start > 0 {
		snippet = "…" + snippet
	}
	if end < len(text) {
		snippet += "…"
	}
	return snippet
}
