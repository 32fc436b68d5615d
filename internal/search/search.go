package search

import (
	"fmt"
	"strings"

	"brigade/api/internal/project"
)

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultTask   ResultType = "task"
	ResultDish   ResultType = "dish"
	ResultReview ResultType = "review"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type     ResultType `json:"type"`
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Snippet  string     `json:"snippet"`
	MemberID string     `json:"memberId,omitempty"`
}

// Query describes a search request.
type Query struct {
	Text       string
	FilterType ResultType // empty = all types
	Limit      int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// TaskRecord is the data we index for a micro task report.
type TaskRecord struct {
	ID         string `json:"id"`
	Profile    string `json:"profile"`
	Title      string `json:"title"`
	Report     string `json:"report"`
	AssigneeID string `json:"assigneeId"`
}

// DishRecord is the data we index for a dish.
type DishRecord struct {
	ID          string `json:"id"`
	Profile     string `json:"profile"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DishType    string `json:"dishType"`
	AuthorID    string `json:"authorId"`
}

// ReviewRecord is the data we index for a peer review comment.
type ReviewRecord struct {
	ID         string `json:"id"`
	Profile    string `json:"profile"`
	Comment    string `json:"comment"`
	ReviewerID string `json:"reviewerId"`
	RevieweeID string `json:"revieweeId"`
}

// RecordsFromProject flattens the searchable parts of a project document.
// Entries with no text are skipped so the index never fills with blanks.
func RecordsFromProject(profile string, doc project.Project) ([]TaskRecord, []DishRecord, []ReviewRecord) {
	var tasks []TaskRecord
	for _, task := range doc.MicroTasks {
		if strings.TrimSpace(task.Content) == "" {
			continue
		}
		tasks = append(tasks, TaskRecord{
			ID:         fmt.Sprintf("%s-task-%d", profile, task.ID),
			Profile:    profile,
			Title:      task.Title,
			Report:     task.Content,
			AssigneeID: task.AssigneeID,
		})
	}

	var dishes []DishRecord
	for _, dish := range doc.Dishes {
		dishes = append(dishes, DishRecord{
			ID:          fmt.Sprintf("%s-dish-%s", profile, dish.ID),
			Profile:     profile,
			Name:        dish.Name,
			Description: dish.Description,
			DishType:    string(dish.Type),
			AuthorID:    dish.AuthorID,
		})
	}

	var reviews []ReviewRecord
	for _, review := range doc.PeerReviews {
		comment := reviewComments(review)
		if comment == "" {
			continue
		}
		reviews = append(reviews, ReviewRecord{
			ID:         fmt.Sprintf("%s-review-%s-%s", profile, review.EvaluatorID, review.TargetID),
			Profile:    profile,
			Comment:    comment,
			ReviewerID: review.EvaluatorID,
			RevieweeID: review.TargetID,
		})
	}

	return tasks, dishes, reviews
}

func reviewComments(review project.PeerReview) string {
	var parts []string
	for _, item := range review.Items {
		if strings.TrimSpace(item.Comment) != "" {
			parts = append(parts, strings.TrimSpace(item.Comment))
		}
	}
	return strings.Join(parts, " ")
}
