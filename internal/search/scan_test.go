package search

import (
	"strings"
	"testing"

	"brigade/api/internal/project"
)

func fixtureRecords() ([]TaskRecord, []DishRecord, []ReviewRecord) {
	doc := project.Default()
	doc.Roster = []project.Member{{ID: "m1", Name: "Luis"}, {ID: "m2", Name: "Ana"}}
	doc.MicroTasks[0].AssigneeID = "m2"
	doc.MicroTasks[0].Content = "Three competing restaurants mapped around the plaza."
	doc.Dishes = []project.Dish{{
		ID:          "d1",
		Name:        "Arroz de verduras",
		Type:        project.DishMain,
		Description: "Seasonal rice with vegetables from the huerta.",
		AuthorID:    "m1",
	}}
	doc.PeerReviews = []project.PeerReview{{
		EvaluatorID: "m1",
		TargetID:    "m2",
		Items: []project.ReviewItem{
			{Category: "teamwork", Score: 5, Comment: "Always shares findings with the plaza group."},
		},
	}}
	return RecordsFromProject("aula-3b", doc)
}

func TestRecordsFromProjectSkipsEmptyText(t *testing.T) {
	tasks, dishes, reviews := fixtureRecords()
	if len(tasks) != 1 {
		t.Fatalf("expected only the filled task to be indexed, got %d", len(tasks))
	}
	if tasks[0].ID != "aula-3b-task-1" || tasks[0].AssigneeID != "m2" {
		t.Fatalf("unexpected task record: %+v", tasks[0])
	}
	if len(dishes) != 1 || dishes[0].AuthorID != "m1" {
		t.Fatalf("unexpected dish records: %+v", dishes)
	}
	if len(reviews) != 1 || reviews[0].ReviewerID != "m1" {
		t.Fatalf("unexpected review records: %+v", reviews)
	}
}

func TestScannerMatchesAcrossTypes(t *testing.T) {
	scanner := NewScanner(fixtureRecords)

	results, total, err := scanner.Search(Query{Text: "plaza"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 hits for plaza, got %d", total)
	}
	types := map[ResultType]bool{}
	for _, r := range results {
		types[r.Type] = true
	}
	if !types[ResultTask] || !types[ResultReview] {
		t.Fatalf("expected task and review hits, got %+v", results)
	}
}

func TestScannerFilterAndCase(t *testing.T) {
	scanner := NewScanner(fixtureRecords)

	results, total, err := scanner.Search(Query{Text: "ARROZ", FilterType: ResultDish})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if total != 1 || results[0].Type != ResultDish {
		t.Fatalf("expected a single dish hit, got total=%d results=%+v", total, results)
	}
	if results[0].Title != "Arroz de verduras" {
		t.Fatalf("unexpected title %q", results[0].Title)
	}
}

func TestScannerEmptyQuery(t *testing.T) {
	scanner := NewScanner(fixtureRecords)
	results, total, err := scanner.Search(Query{Text: "   "})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if total != 0 || len(results) != 0 {
		t.Fatalf("expected no hits for blank query, got %d", total)
	}
}

func TestScannerNegativeLimitFallsBack(t *testing.T) {
	scanner := NewScanner(fixtureRecords)

	for _, limit := range []int{-1, -100, 0} {
		results, total, err := scanner.Search(Query{Text: "plaza", Limit: limit})
		if err != nil {
			t.Fatalf("Search(limit=%d) error = %v", limit, err)
		}
		if total != 2 || len(results) != 2 {
			t.Fatalf("Search(limit=%d): expected both hits, got total=%d results=%d", limit, total, len(results))
		}
	}
}

func TestScannerLimitTruncates(t *testing.T) {
	scanner := NewScanner(fixtureRecords)

	results, total, err := scanner.Search(Query{Text: "plaza", Limit: 1})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if total != 2 {
		t.Fatalf("total must count all hits, got %d", total)
	}
	if len(results) != 1 {
		t.Fatalf("expected the result list cut to 1, got %d", len(results))
	}
}

func TestSnippetAroundWindowsLongText(t *testing.T) {
	long := strings.Repeat("relleno ", 40) + "croqueta" + strings.Repeat(" relleno", 40)
	got := snippetAround(long, "croqueta")
	if !strings.Contains(got, "croqueta") {
		t.Fatalf("snippet lost the match: %q", got)
	}
	if len(got) >= len(long) {
		t.Fatalf("expected a trimmed snippet, got %d bytes", len(got))
	}
}
