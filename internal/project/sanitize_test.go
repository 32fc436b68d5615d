package project

import (
	"reflect"
	"testing"
)

func resanitize(t *testing.T, doc Project) Project {
	t.Helper()
	encoded, err := Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return Sanitize(encoded)
}

func TestSanitizeIdempotence(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "empty input", raw: ""},
		{name: "null", raw: `null`},
		{name: "not json", raw: `{{{`},
		{name: "wrong top-level type", raw: `[1,2,3]`},
		{name: "empty object", raw: `{}`},
		{name: "partial document", raw: `{"concept":{"name":"Huerta Viva"},"dishes":[{"id":"d1","name":"Salad","authorId":"m1"}]}`},
		{name: "non-array lists", raw: `{"roster":"nope","dishes":42,"peerReviews":{"a":1},"concept":{"values":"x"}}`},
		{name: "legacy export", raw: `{"currentUser":"m1","schoolName":"CIFP","team":[{"id":"m1","name":"Ana"}],"task2":{"tasks":[{"id":1,"assignedToId":"m1","content":"done"}]},"task6":{"designerId":"m1"},"selectedZone":{"id":3,"name":"Vega Alta"},"zoneJustification":"fruit","dishes":[{"id":"d1","author":"m1","type":"Postre","cost":4.5}]}`},
		{name: "duplicate reviews", raw: `{"roster":[{"id":"a"},{"id":"b"}],"peerReviews":[{"evaluatorId":"a","targetId":"b","items":[]},{"evaluatorId":"a","targetId":"b","items":[{"category":"quality","score":4}]}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first := Sanitize([]byte(tc.raw))
			second := resanitize(t, first)
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("sanitize not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
			}
		})
	}
}

func TestSanitizeDefaultsOnGarbage(t *testing.T) {
	doc := Sanitize([]byte(`not json at all`))
	if !reflect.DeepEqual(doc, Default()) {
		t.Fatalf("expected all-defaults document, got %+v", doc)
	}
	if len(doc.MicroTasks) != len(taskCatalog) {
		t.Fatalf("expected the fixed task catalog, got %d tasks", len(doc.MicroTasks))
	}
}

func TestSanitizeLegacyRoleMigration(t *testing.T) {
	doc := Sanitize([]byte(`{"task6":{"designerId":"m1"}}`))
	if !reflect.DeepEqual(doc.Roles.DesignerIDs, []string{"m1"}) {
		t.Fatalf("designerIds = %v, want [m1]", doc.Roles.DesignerIDs)
	}
	if len(doc.Roles.ArtisanIDs) != 0 || len(doc.Roles.EditorIDs) != 0 {
		t.Fatalf("expected empty artisan/editor sets, got %v / %v", doc.Roles.ArtisanIDs, doc.Roles.EditorIDs)
	}
}

func TestSanitizePluralRolesWinOverSingular(t *testing.T) {
	doc := Sanitize([]byte(`{"roleAssignments":{"designerIds":["m2","m2","m3"],"artisanId":"ignored"}}`))
	if !reflect.DeepEqual(doc.Roles.DesignerIDs, []string{"m2", "m3"}) {
		t.Fatalf("designerIds = %v, want deduped [m2 m3]", doc.Roles.DesignerIDs)
	}
}

func TestSanitizeNonArrayListsCoerced(t *testing.T) {
	doc := Sanitize([]byte(`{"roster":{"id":"m1"},"dishes":"x","concept":{"name":"ok","values":17}}`))
	if len(doc.Roster) != 0 {
		t.Fatalf("roster = %v, want empty", doc.Roster)
	}
	if len(doc.Dishes) != 0 {
		t.Fatalf("dishes = %v, want empty", doc.Dishes)
	}
	if doc.Concept.Name != "ok" {
		t.Fatalf("concept name dropped: %+v", doc.Concept)
	}
	if len(doc.Concept.Values) != 0 {
		t.Fatalf("concept values = %v, want empty", doc.Concept.Values)
	}
}

func TestSanitizeCoordinatorLastWriteWins(t *testing.T) {
	doc := Sanitize([]byte(`{"roster":[{"id":"a","isCoordinator":true},{"id":"b","isCoordinator":true},{"id":"c"}]}`))
	var coordinators []string
	for _, member := range doc.Roster {
		if member.IsCoordinator {
			coordinators = append(coordinators, member.ID)
		}
	}
	if !reflect.DeepEqual(coordinators, []string{"b"}) {
		t.Fatalf("coordinators = %v, want [b]", coordinators)
	}
}

func TestSanitizeTaskCatalogIsAuthoritative(t *testing.T) {
	doc := Sanitize([]byte(`{"microTasks":[{"id":1,"title":"renamed","assigneeId":"m1","content":"report"},{"id":99,"title":"invented","content":"x"}]}`))
	if len(doc.MicroTasks) != len(taskCatalog) {
		t.Fatalf("task count = %d, want %d", len(doc.MicroTasks), len(taskCatalog))
	}
	first := doc.MicroTasks[0]
	if first.Title != taskCatalog[0].Title {
		t.Fatalf("catalog title overridden: %q", first.Title)
	}
	if first.AssigneeID != "m1" || first.Content != "report" {
		t.Fatalf("user data lost: %+v", first)
	}
	for _, task := range doc.MicroTasks {
		if task.ID == 99 {
			t.Fatal("invented task survived sanitize")
		}
	}
}

func TestSanitizeActiveMemberRequiresRoster(t *testing.T) {
	doc := Sanitize([]byte(`{"activeMemberId":"ghost","roster":[{"id":"m1"}]}`))
	if doc.ActiveMemberID != "" {
		t.Fatalf("activeMemberId = %q, want cleared", doc.ActiveMemberID)
	}

	doc = Sanitize([]byte(`{"currentUser":"m1","team":[{"id":"m1","name":"Ana"}]}`))
	if doc.ActiveMemberID != "m1" {
		t.Fatalf("legacy currentUser not lifted: %q", doc.ActiveMemberID)
	}
}

func TestSanitizeLegacyDishFields(t *testing.T) {
	doc := Sanitize([]byte(`{"dishes":[{"id":"d1","author":"m1","type":"Entrante","cost":3.2,"price":9,"sustainabilityJustification":"local","priceJustification":"margin"}]}`))
	if len(doc.Dishes) != 1 {
		t.Fatalf("dishes = %v", doc.Dishes)
	}
	dish := doc.Dishes[0]
	if dish.AuthorID != "m1" {
		t.Errorf("authorId = %q, want m1", dish.AuthorID)
	}
	if dish.Type != DishStarter {
		t.Errorf("type = %q, want starter", dish.Type)
	}
	if dish.EstimatedCost != 3.2 || dish.TargetPrice != 9 {
		t.Errorf("legacy cost/price not lifted: %+v", dish)
	}
	if dish.SustainabilityNote != "local" || dish.PriceNote != "margin" {
		t.Errorf("legacy notes not lifted: %+v", dish)
	}
}

func TestSanitizeDuplicateDishIDs(t *testing.T) {
	doc := Sanitize([]byte(`{"dishes":[{"id":"d1","name":"first","authorId":"a"},{"id":"d1","name":"second","authorId":"b"},{"id":"","name":"anonymous"}]}`))
	if len(doc.Dishes) != 1 {
		t.Fatalf("dish count = %d, want 1", len(doc.Dishes))
	}
	if doc.Dishes[0].Name != "first" {
		t.Fatalf("first occurrence should win, got %q", doc.Dishes[0].Name)
	}
}

func TestSanitizePeerReviewOverwritePerPair(t *testing.T) {
	doc := Sanitize([]byte(`{"roster":[{"id":"a"},{"id":"b"},{"id":"c"}],"peerReviews":[{"evaluatorId":"a","targetId":"b","items":[{"category":"quality","score":2}]},{"evaluatorId":"a","targetId":"c","items":[]},{"evaluatorId":"a","targetId":"b","items":[{"category":"quality","score":5}]},{"evaluatorId":"b","targetId":"b","items":[]}]}`))
	if len(doc.PeerReviews) != 2 {
		t.Fatalf("review count = %d, want 2 (self-review dropped, pair deduped)", len(doc.PeerReviews))
	}
	for _, review := range doc.PeerReviews {
		if review.EvaluatorID == "a" && review.TargetID == "b" {
			if len(review.Items) != 1 || review.Items[0].Score != 5 {
				t.Fatalf("newest review should win: %+v", review)
			}
		}
	}
}
