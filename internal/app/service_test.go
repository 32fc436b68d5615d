package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"brigade/api/internal/auth"
	"brigade/api/internal/config"
	"brigade/api/internal/history"
	"brigade/api/internal/project"
	"brigade/api/internal/search"
	"brigade/api/internal/store"

	"github.com/alicebob/miniredis/v2"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	projects, err := store.NewRedisStore("redis://"+mr.Addr(), "test")
	if err != nil {
		t.Fatalf("create redis store: %v", err)
	}
	t.Cleanup(func() { _ = projects.Close() })

	ctx := context.Background()
	doc := project.Default()
	doc.Roster = []project.Member{
		{ID: "m1", Name: "Luis", IsCoordinator: true},
		{ID: "m2", Name: "Ana"},
		{ID: "m3", Name: "Marta"},
	}
	if err := projects.Save(ctx, doc); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	cfg := config.Config{
		Profile:     "test",
		TokenSecret: "test-secret",
		SessionTTL:  time.Hour,
	}
	return New(ctx, cfg, projects, nil, nil, nil, nil)
}

func bindMember(t *testing.T, svc *Service, memberID string) Session {
	t.Helper()
	session, _, err := svc.Bind(context.Background(), memberID, "")
	if err != nil {
		t.Fatalf("bind %s: %v", memberID, err)
	}
	return session
}

func TestBindIssuesSessionAndMarksActive(t *testing.T) {
	svc := newTestService(t)

	session, doc, err := svc.Bind(context.Background(), "m2", "")
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("expected a token")
	}
	if session.MemberName != "Ana" {
		t.Fatalf("expected member name Ana, got %q", session.MemberName)
	}
	if session.Coordinator {
		t.Fatalf("m2 is not a coordinator")
	}
	if doc.ActiveMemberID != "m2" {
		t.Fatalf("expected active member m2, got %q", doc.ActiveMemberID)
	}
}

func TestBindUnknownMemberFails(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Bind(context.Background(), "ghost", "")
	var domainErr *DomainError
	if !asDomainError(err, &domainErr) || domainErr.Status != 404 {
		t.Fatalf("expected 404 domain error, got %v", err)
	}
}

func TestBindChecksPasscode(t *testing.T) {
	svc := newTestService(t)
	session := bindMember(t, svc, "m2")

	if err := svc.SetPasscode(context.Background(), session, "1234"); err != nil {
		t.Fatalf("set passcode: %v", err)
	}

	if _, _, err := svc.Bind(context.Background(), "m2", "9999"); err == nil {
		t.Fatalf("expected wrong passcode to be rejected")
	}
	if _, _, err := svc.Bind(context.Background(), "m2", "1234"); err != nil {
		t.Fatalf("correct passcode rejected: %v", err)
	}
}

func TestSessionFromTokenRechecksRoster(t *testing.T) {
	svc := newTestService(t)
	coordinator := bindMember(t, svc, "m1")
	member := bindMember(t, svc, "m3")

	if _, err := svc.SessionFromToken(member.Token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	_, err := svc.ReplaceRoster(context.Background(), coordinator, []project.Member{
		{ID: "m1", Name: "Luis", IsCoordinator: true},
		{ID: "m2", Name: "Ana"},
	})
	if err != nil {
		t.Fatalf("replace roster: %v", err)
	}

	if _, err := svc.SessionFromToken(member.Token); err == nil {
		t.Fatalf("expected token of a removed member to be rejected")
	}
}

func TestSessionFromTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.SessionFromToken("not-a-token"); err == nil {
		t.Fatalf("expected invalid token to be rejected")
	}
	stranger, err := auth.IssueToken([]byte("other-secret"), auth.Claims{
		Sub: "m2", Name: "Ana", JTI: "x", Exp: time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("issue stranger token: %v", err)
	}
	if _, err := svc.SessionFromToken(stranger); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}

func TestUnbindClearsBindingAndRecordsHistory(t *testing.T) {
	mr := miniredis.RunT(t)
	projects, err := store.NewRedisStore("redis://"+mr.Addr(), "test")
	if err != nil {
		t.Fatalf("create redis store: %v", err)
	}
	t.Cleanup(func() { _ = projects.Close() })

	ctx := context.Background()
	doc := project.Default()
	doc.Roster = []project.Member{{ID: "m1", Name: "Luis", IsCoordinator: true}}
	if err := projects.Save(ctx, doc); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	cfg := config.Config{Profile: "test", TokenSecret: "test-secret", SessionTTL: time.Hour}
	svc := New(ctx, cfg, projects, nil, history.New(t.TempDir()), nil, nil)

	session := bindMember(t, svc, "m1")
	unbound := svc.Unbind(ctx, session)
	if unbound.ActiveMemberID != "" {
		t.Fatalf("expected the binding to clear, got %q", unbound.ActiveMemberID)
	}

	commits, err := svc.History(10)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(commits) == 0 {
		t.Fatal("expected the unbind to be committed")
	}
	if commits[0].Message != "Unbind member" || commits[0].Author != "Luis" {
		t.Fatalf("unexpected head commit: %+v", commits[0])
	}
}

func TestExportImportRoundTripClearsBinding(t *testing.T) {
	svc := newTestService(t)
	coordinator := bindMember(t, svc, "m1")

	svc.SetConcept(context.Background(), coordinator, project.Concept{
		Name:   "La Brigada",
		Values: []string{"local", "seasonal"},
	})
	exported, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	doc, err := svc.Import(context.Background(), exported, coordinator)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if doc.Concept.Name != "La Brigada" {
		t.Fatalf("expected concept to survive the round trip, got %q", doc.Concept.Name)
	}
	if doc.ActiveMemberID != "" {
		t.Fatalf("import must clear the device binding, got %q", doc.ActiveMemberID)
	}
}

func TestImportRejectsNonJSON(t *testing.T) {
	svc := newTestService(t)
	coordinator := bindMember(t, svc, "m1")

	_, err := svc.Import(context.Background(), []byte("this is not json"), coordinator)
	var domainErr *DomainError
	if !asDomainError(err, &domainErr) || domainErr.Code != "INVALID_SNAPSHOT" {
		t.Fatalf("expected INVALID_SNAPSHOT, got %v", err)
	}
}

func TestMergeRejectsUnknownContributor(t *testing.T) {
	svc := newTestService(t)
	snapshot, err := project.Encode(svc.Project())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	_, err = svc.MergeContribution(context.Background(), snapshot, "ghost")
	var domainErr *DomainError
	if !asDomainError(err, &domainErr) || domainErr.Code != "UNKNOWN_CONTRIBUTOR" || domainErr.Status != 422 {
		t.Fatalf("expected 422 UNKNOWN_CONTRIBUTOR, got %v", err)
	}
}

func TestMergeKeepsAuthorshipScope(t *testing.T) {
	svc := newTestService(t)
	coordinator := bindMember(t, svc, "m1")

	if _, err := svc.AssignTask(context.Background(), coordinator, 1, "m2"); err != nil {
		t.Fatalf("assign task: %v", err)
	}

	// m2 writes their report offline and sends the whole snapshot back.
	remote := svc.Project()
	for i := range remote.MicroTasks {
		remote.MicroTasks[i].Content = "edited offline"
	}
	snapshot, err := project.Encode(remote)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	doc, err := svc.MergeContribution(context.Background(), snapshot, "m2")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	for _, task := range doc.MicroTasks {
		if task.ID == 1 {
			if task.Content != "edited offline" {
				t.Fatalf("expected m2's own task to merge, got %q", task.Content)
			}
			continue
		}
		if task.Content == "edited offline" {
			t.Fatalf("task %d is not m2's and must not merge", task.ID)
		}
	}
}

func TestTaskContentRequiresAssignee(t *testing.T) {
	svc := newTestService(t)
	coordinator := bindMember(t, svc, "m1")
	other := bindMember(t, svc, "m3")

	if _, err := svc.AssignTask(context.Background(), coordinator, 2, "m2"); err != nil {
		t.Fatalf("assign task: %v", err)
	}

	_, err := svc.SetTaskContent(context.Background(), other, 2, "sneaky edit")
	var domainErr *DomainError
	if !asDomainError(err, &domainErr) || domainErr.Status != 403 {
		t.Fatalf("expected 403 for a non-assignee, got %v", err)
	}

	// The coordinator can always write.
	if _, err := svc.SetTaskContent(context.Background(), coordinator, 2, "reviewed"); err != nil {
		t.Fatalf("coordinator write: %v", err)
	}
}

func TestDishOwnership(t *testing.T) {
	svc := newTestService(t)
	author := bindMember(t, svc, "m2")
	other := bindMember(t, svc, "m3")

	doc, err := svc.AddDish(context.Background(), author, project.Dish{
		ID:   "d1",
		Name: "Arroz de verduras",
		Type: project.DishMain,
	})
	if err != nil {
		t.Fatalf("add dish: %v", err)
	}
	if len(doc.Dishes) != 1 || doc.Dishes[0].AuthorID != "m2" {
		t.Fatalf("expected the session member as author, got %+v", doc.Dishes)
	}

	_, err = svc.RemoveDish(context.Background(), other, "d1")
	var domainErr *DomainError
	if !asDomainError(err, &domainErr) || domainErr.Status != 403 {
		t.Fatalf("expected 403 for a non-author delete, got %v", err)
	}
	if _, err := svc.RemoveDish(context.Background(), author, "d1"); err != nil {
		t.Fatalf("author delete: %v", err)
	}
}

func TestPrototypeRoleGate(t *testing.T) {
	svc := newTestService(t)
	coordinator := bindMember(t, svc, "m1")
	member := bindMember(t, svc, "m2")

	_, err := svc.SetPrototypeField(context.Background(), member, project.FieldDigitalLink, "https://menu.example")
	var domainErr *DomainError
	if !asDomainError(err, &domainErr) || domainErr.Status != 403 {
		t.Fatalf("expected 403 before the member is a designer, got %v", err)
	}

	if _, err := svc.SetRoleMembers(context.Background(), coordinator, project.RoleDesigners, []string{"m2"}); err != nil {
		t.Fatalf("set designers: %v", err)
	}
	doc, err := svc.SetPrototypeField(context.Background(), member, project.FieldDigitalLink, "https://menu.example")
	if err != nil {
		t.Fatalf("designer write: %v", err)
	}
	if doc.Prototype.DigitalLink != "https://menu.example" {
		t.Fatalf("expected digital link to be set, got %q", doc.Prototype.DigitalLink)
	}
}

func TestSaveReviewForcesEvaluator(t *testing.T) {
	svc := newTestService(t)
	member := bindMember(t, svc, "m2")

	doc, err := svc.SaveReview(context.Background(), member, project.PeerReview{
		EvaluatorID: "m1", // lies about who wrote it
		TargetID:    "m3",
		Items: []project.ReviewItem{
			{Category: "commitment", Score: 4},
			{Category: "quality", Score: 5},
			{Category: "teamwork", Score: 4, Comment: "Shares findings."},
			{Category: "communication", Score: 3},
		},
	})
	if err != nil {
		t.Fatalf("save review: %v", err)
	}
	if len(doc.PeerReviews) != 1 {
		t.Fatalf("expected one review, got %d", len(doc.PeerReviews))
	}
	review := doc.PeerReviews[0]
	if review.EvaluatorID != "m2" {
		t.Fatalf("evaluator must be the session member, got %q", review.EvaluatorID)
	}
	if review.SavedAt == 0 {
		t.Fatalf("expected SavedAt to be stamped")
	}
}

func TestHistoryDisabledReturnsServiceError(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.History(10)
	var domainErr *DomainError
	if !asDomainError(err, &domainErr) || domainErr.Status != 503 {
		t.Fatalf("expected 503 when history is not configured, got %v", err)
	}
	_, err = svc.Archive(context.Background(), 10)
	if !asDomainError(err, &domainErr) || domainErr.Status != 503 {
		t.Fatalf("expected 503 when the archive is not configured, got %v", err)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	svc := newTestService(t)
	coordinator := bindMember(t, svc, "m1")

	svc.SetConcept(context.Background(), coordinator, project.Concept{Name: "Temp"})
	doc := svc.Reset(context.Background(), coordinator)

	if doc.Concept.Name != "" {
		t.Fatalf("expected reset to clear the concept, got %q", doc.Concept.Name)
	}
	if len(doc.MicroTasks) != 10 {
		t.Fatalf("expected the fixed task catalog, got %d tasks", len(doc.MicroTasks))
	}
	if len(doc.Roster) != 0 {
		t.Fatalf("expected an empty roster after reset, got %d", len(doc.Roster))
	}
}

func asDomainError(err error, target **DomainError) bool {
	return errors.As(err, target)
}

func TestUpdateIdentityPartial(t *testing.T) {
	svc := newTestService(t)
	session := bindMember(t, svc, "m1")

	name := "IES Mediterrani"
	doc := svc.UpdateIdentity(context.Background(), session, IdentityInput{SchoolName: &name})
	if doc.Identity.SchoolName != "IES Mediterrani" {
		t.Fatalf("expected school name to update, got %q", doc.Identity.SchoolName)
	}

	team := "Brigada Nord"
	doc = svc.UpdateIdentity(context.Background(), session, IdentityInput{TeamName: &team})
	if doc.Identity.SchoolName != "IES Mediterrani" {
		t.Fatalf("nil fields must be left untouched, got %q", doc.Identity.SchoolName)
	}
	if doc.Identity.TeamName != "Brigada Nord" {
		t.Fatalf("expected team name to update, got %q", doc.Identity.TeamName)
	}
}

func TestSearchWithoutBackendIsEmptyNotNil(t *testing.T) {
	svc := newTestService(t)
	resp := svc.Search(search.Query{Text: "plaza"})
	if resp.Results == nil {
		t.Fatalf("expected a non-nil result slice")
	}
	if resp.Total != 0 {
		t.Fatalf("expected no hits without a backend, got %d", resp.Total)
	}
}

func TestExportIsStableForUnchangedDocument(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	second, err := svc.Export(context.Background())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("expected deterministic snapshots")
	}
	if !strings.HasSuffix(string(first), "\n") {
		t.Fatalf("expected a trailing newline")
	}
}
