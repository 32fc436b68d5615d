package project

import (
	"reflect"
	"strings"
	"testing"
)

func testTeam(t *testing.T) Project {
	t.Helper()
	doc := Default()
	doc.Roster = []Member{
		{ID: "c", Name: "Carmen", IsCoordinator: true},
		{ID: "m1", Name: "Ana"},
		{ID: "m2", Name: "Luis"},
	}
	return doc
}

func encodeSnapshot(t *testing.T, doc Project) []byte {
	t.Helper()
	encoded, err := Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return encoded
}

func TestMergeTakesReportWhenLocalEmpty(t *testing.T) {
	local := testTeam(t)
	if err := local.AssignTask(1, "m1"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	remote := local.Clone()
	if err := remote.SetTaskContent(1, "Market survey done"); err != nil {
		t.Fatalf("set content: %v", err)
	}
	snapshot := encodeSnapshot(t, remote)

	merged := Merge(local, snapshot, "m1")
	task, _ := merged.TaskByID(1)
	if task.Content != "Market survey done" {
		t.Fatalf("content = %q, want incoming verbatim", task.Content)
	}

	// Re-merging the same snapshot must not change anything.
	again := Merge(merged, snapshot, "m1")
	if !reflect.DeepEqual(merged, again) {
		t.Fatalf("repeat merge not idempotent:\nfirst:  %+v\nsecond: %+v", merged.MicroTasks[0], again.MicroTasks[0])
	}
}

func TestMergeAppendsConflictingReport(t *testing.T) {
	local := testTeam(t)
	if err := local.AssignTask(2, "m1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := local.SetTaskContent(2, "A"); err != nil {
		t.Fatalf("set content: %v", err)
	}

	remote := local.Clone()
	if err := remote.SetTaskContent(2, "B"); err != nil {
		t.Fatalf("set content: %v", err)
	}
	snapshot := encodeSnapshot(t, remote)

	merged := Merge(local, snapshot, "m1")
	task, _ := merged.TaskByID(2)
	if !strings.Contains(task.Content, "A") || !strings.Contains(task.Content, "B") {
		t.Fatalf("append lost content: %q", task.Content)
	}
	if !strings.Contains(task.Content, "contribution from Ana") {
		t.Fatalf("missing contribution marker: %q", task.Content)
	}

	again := Merge(merged, snapshot, "m1")
	mergedTask, _ := again.TaskByID(2)
	if strings.Count(mergedTask.Content, "B") != strings.Count(task.Content, "B") {
		t.Fatalf("repeat merge duplicated text: %q", mergedTask.Content)
	}
}

func TestMergeAppendPreservesLocalWhitespace(t *testing.T) {
	local := testTeam(t)
	if err := local.AssignTask(2, "m1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := local.SetTaskContent(2, "  First line.\n\nSecond paragraph.\n"); err != nil {
		t.Fatalf("set content: %v", err)
	}

	remote := local.Clone()
	if err := remote.SetTaskContent(2, "Offline notes."); err != nil {
		t.Fatalf("set content: %v", err)
	}

	merged := Merge(local, encodeSnapshot(t, remote), "m1")
	task, _ := merged.TaskByID(2)
	if !strings.HasPrefix(task.Content, "  First line.\n\nSecond paragraph.\n") {
		t.Fatalf("append rewrote the local report: %q", task.Content)
	}
	if !strings.HasSuffix(task.Content, "Offline notes.") {
		t.Fatalf("append lost the incoming text: %q", task.Content)
	}
}

func TestMergeIgnoresUnassignedTasks(t *testing.T) {
	local := testTeam(t)
	if err := local.AssignTask(3, "m2"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	remote := local.Clone()
	if err := remote.SetTaskContent(3, "not mine to merge"); err != nil {
		t.Fatalf("set content: %v", err)
	}

	merged := Merge(local, encodeSnapshot(t, remote), "m1")
	task, _ := merged.TaskByID(3)
	if task.Content != "" {
		t.Fatalf("task assigned to m2 changed in m1 merge: %q", task.Content)
	}
}

func TestMergeDishUpsert(t *testing.T) {
	local := testTeam(t)
	if err := local.AddDish(Dish{ID: "d1", Name: "Old name", Type: DishMain}, "m1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := local.AddDish(Dish{ID: "d2", Name: "Luis dish", Type: DishStarter}, "m2"); err != nil {
		t.Fatalf("add: %v", err)
	}

	remote := local.Clone()
	updated, _ := remote.DishByID("d1")
	updated.Name = "New name"
	if err := remote.UpdateDish(updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := remote.AddDish(Dish{ID: "d3", Name: "Dessert", Type: DishDessert}, "m1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	// m1's snapshot also carries a stale copy of m2's dish; it must not win.
	stale, _ := remote.DishByID("d2")
	stale.Name = "Tampered"
	for i := range remote.Dishes {
		if remote.Dishes[i].ID == "d2" {
			remote.Dishes[i] = stale
		}
	}
	snapshot := encodeSnapshot(t, remote)

	merged := Merge(local, snapshot, "m1")
	if len(merged.Dishes) != 3 {
		t.Fatalf("dish count = %d, want 3", len(merged.Dishes))
	}
	replaced, _ := merged.DishByID("d1")
	if replaced.Name != "New name" {
		t.Errorf("d1 not replaced: %q", replaced.Name)
	}
	other, _ := merged.DishByID("d2")
	if other.Name != "Luis dish" {
		t.Errorf("m2's dish changed in m1 merge: %q", other.Name)
	}

	again := Merge(merged, snapshot, "m1")
	if len(again.Dishes) != 3 {
		t.Fatalf("repeat merge changed dish count: %d", len(again.Dishes))
	}
}

func TestMergeRoleGating(t *testing.T) {
	local := testTeam(t)
	remote := local.Clone()
	remote.Prototype.DigitalLink = "https://menu.example/new"
	remote.Prototype.PhysicalDescription = "linen cover"
	snapshot := encodeSnapshot(t, remote)

	// m1 holds no role: nothing may change.
	merged := Merge(local, snapshot, "m1")
	if merged.Prototype.DigitalLink != "" || merged.Prototype.PhysicalDescription != "" {
		t.Fatalf("ungated prototype write: %+v", merged.Prototype)
	}

	// As designer, only the digital link is in scope.
	if err := local.SetRoleMembers(RoleDesigners, []string{"m1"}); err != nil {
		t.Fatalf("roles: %v", err)
	}
	merged = Merge(local, snapshot, "m1")
	if merged.Prototype.DigitalLink != "https://menu.example/new" {
		t.Errorf("designer link not merged: %+v", merged.Prototype)
	}
	if merged.Prototype.PhysicalDescription != "" {
		t.Errorf("designer wrote artisan field: %+v", merged.Prototype)
	}

	// Empty incoming values never clobber local ones.
	local.Prototype.DigitalLink = "https://menu.example/current"
	blank := local.Clone()
	blank.Prototype.DigitalLink = ""
	merged = Merge(local, encodeSnapshot(t, blank), "m1")
	if merged.Prototype.DigitalLink != "https://menu.example/current" {
		t.Errorf("empty incoming value clobbered local link: %q", merged.Prototype.DigitalLink)
	}
}

func TestMergeScopedToContributor(t *testing.T) {
	local := testTeam(t)
	if err := local.AssignTask(1, "m1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := local.AddDish(Dish{ID: "d1", Name: "Ana dish"}, "m1"); err != nil {
		t.Fatalf("add: %v", err)
	}

	// A snapshot full of m1's work merged as m2 must leave tasks and dishes
	// byte-identical.
	remote := local.Clone()
	if err := remote.SetTaskContent(1, "work by m1"); err != nil {
		t.Fatalf("set content: %v", err)
	}
	changed, _ := remote.DishByID("d1")
	changed.Name = "changed"
	if err := remote.UpdateDish(changed); err != nil {
		t.Fatalf("update: %v", err)
	}

	merged := Merge(local, encodeSnapshot(t, remote), "m2")
	if !reflect.DeepEqual(merged.MicroTasks, local.MicroTasks) {
		t.Errorf("microTasks changed for non-assignee contributor")
	}
	if !reflect.DeepEqual(merged.Dishes, local.Dishes) {
		t.Errorf("dishes changed for non-author contributor")
	}
}

func TestMergeUnknownContributorIsNoOp(t *testing.T) {
	local := testTeam(t)
	if err := local.AssignTask(1, "m1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	remote := local.Clone()
	if err := remote.SetTaskContent(1, "anything"); err != nil {
		t.Fatalf("set content: %v", err)
	}

	merged := Merge(local, encodeSnapshot(t, remote), "ghost")
	if !reflect.DeepEqual(merged, local) {
		t.Fatalf("unknown contributor changed the document")
	}
}

func TestMergeLeavesSharedSectionsUntouched(t *testing.T) {
	local := testTeam(t)
	remote := local.Clone()
	remote.Identity.TeamName = "Renamed"
	remote.Concept.Name = "Other concept"
	remote.Roster = append(remote.Roster, Member{ID: "intruder"})
	if err := remote.SetRoleMembers(RoleEditors, []string{"m2"}); err != nil {
		t.Fatalf("roles: %v", err)
	}

	merged := Merge(local, encodeSnapshot(t, remote), "m1")
	if merged.Identity != local.Identity {
		t.Errorf("identity propagated through contribution merge")
	}
	if !reflect.DeepEqual(merged.Roster, local.Roster) {
		t.Errorf("roster propagated through contribution merge")
	}
	if !reflect.DeepEqual(merged.Concept, local.Concept) {
		t.Errorf("concept propagated through contribution merge")
	}
	if !reflect.DeepEqual(merged.Roles, local.Roles) {
		t.Errorf("role assignments propagated through contribution merge")
	}
}

func TestMergeCommutesAcrossContributors(t *testing.T) {
	local := testTeam(t)
	if err := local.AssignTask(1, "m1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := local.AssignTask(2, "m2"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	fromAna := local.Clone()
	if err := fromAna.SetTaskContent(1, "ana's survey"); err != nil {
		t.Fatalf("set content: %v", err)
	}
	fromLuis := local.Clone()
	if err := fromLuis.SetTaskContent(2, "luis's price table"); err != nil {
		t.Fatalf("set content: %v", err)
	}
	anaSnapshot := encodeSnapshot(t, fromAna)
	luisSnapshot := encodeSnapshot(t, fromLuis)

	oneWay := Merge(Merge(local, anaSnapshot, "m1"), luisSnapshot, "m2")
	otherWay := Merge(Merge(local, luisSnapshot, "m2"), anaSnapshot, "m1")
	if !reflect.DeepEqual(oneWay, otherWay) {
		t.Fatalf("merge order changed the outcome")
	}
}
