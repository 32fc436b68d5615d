package project

import (
	"fmt"
	"strings"
)

// mergePolicy is one field-group reconciliation rule. The merge engine is a
// policy table so that adding a new gated field is data, not scattered code.
type mergePolicy struct {
	name  string
	apply func(doc *Project, incoming Project, contributorID string)
}

var mergePolicies = []mergePolicy{
	{name: "task-reports", apply: mergeTaskReports},
	{name: "dish-upsert", apply: mergeDishes},
	{name: "prototype-digital", apply: mergePrototypeDigital},
	{name: "prototype-physical", apply: mergePrototypePhysical},
}

// Merge folds a contributor's snapshot into the local document. Only content
// attributable to the named contributor is touched: micro tasks assigned to
// them, dishes they authored, and the prototype fields their role set gates.
// Everything else passes through unchanged, which keeps merges from
// different contributors commutative and repeat-merges idempotent. A
// contributor id absent from the local roster matches nothing and the merge
// is a no-op. The local document is never mutated.
func Merge(local Project, incomingRaw []byte, contributorID string) Project {
	incoming := Sanitize(incomingRaw)
	doc := local.Clone()
	for _, policy := range mergePolicies {
		policy.apply(&doc, incoming, contributorID)
	}
	return doc
}

// mergeTaskReports reconciles the report text of tasks assigned (locally) to
// the contributor. Empty local content takes the incoming text verbatim;
// conflicting content appends the incoming text under a contribution marker
// rather than overwriting; incoming text already contained in the local
// content is a no-op. The containment check is one-directional (incoming in
// local), a known limitation for adversarially reordered repeats.
func mergeTaskReports(doc *Project, incoming Project, contributorID string) {
	for i := range doc.MicroTasks {
		if doc.MicroTasks[i].AssigneeID != contributorID {
			continue
		}
		theirs, ok := incoming.TaskByID(doc.MicroTasks[i].ID)
		if !ok {
			continue
		}
		contributed := strings.TrimSpace(theirs.Content)
		if contributed == "" {
			continue
		}
		current := strings.TrimSpace(doc.MicroTasks[i].Content)
		if current == "" {
			doc.MicroTasks[i].Content = theirs.Content
			continue
		}
		if strings.Contains(current, contributed) {
			continue
		}
		marker := fmt.Sprintf("--- contribution from %s ---", doc.MemberName(contributorID))
		doc.MicroTasks[i].Content = doc.MicroTasks[i].Content + "\n\n" + marker + "\n" + contributed
	}
}

// mergeDishes upserts the contributor's authored dishes by id: replace the
// local dish with the same id, append when the id is new.
func mergeDishes(doc *Project, incoming Project, contributorID string) {
	for _, dish := range incoming.Dishes {
		if dish.AuthorID != contributorID {
			continue
		}
		replaced := false
		for i := range doc.Dishes {
			if doc.Dishes[i].ID == dish.ID {
				doc.Dishes[i] = dish
				replaced = true
				break
			}
		}
		if !replaced {
			doc.Dishes = append(doc.Dishes, dish)
		}
	}
}

// mergePrototypeDigital overwrites the digital link only when the
// contributor is in the local designer set and the incoming value is
// non-empty. Gating reads local role assignments: role changes never
// propagate through contribution merge.
func mergePrototypeDigital(doc *Project, incoming Project, contributorID string) {
	if !containsID(doc.Roles.DesignerIDs, contributorID) {
		return
	}
	if incoming.Prototype.DigitalLink != "" {
		doc.Prototype.DigitalLink = incoming.Prototype.DigitalLink
	}
}

// mergePrototypePhysical applies the non-empty-overwrite rule per sub-field
// for the artisan-owned prototype fields.
func mergePrototypePhysical(doc *Project, incoming Project, contributorID string) {
	if !containsID(doc.Roles.ArtisanIDs, contributorID) {
		return
	}
	if incoming.Prototype.PhysicalPhoto != "" {
		doc.Prototype.PhysicalPhoto = incoming.Prototype.PhysicalPhoto
	}
	if incoming.Prototype.PhysicalDescription != "" {
		doc.Prototype.PhysicalDescription = incoming.Prototype.PhysicalDescription
	}
	if incoming.Prototype.GeneralStyle != "" {
		doc.Prototype.GeneralStyle = incoming.Prototype.GeneralStyle
	}
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
