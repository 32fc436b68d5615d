package project

import (
	"encoding/json"
	"strings"
)

// Sanitize coerces any raw blob into a canonical document. Input may be
// empty, partial, structurally outdated, or not JSON at all; unsanitizable
// leaves are dropped and replaced with defaults rather than reported. The
// function is idempotent: Sanitize(Encode(Sanitize(x))) equals Sanitize(x).
func Sanitize(raw []byte) Project {
	doc := Default()
	var sections map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &sections) != nil || sections == nil {
		return doc
	}
	doc.Identity = sanitizeIdentity(sections)
	doc.Roster = sanitizeRoster(sections)
	doc.ZoneSelection = sanitizeZone(sections)
	doc.Concept = sanitizeConcept(sections)
	doc.Missions = sanitizeMissions(sections)
	doc.MicroTasks = sanitizeMicroTasks(sections)
	doc.Dishes = sanitizeDishes(sections)
	doc.Prototype = sanitizePrototype(sections)
	doc.Roles = sanitizeRoles(sections)
	doc.PeerReviews = sanitizePeerReviews(sections)
	doc.ActiveMemberID = sanitizeActiveMember(sections, doc.Roster)
	return doc
}

func sanitizeIdentity(sections map[string]json.RawMessage) Identity {
	fields := objectFields(sections["identity"])
	if fields == nil {
		// Legacy exports carried the identity fields at the top level.
		fields = sections
	}
	return Identity{
		SchoolName:   stringAt(fields, "schoolName"),
		SchoolLogo:   stringAt(fields, "schoolLogo"),
		AcademicYear: stringAt(fields, "academicYear"),
		TeamName:     stringAt(fields, "teamName"),
		GroupPhoto:   stringAt(fields, "groupPhoto"),
	}
}

func sanitizeRoster(sections map[string]json.RawMessage) []Member {
	items := listItems(sections["roster"])
	if items == nil {
		items = listItems(sections["team"])
	}
	members := make([]Member, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		var member Member
		if json.Unmarshal(item, &member) != nil {
			continue
		}
		if strings.TrimSpace(member.ID) == "" || seen[member.ID] {
			continue
		}
		seen[member.ID] = true
		members = append(members, member)
	}
	// At most one coordinator; the last flagged entry wins.
	last := -1
	for i := range members {
		if members[i].IsCoordinator {
			last = i
		}
	}
	for i := range members {
		members[i].IsCoordinator = i == last
	}
	return members
}

func sanitizeZone(sections map[string]json.RawMessage) ZoneSelection {
	var selection ZoneSelection
	if fields := objectFields(sections["zoneSelection"]); fields != nil {
		if raw, ok := fields["zone"]; ok {
			var zone Zone
			if json.Unmarshal(raw, &zone) == nil && zone.ID != 0 {
				selection.Zone = &zone
			}
		}
		selection.Justification = stringAt(fields, "justification")
		return selection
	}
	if raw, ok := sections["selectedZone"]; ok {
		var zone Zone
		if json.Unmarshal(raw, &zone) == nil && zone.ID != 0 {
			selection.Zone = &zone
		}
	}
	selection.Justification = stringAt(sections, "zoneJustification")
	return selection
}

func sanitizeConcept(sections map[string]json.RawMessage) Concept {
	fields := objectFields(sections["concept"])
	return Concept{
		Name:           stringAt(fields, "name"),
		Slogan:         stringAt(fields, "slogan"),
		TargetAudience: stringAt(fields, "targetAudience"),
		Values:         stringListAt(fields, "values"),
	}
}

func sanitizeMissions(sections map[string]json.RawMessage) Missions {
	var missions Missions
	fields := objectFields(sections["missions"])
	if fields == nil {
		return missions
	}
	decodeInto(fields["explorer"], &missions.Explorer)
	decodeInto(fields["connector"], &missions.Connector)
	decodeInto(fields["guardian"], &missions.Guardian)
	return missions
}

func sanitizeMicroTasks(sections map[string]json.RawMessage) []MicroTask {
	items := listItems(sections["microTasks"])
	if items == nil {
		if task2 := objectFields(sections["task2"]); task2 != nil {
			items = listItems(task2["tasks"])
		}
	}
	type taskWire struct {
		ID         int    `json:"id"`
		AssigneeID string `json:"assigneeId"`
		AssignedTo string `json:"assignedToId"`
		Content    string `json:"content"`
	}
	byID := make(map[int]taskWire, len(items))
	for _, item := range items {
		var task taskWire
		if json.Unmarshal(item, &task) != nil {
			continue
		}
		byID[task.ID] = task
	}
	// The catalog is authoritative for ids and prompts; only assignee and
	// content are taken from input, so tasks can never be created or lost.
	tasks := TaskCatalog()
	for i := range tasks {
		wire, ok := byID[tasks[i].ID]
		if !ok {
			continue
		}
		assignee := wire.AssigneeID
		if assignee == "" {
			assignee = wire.AssignedTo
		}
		tasks[i].AssigneeID = assignee
		tasks[i].Content = wire.Content
	}
	return tasks
}

func sanitizeDishes(sections map[string]json.RawMessage) []Dish {
	items := listItems(sections["dishes"])
	dishes := make([]Dish, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		type dishWire struct {
			Dish
			Author         string  `json:"author"`
			Cost           float64 `json:"cost"`
			Price          float64 `json:"price"`
			Sustainability string  `json:"sustainabilityJustification"`
			PriceJust      string  `json:"priceJustification"`
		}
		var wire dishWire
		if json.Unmarshal(item, &wire) != nil {
			continue
		}
		dish := wire.Dish
		if strings.TrimSpace(dish.ID) == "" || seen[dish.ID] {
			continue
		}
		seen[dish.ID] = true
		if dish.AuthorID == "" {
			dish.AuthorID = wire.Author
		}
		if dish.EstimatedCost == 0 {
			dish.EstimatedCost = wire.Cost
		}
		if dish.TargetPrice == 0 {
			dish.TargetPrice = wire.Price
		}
		if dish.SustainabilityNote == "" {
			dish.SustainabilityNote = wire.Sustainability
		}
		if dish.PriceNote == "" {
			dish.PriceNote = wire.PriceJust
		}
		dish.Type = normalizeWireDishType(string(dish.Type))
		if dish.Ingredients == nil {
			dish.Ingredients = []IngredientRow{}
		}
		if dish.Allergens == nil {
			dish.Allergens = []string{}
		}
		dishes = append(dishes, dish)
	}
	return dishes
}

// normalizeWireDishType also accepts the course labels older exports used.
func normalizeWireDishType(value string) DishType {
	switch value {
	case "Aperitivo/Snack":
		return DishAppetizer
	case "Entrante":
		return DishStarter
	case "Plato Principal":
		return DishMain
	case "Postre":
		return DishDessert
	}
	return NormalizeDishType(value)
}

func sanitizePrototype(sections map[string]json.RawMessage) MenuPrototype {
	fields := objectFields(sections["menuPrototype"])
	return MenuPrototype{
		GeneralStyle:        stringAt(fields, "generalStyle"),
		DigitalLink:         stringAt(fields, "digitalLink"),
		PhysicalPhoto:       stringAt(fields, "physicalPhoto"),
		PhysicalDescription: stringAt(fields, "physicalDescription"),
	}
}

func sanitizeRoles(sections map[string]json.RawMessage) RoleSets {
	fields := objectFields(sections["roleAssignments"])
	if fields == nil {
		// Legacy singular role holders lived under task6.
		fields = objectFields(sections["task6"])
	}
	return RoleSets{
		DesignerIDs: roleSetAt(fields, "designerIds", "designerId"),
		ArtisanIDs:  roleSetAt(fields, "artisanIds", "artisanId"),
		EditorIDs:   roleSetAt(fields, "editorIds", "editorId"),
	}
}

// roleSetAt reads the set-valued field, lifting the legacy singular field
// into a singleton set only when the set-valued field is absent.
func roleSetAt(fields map[string]json.RawMessage, plural, singular string) []string {
	if raw, ok := fields[plural]; ok {
		var ids []string
		if json.Unmarshal(raw, &ids) == nil {
			return dedupeIDs(ids)
		}
		return []string{}
	}
	if raw, ok := fields[singular]; ok {
		var id string
		if json.Unmarshal(raw, &id) == nil && id != "" {
			return []string{id}
		}
	}
	return []string{}
}

func sanitizePeerReviews(sections map[string]json.RawMessage) []PeerReview {
	items := listItems(sections["peerReviews"])
	kept := make([]PeerReview, 0, len(items))
	seen := make(map[string]bool, len(items))
	// Walk backwards so the newest review per ordered pair wins, matching
	// the save-overwrites rule.
	for i := len(items) - 1; i >= 0; i-- {
		var review PeerReview
		if json.Unmarshal(items[i], &review) != nil {
			continue
		}
		if review.EvaluatorID == "" || review.TargetID == "" || review.EvaluatorID == review.TargetID {
			continue
		}
		pair := review.EvaluatorID + "\x00" + review.TargetID
		if seen[pair] {
			continue
		}
		seen[pair] = true
		if review.Items == nil {
			review.Items = []ReviewItem{}
		}
		kept = append(kept, review)
	}
	for left, right := 0, len(kept)-1; left < right; left, right = left+1, right-1 {
		kept[left], kept[right] = kept[right], kept[left]
	}
	return kept
}

func sanitizeActiveMember(sections map[string]json.RawMessage, roster []Member) string {
	id := stringAt(sections, "activeMemberId")
	if id == "" {
		id = stringAt(sections, "currentUser")
	}
	for _, member := range roster {
		if member.ID == id {
			return id
		}
	}
	return ""
}

func objectFields(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil {
		return nil
	}
	return fields
}

func listItems(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil {
		return nil
	}
	return items
}

func stringAt(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var value string
	if json.Unmarshal(raw, &value) != nil {
		return ""
	}
	return value
}

func stringListAt(fields map[string]json.RawMessage, key string) []string {
	raw, ok := fields[key]
	if !ok {
		return []string{}
	}
	var values []string
	if json.Unmarshal(raw, &values) != nil || values == nil {
		return []string{}
	}
	return values
}

func decodeInto(raw json.RawMessage, out any) {
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, out)
	}
}

func dedupeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
