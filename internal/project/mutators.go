package project

import (
	"fmt"
	"strings"
)

// Mutators are pure (doc, args) -> doc transforms over the canonical
// document. Each either fully applies or fully rejects its change; callers
// persist after a successful mutation.

func (p *Project) SetSchoolSettings(name, year string) {
	p.Identity.SchoolName = name
	p.Identity.AcademicYear = year
}

func (p *Project) SetTeamName(name string) {
	p.Identity.TeamName = name
}

func (p *Project) SetSchoolLogo(ref string) {
	p.Identity.SchoolLogo = ref
}

func (p *Project) SetGroupPhoto(ref string) {
	p.Identity.GroupPhoto = ref
}

// ReplaceRoster swaps the member list wholesale. Coordinator uniqueness is
// re-enforced (last flagged entry wins) and a bound identity that no longer
// resolves is cleared. Ownership references elsewhere are left alone: a
// removed member orphans its tasks and dishes, it does not cascade.
func (p *Project) ReplaceRoster(members []Member) error {
	seen := make(map[string]bool, len(members))
	next := make([]Member, 0, len(members))
	for _, member := range members {
		if strings.TrimSpace(member.ID) == "" {
			return fmt.Errorf("member %q has no id", member.Name)
		}
		if seen[member.ID] {
			return fmt.Errorf("duplicate member id %q", member.ID)
		}
		seen[member.ID] = true
		next = append(next, member)
	}
	last := -1
	for i := range next {
		if next[i].IsCoordinator {
			last = i
		}
	}
	for i := range next {
		next[i].IsCoordinator = i == last
	}
	p.Roster = next
	if !p.HasMember(p.ActiveMemberID) {
		p.ActiveMemberID = ""
	}
	return nil
}

// SetMemberPasscode stores the bcrypt hash a member binds with. An empty
// hash removes the passcode requirement.
func (p *Project) SetMemberPasscode(memberID, hash string) error {
	for i := range p.Roster {
		if p.Roster[i].ID == memberID {
			p.Roster[i].PasscodeHash = hash
			return nil
		}
	}
	return fmt.Errorf("member %q is not in the roster", memberID)
}

func (p *Project) SelectZone(zone Zone) {
	selected := zone
	p.ZoneSelection.Zone = &selected
}

func (p *Project) SetZoneJustification(text string) {
	p.ZoneSelection.Justification = text
}

func (p *Project) SetConcept(concept Concept) {
	if concept.Values == nil {
		concept.Values = []string{}
	}
	p.Concept = concept
}

func (p *Project) SetExplorerMission(mission ExplorerMission) {
	p.Missions.Explorer = mission
}

func (p *Project) SetConnectorMission(mission ConnectorMission) {
	p.Missions.Connector = mission
}

func (p *Project) SetGuardianMission(mission GuardianMission) {
	p.Missions.Guardian = mission
}

// AssignTask binds a catalog task to a member, or unassigns it when memberID
// is empty.
func (p *Project) AssignTask(taskID int, memberID string) error {
	if memberID != "" && !p.HasMember(memberID) {
		return fmt.Errorf("member %q is not in the roster", memberID)
	}
	for i := range p.MicroTasks {
		if p.MicroTasks[i].ID == taskID {
			p.MicroTasks[i].AssigneeID = memberID
			return nil
		}
	}
	return fmt.Errorf("task %d is not in the catalog", taskID)
}

func (p *Project) SetTaskContent(taskID int, content string) error {
	for i := range p.MicroTasks {
		if p.MicroTasks[i].ID == taskID {
			p.MicroTasks[i].Content = content
			return nil
		}
	}
	return fmt.Errorf("task %d is not in the catalog", taskID)
}

// AddDish appends a new dish. Authorship is forced to the given member and
// a duplicate id is rejected before the document changes.
func (p *Project) AddDish(dish Dish, authorID string) error {
	if strings.TrimSpace(dish.ID) == "" {
		return fmt.Errorf("dish has no id")
	}
	if _, exists := p.DishByID(dish.ID); exists {
		return fmt.Errorf("dish id %q already exists", dish.ID)
	}
	dish.AuthorID = authorID
	dish.Type = NormalizeDishType(string(dish.Type))
	if dish.Ingredients == nil {
		dish.Ingredients = []IngredientRow{}
	}
	if dish.Allergens == nil {
		dish.Allergens = []string{}
	}
	p.Dishes = append(p.Dishes, dish)
	return nil
}

// UpdateDish replaces an existing dish's fields. The author provenance set
// at creation is preserved.
func (p *Project) UpdateDish(dish Dish) error {
	for i := range p.Dishes {
		if p.Dishes[i].ID == dish.ID {
			dish.AuthorID = p.Dishes[i].AuthorID
			dish.Type = NormalizeDishType(string(dish.Type))
			if dish.Ingredients == nil {
				dish.Ingredients = []IngredientRow{}
			}
			if dish.Allergens == nil {
				dish.Allergens = []string{}
			}
			p.Dishes[i] = dish
			return nil
		}
	}
	return fmt.Errorf("dish %q not found", dish.ID)
}

func (p *Project) RemoveDish(id string) error {
	for i := range p.Dishes {
		if p.Dishes[i].ID == id {
			p.Dishes = append(p.Dishes[:i], p.Dishes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("dish %q not found", id)
}

// PlaceholderAssignment seeds one skeleton dish per author when the team
// plans the menu structure up front.
type PlaceholderAssignment struct {
	ID       string
	Name     string
	Type     DishType
	AuthorID string
}

// ReplaceDishesWithPlaceholders swaps the dish list for fresh skeletons.
func (p *Project) ReplaceDishesWithPlaceholders(assignments []PlaceholderAssignment) error {
	dishes := make([]Dish, 0, len(assignments))
	seen := make(map[string]bool, len(assignments))
	for _, assignment := range assignments {
		if strings.TrimSpace(assignment.ID) == "" {
			return fmt.Errorf("placeholder %q has no id", assignment.Name)
		}
		if seen[assignment.ID] {
			return fmt.Errorf("duplicate placeholder id %q", assignment.ID)
		}
		if !p.HasMember(assignment.AuthorID) {
			return fmt.Errorf("author %q is not in the roster", assignment.AuthorID)
		}
		seen[assignment.ID] = true
		dishes = append(dishes, Dish{
			ID:          assignment.ID,
			Name:        assignment.Name,
			Type:        NormalizeDishType(string(assignment.Type)),
			Servings:    1,
			Ingredients: []IngredientRow{},
			Allergens:   []string{},
			AuthorID:    assignment.AuthorID,
		})
	}
	p.Dishes = dishes
	return nil
}

func (p *Project) SetPrototypeField(field PrototypeField, value string) error {
	switch field {
	case FieldGeneralStyle:
		p.Prototype.GeneralStyle = value
	case FieldDigitalLink:
		p.Prototype.DigitalLink = value
	case FieldPhysicalPhoto:
		p.Prototype.PhysicalPhoto = value
	case FieldPhysicalDescription:
		p.Prototype.PhysicalDescription = value
	default:
		return fmt.Errorf("unknown prototype field %q", field)
	}
	return nil
}

func (p *Project) SetRoleMembers(set RoleSet, memberIDs []string) error {
	ids := dedupeIDs(memberIDs)
	for _, id := range ids {
		if !p.HasMember(id) {
			return fmt.Errorf("member %q is not in the roster", id)
		}
	}
	switch set {
	case RoleDesigners:
		p.Roles.DesignerIDs = ids
	case RoleArtisans:
		p.Roles.ArtisanIDs = ids
	case RoleEditors:
		p.Roles.EditorIDs = ids
	default:
		return fmt.Errorf("unknown role set %q", set)
	}
	return nil
}
