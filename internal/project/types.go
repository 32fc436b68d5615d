// Package project defines the canonical project document shared by a team,
// the sanitizer that normalizes any loaded or imported blob into it, and the
// merge engine that folds a teammate's contribution into the local copy.
package project

// Member is one roster entry. ID is immutable once created and is the join
// key for every ownership reference in the document.
type Member struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	IsCoordinator bool   `json:"isCoordinator"`
	PasscodeHash  string `json:"passcodeHash,omitempty"`
}

// Identity holds the coordinator-owned institution and team identity fields.
type Identity struct {
	SchoolName   string `json:"schoolName"`
	SchoolLogo   string `json:"schoolLogo"`
	AcademicYear string `json:"academicYear"`
	TeamName     string `json:"teamName"`
	GroupPhoto   string `json:"groupPhoto"`
}

// Zone is the static reference record for a selected territory.
type Zone struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Territory string `json:"territory"`
	Concept   string `json:"concept"`
}

type ZoneSelection struct {
	Zone          *Zone  `json:"zone"`
	Justification string `json:"justification"`
}

type Concept struct {
	Name           string   `json:"name"`
	Slogan         string   `json:"slogan"`
	TargetAudience string   `json:"targetAudience"`
	Values         []string `json:"values"`
}

type ExplorerMission struct {
	MapURL       string `json:"mapUrl"`
	MenuAnalysis string `json:"menuAnalysis"`
	GapAnalysis  string `json:"gapAnalysis"`
}

type ConnectorMission struct {
	TargetAudience string `json:"targetAudience"`
	SurveyResults  string `json:"surveyResults"`
	IdealCustomer  string `json:"idealCustomer"`
}

type GuardianMission struct {
	Ingredients     string `json:"ingredients"`
	SupplierInfo    string `json:"supplierInfo"`
	CoreIngredients string `json:"coreIngredients"`
}

// Missions are the three fixed individual research tracks. They propagate
// only through full-document import, never through contribution merge.
type Missions struct {
	Explorer  ExplorerMission  `json:"explorer"`
	Connector ConnectorMission `json:"connector"`
	Guardian  GuardianMission  `json:"guardian"`
}

// MicroTask is one entry of the fixed analysis task catalog. Tasks are never
// created or destroyed at runtime; only the assignee and the written report
// change. AssigneeID is a weak reference: removing a member orphans it.
type MicroTask struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DeliverableHint string `json:"deliverableHint"`
	AssigneeID      string `json:"assigneeId"`
	Content         string `json:"content"`
}

type IngredientRow struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	UnitPrice float64 `json:"unitPrice"`
	TotalCost float64 `json:"totalCost"`
}

type DishFinancials struct {
	TotalCost          float64 `json:"totalCost"`
	CostPerServing     float64 `json:"costPerServing"`
	FoodCostPercent    float64 `json:"foodCostPercent"`
	GrossMargin        float64 `json:"grossMargin"`
	GrossMarginPercent float64 `json:"grossMarginPercent"`
	SalePrice          float64 `json:"salePrice"`
}

type DishType string

const (
	DishAppetizer DishType = "appetizer"
	DishStarter   DishType = "starter"
	DishMain      DishType = "main"
	DishDessert   DishType = "dessert"
)

// NormalizeDishType maps unknown type values to DishMain.
func NormalizeDishType(value string) DishType {
	switch DishType(value) {
	case DishAppetizer, DishStarter, DishMain, DishDessert:
		return DishType(value)
	default:
		return DishMain
	}
}

// Dish is an authored menu entry. AuthorID is a strong provenance reference,
// set once at creation.
type Dish struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Type               DishType        `json:"type"`
	Servings           int             `json:"servings"`
	Photo              string          `json:"photo"`
	Description        string          `json:"description"`
	Elaboration        string          `json:"elaboration"`
	Ingredients        []IngredientRow `json:"ingredients"`
	Allergens          []string        `json:"allergens"`
	SustainabilityNote string          `json:"sustainabilityNote"`
	EstimatedCost      float64         `json:"estimatedCost"`
	TargetPrice        float64         `json:"targetPrice"`
	Financials         DishFinancials  `json:"financials"`
	PriceNote          string          `json:"priceNote"`
	AuthorID           string          `json:"authorId"`
}

// MenuPrototype is the one shared prototype record. Each field's overwrite is
// gated by role-set membership, see roles.go.
type MenuPrototype struct {
	GeneralStyle        string `json:"generalStyle"`
	DigitalLink         string `json:"digitalLink"`
	PhysicalPhoto       string `json:"physicalPhoto"`
	PhysicalDescription string `json:"physicalDescription"`
}

// RoleSets are three independent membership sets. A member may belong to
// zero, one, or many sets at once.
type RoleSets struct {
	DesignerIDs []string `json:"designerIds"`
	ArtisanIDs  []string `json:"artisanIds"`
	EditorIDs   []string `json:"editorIds"`
}

type ReviewItem struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
	Comment  string `json:"comment,omitempty"`
}

// PeerReview scores one teammate. At most one current review exists per
// ordered (evaluator, target) pair; re-saving overwrites.
type PeerReview struct {
	EvaluatorID string       `json:"evaluatorId"`
	TargetID    string       `json:"targetId"`
	Items       []ReviewItem `json:"items"`
	SavedAt     int64        `json:"savedAt"`
}

// Project is the canonical document: the one authoritative, fully-defaulted,
// schema-valid representation of a team's state.
type Project struct {
	Identity       Identity      `json:"identity"`
	Roster         []Member      `json:"roster"`
	ActiveMemberID string        `json:"activeMemberId,omitempty"`
	ZoneSelection  ZoneSelection `json:"zoneSelection"`
	Concept        Concept       `json:"concept"`
	Missions       Missions      `json:"missions"`
	MicroTasks     []MicroTask   `json:"microTasks"`
	Dishes         []Dish        `json:"dishes"`
	Prototype      MenuPrototype `json:"menuPrototype"`
	Roles          RoleSets      `json:"roleAssignments"`
	PeerReviews    []PeerReview  `json:"peerReviews"`
}

// HasMember reports whether id names a roster entry.
func (p *Project) HasMember(id string) bool {
	for _, member := range p.Roster {
		if member.ID == id {
			return true
		}
	}
	return false
}

// MemberByID returns the roster entry for id.
func (p *Project) MemberByID(id string) (Member, bool) {
	for _, member := range p.Roster {
		if member.ID == id {
			return member, true
		}
	}
	return Member{}, false
}

// MemberName returns the display name for id, or id itself when the roster
// no longer contains it.
func (p *Project) MemberName(id string) string {
	if member, ok := p.MemberByID(id); ok && member.Name != "" {
		return member.Name
	}
	return id
}

// Coordinator returns the roster entry flagged as coordinator, if any.
func (p *Project) Coordinator() (Member, bool) {
	for _, member := range p.Roster {
		if member.IsCoordinator {
			return member, true
		}
	}
	return Member{}, false
}

// DishByID returns the dish with the given id.
func (p *Project) DishByID(id string) (Dish, bool) {
	for _, dish := range p.Dishes {
		if dish.ID == id {
			return dish, true
		}
	}
	return Dish{}, false
}

// TaskByID returns the micro task with the given catalog id.
func (p *Project) TaskByID(id int) (MicroTask, bool) {
	for _, task := range p.MicroTasks {
		if task.ID == id {
			return task, true
		}
	}
	return MicroTask{}, false
}

// cloneSlice copies a slice, preserving nil versus empty so that a clone
// stays structurally equal to its source.
func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// Clone returns a deep copy. The merge engine mutates the copy so the local
// document is never touched in place.
func (p *Project) Clone() Project {
	clone := *p
	clone.Roster = cloneSlice(p.Roster)
	clone.MicroTasks = cloneSlice(p.MicroTasks)
	clone.Concept.Values = cloneSlice(p.Concept.Values)
	if p.ZoneSelection.Zone != nil {
		zone := *p.ZoneSelection.Zone
		clone.ZoneSelection.Zone = &zone
	}
	clone.Dishes = cloneSlice(p.Dishes)
	for i := range clone.Dishes {
		clone.Dishes[i].Ingredients = cloneSlice(clone.Dishes[i].Ingredients)
		clone.Dishes[i].Allergens = cloneSlice(clone.Dishes[i].Allergens)
	}
	clone.Roles.DesignerIDs = cloneSlice(p.Roles.DesignerIDs)
	clone.Roles.ArtisanIDs = cloneSlice(p.Roles.ArtisanIDs)
	clone.Roles.EditorIDs = cloneSlice(p.Roles.EditorIDs)
	clone.PeerReviews = cloneSlice(p.PeerReviews)
	for i := range clone.PeerReviews {
		clone.PeerReviews[i].Items = cloneSlice(clone.PeerReviews[i].Items)
	}
	return clone
}
