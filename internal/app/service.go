package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"brigade/api/internal/assets"
	"brigade/api/internal/auth"
	"brigade/api/internal/config"
	"brigade/api/internal/history"
	"brigade/api/internal/project"
	"brigade/api/internal/search"
	"brigade/api/internal/store"
	"brigade/api/internal/util"
)

// Session is a parsed, roster-checked token. Coordinator always reflects the
// live roster, not the flag captured at issue time.
type Session struct {
	Token       string
	MemberID    string
	MemberName  string
	Coordinator bool
	JTI         string
	ExpiresAt   time.Time
}

// IdentityInput carries a partial update of the identity block. Nil fields
// are left untouched.
type IdentityInput struct {
	SchoolName   *string `json:"schoolName"`
	SchoolLogo   *string `json:"schoolLogo"`
	AcademicYear *string `json:"academicYear"`
	TeamName     *string `json:"teamName"`
	GroupPhoto   *string `json:"groupPhoto"`
}

// ZoneInput carries a partial update of the zone selection.
type ZoneInput struct {
	Zone          *project.Zone `json:"zone"`
	Justification *string       `json:"justification"`
}

// Service owns the live document. Every read and mutation goes through its
// mutex; Redis, the archive, history, and search are downstream of it.
type Service struct {
	cfg      config.Config
	projects *store.RedisStore
	archive  *store.PostgresStore
	history  *history.Service
	search   *search.Service
	assets   *assets.Store

	mu  sync.Mutex
	doc project.Project
}

// New loads the document from the store and wires the side-effect services.
// archive, hist, searchSvc, and assetStore may each be nil when the matching
// backend is not configured.
func New(ctx context.Context, cfg config.Config, projects *store.RedisStore, archive *store.PostgresStore, hist *history.Service, searchSvc *search.Service, assetStore *assets.Store) *Service {
	s := &Service{
		cfg:      cfg,
		projects: projects,
		archive:  archive,
		history:  hist,
		search:   searchSvc,
		assets:   assetStore,
	}
	s.doc = projects.Load(ctx)
	return s
}

// SetSearch installs the search service after construction. The fallback
// scanner reads back through this Service, so the two cannot be built in one
// step.
func (s *Service) SetSearch(searchSvc *search.Service) {
	s.search = searchSvc
}

func (s *Service) Ping(ctx context.Context) error {
	if err := s.projects.Ping(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if s.archive != nil {
		if err := s.archive.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	return nil
}

// Project returns a deep copy of the current document.
func (s *Service) Project() project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// SearchRecords flattens the current document for the fallback scanner.
func (s *Service) SearchRecords() ([]search.TaskRecord, []search.DishRecord, []search.ReviewRecord) {
	s.mu.Lock()
	doc := s.doc.Clone()
	s.mu.Unlock()
	return search.RecordsFromProject(s.cfg.Profile, doc)
}

// Bind checks the passcode, marks the member active in the document, and
// issues a session token for the device.
func (s *Service) Bind(ctx context.Context, memberID, passcode string) (Session, project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.doc.MemberByID(memberID)
	if !ok {
		return Session{}, project.Project{}, errNotFound(fmt.Sprintf("member %q is not in the roster", memberID))
	}
	if !auth.VerifyPasscode(member.PasscodeHash, passcode) {
		return Session{}, project.Project{}, domainError(http.StatusUnauthorized, "INVALID_PASSCODE", "Passcode does not match", nil)
	}

	s.doc.Bind(member.ID)
	s.persist(ctx)

	expiresAt := time.Now().Add(s.cfg.SessionTTL)
	jti := util.NewID("jti")
	token, err := auth.IssueToken([]byte(s.cfg.TokenSecret), auth.Claims{
		Sub:         member.ID,
		Name:        member.Name,
		Coordinator: member.IsCoordinator,
		JTI:         jti,
		Exp:         expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, project.Project{}, fmt.Errorf("issue token: %w", err)
	}

	return Session{
		Token:       token,
		MemberID:    member.ID,
		MemberName:  member.Name,
		Coordinator: member.IsCoordinator,
		JTI:         jti,
		ExpiresAt:   expiresAt,
	}, s.doc.Clone(), nil
}

// Unbind clears the active member. The token itself stays valid until expiry;
// unbinding is a document state change, not a revocation.
func (s *Service) Unbind(ctx context.Context, session Session) project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Unbind()
	s.persist(ctx)
	s.recordChange(session.MemberName, "Unbind member")
	return s.doc.Clone()
}

// SessionFromToken parses the token and re-resolves the member against the
// live roster. A member removed since issue no longer has a session.
func (s *Service) SessionFromToken(token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.TokenSecret), token)
	if err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	member, ok := s.doc.MemberByID(claims.Sub)
	s.mu.Unlock()
	if !ok {
		return Session{}, errUnauthorized("Session member is no longer in the roster")
	}

	return Session{
		Token:       token,
		MemberID:    member.ID,
		MemberName:  member.Name,
		Coordinator: member.IsCoordinator,
		JTI:         claims.JTI,
		ExpiresAt:   time.Unix(claims.Exp, 0),
	}, nil
}

// SetPasscode stores a new passcode hash on the session's own roster entry.
func (s *Service) SetPasscode(ctx context.Context, session Session, passcode string) error {
	hash := ""
	if passcode != "" {
		var err error
		hash, err = auth.HashPasscode(passcode)
		if err != nil {
			return errValidation(err.Error(), nil)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doc.SetMemberPasscode(session.MemberID, hash); err != nil {
		return errValidation(err.Error(), nil)
	}
	s.persist(ctx)
	return nil
}

// Export encodes the document as a portable snapshot. Offloaded photos are
// inlined back to data URLs so the file is self-contained on any machine.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	doc := s.Project()
	s.inlinePhotos(ctx, &doc)
	data, err := project.Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Import replaces the whole document with the sanitized snapshot. The active
// binding never survives an import; whoever loads a teammate's file must
// identify again.
func (s *Service) Import(ctx context.Context, raw []byte, session Session) (project.Project, error) {
	if _, err := project.Decode(raw); err != nil {
		return project.Project{}, errInvalidSnapshot(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := project.Sanitize(raw)
	next.Unbind()
	s.offloadPhotos(ctx, &next)
	s.doc = next
	s.persist(ctx)
	s.archiveContribution(ctx, "import", session.MemberID, session.MemberName, raw)
	s.recordChange(session.MemberName, "Import snapshot")
	return s.doc.Clone(), nil
}

// MergeContribution folds a teammate's snapshot into the document. The
// contributor must resolve in the LOCAL roster; an unknown contributor is
// rejected before the engine runs.
func (s *Service) MergeContribution(ctx context.Context, raw []byte, contributorID string) (project.Project, error) {
	if _, err := project.Decode(raw); err != nil {
		return project.Project{}, errInvalidSnapshot(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contributor, ok := s.doc.MemberByID(contributorID)
	if !ok {
		return project.Project{}, domainError(http.StatusUnprocessableEntity, "UNKNOWN_CONTRIBUTOR",
			fmt.Sprintf("contributor %q is not in the roster", contributorID), nil)
	}

	merged := project.Merge(s.doc, raw, contributorID)
	s.offloadPhotos(ctx, &merged)
	s.doc = merged
	s.persist(ctx)
	s.archiveContribution(ctx, "merge", contributor.ID, contributor.Name, raw)
	s.recordChange(contributor.Name, "Merge contribution from "+contributor.Name)
	return s.doc.Clone(), nil
}

// Reset drops the document back to defaults and clears the stored copy.
func (s *Service) Reset(ctx context.Context, session Session) project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = project.Default()
	if err := s.projects.Reset(ctx); err != nil {
		log.Printf("app: reset store: %v", err)
	}
	s.recordChange(session.MemberName, "Reset project")
	return s.doc.Clone()
}

func (s *Service) UpdateIdentity(ctx context.Context, session Session, input IdentityInput) project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.SchoolName != nil || input.AcademicYear != nil {
		name := s.doc.Identity.SchoolName
		year := s.doc.Identity.AcademicYear
		if input.SchoolName != nil {
			name = *input.SchoolName
		}
		if input.AcademicYear != nil {
			year = *input.AcademicYear
		}
		s.doc.SetSchoolSettings(name, year)
	}
	if input.TeamName != nil {
		s.doc.SetTeamName(*input.TeamName)
	}
	if input.SchoolLogo != nil {
		s.doc.SetSchoolLogo(s.offload(ctx, s.assetKey("identity-logo"), *input.SchoolLogo))
	}
	if input.GroupPhoto != nil {
		s.doc.SetGroupPhoto(s.offload(ctx, s.assetKey("group-photo"), *input.GroupPhoto))
	}

	s.persist(ctx)
	s.recordChange(session.MemberName, "Update identity")
	return s.doc.Clone()
}

func (s *Service) ReplaceRoster(ctx context.Context, session Session, members []project.Member) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.ReplaceRoster(members); err != nil {
		return project.Project{}, errValidation(err.Error(), nil)
	}
	s.persist(ctx)
	s.recordChange(session.MemberName, "Replace roster")
	return s.doc.Clone(), nil
}

func (s *Service) UpdateZone(ctx context.Context, session Session, input ZoneInput) project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Zone != nil {
		s.doc.SelectZone(*input.Zone)
	}
	if input.Justification != nil {
		s.doc.SetZoneJustification(*input.Justification)
	}
	s.persist(ctx)
	s.recordChange(session.MemberName, "Update zone selection")
	return s.doc.Clone()
}

func (s *Service) SetConcept(ctx context.Context, session Session, concept project.Concept) project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.SetConcept(concept)
	s.persist(ctx)
	s.recordChange(session.MemberName, "Update concept")
	return s.doc.Clone()
}

func (s *Service) SetExplorerMission(ctx context.Context, session Session, mission project.ExplorerMission) project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.SetExplorerMission(mission)
	s.persist(ctx)
	s.recordChange(session.MemberName, "Update explorer mission")
	return s.doc.Clone()
}

func (s *Service) SetConnectorMission(ctx context.Context, session Session, mission project.ConnectorMission) project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.SetConnectorMission(mission)
	s.persist(ctx)
	s.recordChange(session.MemberName, "Update connector mission")
	return s.doc.Clone()
}

func (s *Service) SetGuardianMission(ctx context.Context, session Session, mission project.GuardianMission) project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.SetGuardianMission(mission)
	s.persist(ctx)
	s.recordChange(session.MemberName, "Update guardian mission")
	return s.doc.Clone()
}

func (s *Service) AssignTask(ctx context.Context, session Session, taskID int, memberID string) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.AssignTask(taskID, memberID); err != nil {
		return project.Project{}, errValidation(err.Error(), nil)
	}
	s.persist(ctx)
	s.recordChange(session.MemberName, fmt.Sprintf("Assign task %d", taskID))
	return s.doc.Clone(), nil
}

// SetTaskContent writes a task report. Only the assignee or the coordinator
// may write it; everyone else contributes through merge.
func (s *Service) SetTaskContent(ctx context.Context, session Session, taskID int, content string) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.doc.TaskByID(taskID)
	if !ok {
		return project.Project{}, errNotFound(fmt.Sprintf("task %d is not in the catalog", taskID))
	}
	if task.AssigneeID != session.MemberID && !session.Coordinator {
		return project.Project{}, errForbidden("Only the assignee can write this report")
	}
	if err := s.doc.SetTaskContent(taskID, content); err != nil {
		return project.Project{}, errValidation(err.Error(), nil)
	}
	s.persist(ctx)
	s.recordChange(session.MemberName, fmt.Sprintf("Update task %d report", taskID))
	return s.doc.Clone(), nil
}

func (s *Service) AddDish(ctx context.Context, session Session, dish project.Dish) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dish.Photo = s.offload(ctx, s.assetKey("dish-"+dish.ID), dish.Photo)
	if err := s.doc.AddDish(dish, session.MemberID); err != nil {
		return project.Project{}, errValidation(err.Error(), nil)
	}
	s.persist(ctx)
	s.recordChange(session.MemberName, "Add dish "+dish.ID)
	return s.doc.Clone(), nil
}

func (s *Service) UpdateDish(ctx context.Context, session Session, dish project.Dish) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.doc.DishByID(dish.ID)
	if !ok {
		return project.Project{}, errNotFound(fmt.Sprintf("dish %q not found", dish.ID))
	}
	if existing.AuthorID != session.MemberID && !session.Coordinator {
		return project.Project{}, errForbidden("Only the author can edit this dish")
	}
	dish.Photo = s.offload(ctx, s.assetKey("dish-"+dish.ID), dish.Photo)
	if err := s.doc.UpdateDish(dish); err != nil {
		return project.Project{}, errValidation(err.Error(), nil)
	}
	s.persist(ctx)
	s.recordChange(session.MemberName, "Update dish "+dish.ID)
	return s.doc.Clone(), nil
}

func (s *Service) RemoveDish(ctx context.Context, session Session, id string) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.doc.DishByID(id)
	if !ok {
		return project.Project{}, errNotFound(fmt.Sprintf("dish %q not found", id))
	}
	if existing.AuthorID != session.MemberID && !session.Coordinator {
		return project.Project{}, errForbidden("Only the author can remove this dish")
	}
	if err := s.doc.RemoveDish(id); err != nil {
		return project.Project{}, errValidation(err.Error(), nil)
	}
	s.persist(ctx)
	s.recordChange(session.MemberName, "Remove dish "+id)
	if s.search != nil {
		s.search.DeleteDish(fmt.Sprintf("%s-dish-%s", s.cfg.Profile, id))
	}
	return s.doc.Clone(), nil
}

func (s *Service) ReplaceDishesWithPlaceholders(ctx context.Context, session Session, assignments []project.PlaceholderAssignment) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.ReplaceDishesWithPlaceholders(assignments); err != nil {
		return project.Project{}, errValidation(err.Error(), nil)
	}
	s.persist(ctx)
	s.recordChange(session.MemberName, "Plan menu placeholders")
	return s.doc.Clone(), nil
}

func (s *Service) SetPrototypeField(ctx context.Context, session Session, field project.PrototypeField, value string) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.doc.CanEditPrototype(session.MemberID, field) {
		return project.Project{}, errForbidden(fmt.Sprintf("Field %q requires the matching role", field))
	}
	if field == project.FieldPhysicalPhoto {
		value = s.offload(ctx, s.assetKey("prototype-photo"), value)
	}
	if err := s.doc.SetPrototypeField(field, value); err != nil {
		return project.Project{}, errValidation(err.Error(), nil)
	}
	s.persist(ctx)
	s.recordChange(session.MemberName, "Update prototype "+string(field))
	return s.doc.Clone(), nil
}

func (s *Service) SetRoleMembers(ctx context.Context, session Session, set project.RoleSet, memberIDs []string) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.doc.SetRoleMembers(set, memberIDs); err != nil {
		return project.Project{}, errValidation(err.Error(), nil)
	}
	s.persist(ctx)
	s.recordChange(session.MemberName, "Update role set "+string(set))
	return s.doc.Clone(), nil
}

// SaveReview records the session member's review of a teammate, overwriting
// any earlier review of the same pair.
func (s *Service) SaveReview(ctx context.Context, session Session, review project.PeerReview) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review.EvaluatorID = session.MemberID
	review.SavedAt = time.Now().UnixMilli()
	if err := s.doc.SavePeerReview(review); err != nil {
		return project.Project{}, errValidation(err.Error(), nil)
	}
	s.persist(ctx)
	s.recordChange(session.MemberName, "Save peer review")
	return s.doc.Clone(), nil
}

func (s *Service) History(limit int) ([]history.CommitInfo, error) {
	if s.history == nil {
		return nil, domainError(http.StatusServiceUnavailable, "HISTORY_DISABLED", "Snapshot history is not configured", nil)
	}
	return s.history.History(s.cfg.Profile, limit)
}

// HistorySnapshot returns the snapshot stored at a past commit, for a
// restore preview. Restoring is an explicit import of these bytes.
func (s *Service) HistorySnapshot(hash string) ([]byte, error) {
	if s.history == nil {
		return nil, domainError(http.StatusServiceUnavailable, "HISTORY_DISABLED", "Snapshot history is not configured", nil)
	}
	data, err := s.history.Snapshot(s.cfg.Profile, hash)
	if err != nil {
		return nil, errNotFound(fmt.Sprintf("no snapshot at %q", hash))
	}
	return data, nil
}

func (s *Service) Archive(ctx context.Context, limit int) ([]store.Contribution, error) {
	if s.archive == nil {
		return nil, domainError(http.StatusServiceUnavailable, "ARCHIVE_DISABLED", "Contribution archive is not configured", nil)
	}
	return s.archive.ListContributions(ctx, s.cfg.Profile, limit)
}

func (s *Service) Search(q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text}
	}
	return s.search.Search(q)
}

// persist writes the document to the store. Write failures are logged, not
// surfaced; the in-memory document stays authoritative for the session.
func (s *Service) persist(ctx context.Context) {
	if err := s.projects.Save(ctx, s.doc); err != nil {
		log.Printf("app: save project: %v", err)
	}
}

// recordChange pushes the committed document into history and search.
// Callers hold the mutex.
func (s *Service) recordChange(author, message string) {
	if s.history != nil {
		data, err := project.Encode(s.doc)
		if err != nil {
			log.Printf("app: encode for history: %v", err)
		} else if _, err := s.history.Record(s.cfg.Profile, data, author, message); err != nil {
			log.Printf("app: record history: %v", err)
		}
	}
	if s.search != nil {
		tasks, dishes, reviews := search.RecordsFromProject(s.cfg.Profile, s.doc)
		s.search.SyncProject(tasks, dishes, reviews)
	}
}

func (s *Service) archiveContribution(ctx context.Context, kind, contributorID, contributorName string, payload []byte) {
	if s.archive == nil {
		return
	}
	if _, err := s.archive.InsertContribution(ctx, store.Contribution{
		Profile:         s.cfg.Profile,
		Kind:            kind,
		ContributorID:   contributorID,
		ContributorName: contributorName,
		Payload:         payload,
	}); err != nil {
		log.Printf("app: archive %s: %v", kind, err)
	}
}

func (s *Service) assetKey(name string) string {
	return s.cfg.Profile + "/" + name
}

func (s *Service) offload(ctx context.Context, key, value string) string {
	return s.assets.OffloadDataURL(ctx, key, value)
}

func (s *Service) offloadPhotos(ctx context.Context, doc *project.Project) {
	if s.assets == nil {
		return
	}
	doc.Identity.SchoolLogo = s.offload(ctx, s.assetKey("identity-logo"), doc.Identity.SchoolLogo)
	doc.Identity.GroupPhoto = s.offload(ctx, s.assetKey("group-photo"), doc.Identity.GroupPhoto)
	for i := range doc.Dishes {
		doc.Dishes[i].Photo = s.offload(ctx, s.assetKey("dish-"+doc.Dishes[i].ID), doc.Dishes[i].Photo)
	}
	doc.Prototype.PhysicalPhoto = s.offload(ctx, s.assetKey("prototype-photo"), doc.Prototype.PhysicalPhoto)
}

func (s *Service) inlinePhotos(ctx context.Context, doc *project.Project) {
	if s.assets == nil {
		return
	}
	doc.Identity.SchoolLogo = s.assets.Inline(ctx, doc.Identity.SchoolLogo)
	doc.Identity.GroupPhoto = s.assets.Inline(ctx, doc.Identity.GroupPhoto)
	for i := range doc.Dishes {
		doc.Dishes[i].Photo = s.assets.Inline(ctx, doc.Dishes[i].Photo)
	}
	doc.Prototype.PhysicalPhoto = s.assets.Inline(ctx, doc.Prototype.PhysicalPhoto)
}
