package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"brigade/api/internal/auth"
	"brigade/api/internal/project"
	"brigade/api/internal/search"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := s.service.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) < 2 || parts[0] != "api" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/project":
		s.handleGetProject(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/api/project/export":
		s.handleExport(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/project/import":
		s.handleImport(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/project/merge":
		s.handleMerge(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/identity/bind":
		s.handleBind(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/identity/unbind":
		s.handleUnbind(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/identity/passcode":
		s.handleSetPasscode(w, r)
	case r.Method == http.MethodPut && r.URL.Path == "/api/identity":
		s.handleUpdateIdentity(w, r)
	case r.Method == http.MethodPut && r.URL.Path == "/api/roster":
		s.handleReplaceRoster(w, r)
	case r.Method == http.MethodPut && r.URL.Path == "/api/zone":
		s.handleUpdateZone(w, r)
	case r.Method == http.MethodPut && r.URL.Path == "/api/concept":
		s.handleSetConcept(w, r)
	case r.Method == http.MethodPut && len(parts) == 3 && parts[1] == "missions":
		s.handleSetMission(w, r, parts[2])
	case r.Method == http.MethodPost && len(parts) == 4 && parts[1] == "tasks" && parts[3] == "assign":
		s.handleAssignTask(w, r, parts[2])
	case r.Method == http.MethodPut && len(parts) == 4 && parts[1] == "tasks" && parts[3] == "content":
		s.handleTaskContent(w, r, parts[2])
	case r.Method == http.MethodPost && r.URL.Path == "/api/dishes":
		s.handleAddDish(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/dishes/placeholders":
		s.handlePlaceholders(w, r)
	case r.Method == http.MethodPut && len(parts) == 3 && parts[1] == "dishes":
		s.handleUpdateDish(w, r, parts[2])
	case r.Method == http.MethodDelete && len(parts) == 3 && parts[1] == "dishes":
		s.handleRemoveDish(w, r, parts[2])
	case r.Method == http.MethodPut && len(parts) == 3 && parts[1] == "prototype":
		s.handlePrototypeField(w, r, parts[2])
	case r.Method == http.MethodPut && len(parts) == 3 && parts[1] == "roles":
		s.handleRoleMembers(w, r, parts[2])
	case r.Method == http.MethodPost && r.URL.Path == "/api/reviews":
		s.handleSaveReview(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/api/history":
		s.handleHistory(w, r)
	case r.Method == http.MethodGet && len(parts) == 3 && parts[1] == "history":
		s.handleHistorySnapshot(w, r, parts[2])
	case r.Method == http.MethodGet && r.URL.Path == "/api/archive":
		s.handleArchive(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/api/search":
		s.handleSearch(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/reset":
		s.handleReset(w, r)
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleGetProject(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Project())
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Export(r.Context())
	if err != nil {
		writeMappedError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="project.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImport takes the snapshot itself as the request body: the same bytes
// an export produced, so a file can be POSTed back without re-wrapping.
func (s *HTTPServer) handleImport(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireCoordinator(w, r)
	if !ok {
		return
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Could not read snapshot", nil)
		return
	}
	defer r.Body.Close()

	doc, err := s.service.Import(r.Context(), raw, session)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handleMerge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContributorID string          `json:"contributorId"`
		Snapshot      json.RawMessage `json:"snapshot"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if body.ContributorID == "" || len(body.Snapshot) == 0 {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "contributorId and snapshot are required", nil)
		return
	}

	doc, err := s.service.MergeContribution(r.Context(), body.Snapshot, body.ContributorID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handleBind(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MemberID string `json:"memberId"`
		Passcode string `json:"passcode"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}

	session, doc, err := s.service.Bind(r.Context(), body.MemberID, body.Passcode)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":       session.Token,
		"memberId":    session.MemberID,
		"memberName":  session.MemberName,
		"coordinator": session.Coordinator,
		"expiresAt":   session.ExpiresAt.Unix(),
		"project":     doc,
	})
}

func (s *HTTPServer) handleUnbind(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.service.Unbind(r.Context(), session))
}

func (s *HTTPServer) handleSetPasscode(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var body struct {
		Passcode string `json:"passcode"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	if err := s.service.SetPasscode(r.Context(), session, body.Passcode); err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) handleUpdateIdentity(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var body IdentityInput
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, s.service.UpdateIdentity(r.Context(), session, body))
}

func (s *HTTPServer) handleReplaceRoster(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireCoordinator(w, r)
	if !ok {
		return
	}
	var body struct {
		Members []project.Member `json:"members"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	doc, err := s.service.ReplaceRoster(r.Context(), session, body.Members)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handleUpdateZone(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var body ZoneInput
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, s.service.UpdateZone(r.Context(), session, body))
}

func (s *HTTPServer) handleSetConcept(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var body project.Concept
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusOK, s.service.SetConcept(r.Context(), session, body))
}

func (s *HTTPServer) handleSetMission(w http.ResponseWriter, r *http.Request, role string) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	switch role {
	case "explorer":
		var body project.ExplorerMission
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		writeJSON(w, http.StatusOK, s.service.SetExplorerMission(r.Context(), session, body))
	case "connector":
		var body project.ConnectorMission
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		writeJSON(w, http.StatusOK, s.service.SetConnectorMission(r.Context(), session, body))
	case "guardian":
		var body project.GuardianMission
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		writeJSON(w, http.StatusOK, s.service.SetGuardianMission(r.Context(), session, body))
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Unknown mission %q", role), nil)
	}
}

func (s *HTTPServer) handleAssignTask(w http.ResponseWriter, r *http.Request, rawID string) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	taskID, err := strconv.Atoi(rawID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Task id must be a number", nil)
		return
	}
	var body struct {
		MemberID string `json:"memberId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	doc, err := s.service.AssignTask(r.Context(), session, taskID, body.MemberID)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handleTaskContent(w http.ResponseWriter, r *http.Request, rawID string) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	taskID, err := strconv.Atoi(rawID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Task id must be a number", nil)
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	doc, err := s.service.SetTaskContent(r.Context(), session, taskID, body.Content)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handleAddDish(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var body project.Dish
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	doc, err := s.service.AddDish(r.Context(), session, body)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *HTTPServer) handleUpdateDish(w http.ResponseWriter, r *http.Request, id string) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var body project.Dish
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	body.ID = id
	doc, err := s.service.UpdateDish(r.Context(), session, body)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handleRemoveDish(w http.ResponseWriter, r *http.Request, id string) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	doc, err := s.service.RemoveDish(r.Context(), session, id)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handlePlaceholders(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireCoordinator(w, r)
	if !ok {
		return
	}
	var body struct {
		Assignments []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Type     string `json:"type"`
			AuthorID string `json:"authorId"`
		} `json:"assignments"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	assignments := make([]project.PlaceholderAssignment, 0, len(body.Assignments))
	for _, a := range body.Assignments {
		assignments = append(assignments, project.PlaceholderAssignment{
			ID:       a.ID,
			Name:     a.Name,
			Type:     project.DishType(a.Type),
			AuthorID: a.AuthorID,
		})
	}
	doc, err := s.service.ReplaceDishesWithPlaceholders(r.Context(), session, assignments)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handlePrototypeField(w http.ResponseWriter, r *http.Request, rawField string) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	field := project.NormalizePrototypeField(rawField)
	if field == "" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Unknown prototype field %q", rawField), nil)
		return
	}
	var body struct {
		Value string `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	doc, err := s.service.SetPrototypeField(r.Context(), session, field, body.Value)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handleRoleMembers(w http.ResponseWriter, r *http.Request, rawSet string) {
	session, ok := s.requireCoordinator(w, r)
	if !ok {
		return
	}
	set := project.NormalizeRoleSet(rawSet)
	if set == "" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("Unknown role set %q", rawSet), nil)
		return
	}
	var body struct {
		MemberIDs []string `json:"memberIds"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	doc, err := s.service.SetRoleMembers(r.Context(), session, set, body.MemberIDs)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handleSaveReview(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	var body project.PeerReview
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	doc, err := s.service.SaveReview(r.Context(), session, body)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *HTTPServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	commits, err := s.service.History(limit)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"commits": commits})
}

func (s *HTTPServer) handleHistorySnapshot(w http.ResponseWriter, r *http.Request, hash string) {
	data, err := s.service.HistorySnapshot(hash)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *HTTPServer) handleArchive(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.Archive(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeMappedError(w, err)
		return
	}
	type entryView struct {
		ID              int64           `json:"id"`
		Kind            string          `json:"kind"`
		ContributorID   string          `json:"contributorId"`
		ContributorName string          `json:"contributorName"`
		Payload         json.RawMessage `json:"payload"`
		ReceivedAt      time.Time       `json:"receivedAt"`
	}
	views := make([]entryView, 0, len(entries))
	for _, entry := range entries {
		views = append(views, entryView{
			ID:              entry.ID,
			Kind:            entry.Kind,
			ContributorID:   entry.ContributorID,
			ContributorName: entry.ContributorName,
			Payload:         json.RawMessage(entry.Payload),
			ReceivedAt:      entry.ReceivedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"contributions": views})
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := search.Query{
		Text:       r.URL.Query().Get("q"),
		FilterType: search.ResultType(r.URL.Query().Get("type")),
		Limit:      queryInt(r, "limit", 20),
	}
	writeJSON(w, http.StatusOK, s.service.Search(q))
}

func (s *HTTPServer) handleReset(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireCoordinator(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.service.Reset(r.Context(), session))
}

func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Session token required", nil)
		return Session{}, false
	}
	session, err := s.service.SessionFromToken(token)
	if err != nil {
		writeMappedError(w, err)
		return Session{}, false
	}
	return session, true
}

func (s *HTTPServer) requireCoordinator(w http.ResponseWriter, r *http.Request) (Session, bool) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return Session{}, false
	}
	if !session.Coordinator {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Coordinator required", nil)
		return Session{}, false
	}
	return session, true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func writeMappedError(w http.ResponseWriter, err error) {
	status, code, message, details := mapError(err)
	writeError(w, status, code, message, details)
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// queryInt reads a positive integer query parameter. Missing, malformed,
// zero, and negative values all collapse to the fallback.
func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
