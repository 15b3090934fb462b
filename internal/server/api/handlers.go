package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ryoureddy/medadapt-content-server/internal/content"
	"github.com/ryoureddy/medadapt-content-server/internal/server/analysis"
	"github.com/ryoureddy/medadapt-content-server/internal/server/backup"
	"github.com/ryoureddy/medadapt-content-server/internal/server/resolve"
	"github.com/ryoureddy/medadapt-content-server/internal/server/topics"
)

// Resolver is the slice of the resolution engine the handlers need.
type Resolver interface {
	SearchContent(ctx context.Context, query string, f resolve.Filters, maxResults int) ([]content.Resource, error)
	GetResourceDetail(ctx context.Context, id string) (*content.Resource, error)
}

// Documents is the user document storage the handlers need.
type Documents interface {
	PutUserDocument(ctx context.Context, doc *content.UserDocument) error
	GetUserDocument(ctx context.Context, id string) (*content.UserDocument, error)
}

// Server holds the HTTP server dependencies
type Server struct {
	engine    Resolver
	docs      Documents
	topics    topics.Repository
	advisor   *analysis.Advisor
	extractor analysis.Extractor
	backups   *backup.Manager
	log       *zap.Logger
}

// New creates a new API server. The backup manager may be nil, in which case
// the admin backup endpoints report service unavailable.
func New(engine Resolver, docs Documents, repo topics.Repository, advisor *analysis.Advisor, extractor analysis.Extractor, backups *backup.Manager, log *zap.Logger) *Server {
	return &Server{
		engine:    engine,
		docs:      docs,
		topics:    repo,
		advisor:   advisor,
		extractor: extractor,
		backups:   backups,
		log:       log,
	}
}

// HealthCheck handles GET /health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SearchResponse is the response for a content search
type SearchResponse struct {
	Query     string             `json:"query"`
	Resources []content.Resource `json:"resources"`
	Count     int                `json:"count"`
}

// SearchContent handles GET /api/content/search
// Query params: q (required), specialty, difficulty, content_type, max_results
func (s *Server) SearchContent(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := query.Get("q")
	if q == "" {
		http.Error(w, "query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	difficulty, err := content.ParseDifficulty(query.Get("difficulty"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	contentType, err := content.ParseContentType(query.Get("content_type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	maxResults := 0
	if mr := query.Get("max_results"); mr != "" {
		maxResults, err = strconv.Atoi(mr)
		if err != nil || maxResults < 0 {
			http.Error(w, "invalid max_results parameter", http.StatusBadRequest)
			return
		}
	}

	resources, err := s.engine.SearchContent(r.Context(), q, resolve.Filters{
		Specialty:   query.Get("specialty"),
		Difficulty:  difficulty,
		ContentType: contentType,
	}, maxResults)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if resources == nil {
		resources = []content.Resource{}
	}

	writeJSON(w, http.StatusOK, SearchResponse{Query: q, Resources: resources, Count: len(resources)})
}

// GetResource handles GET /api/resources/{id}
func (s *Server) GetResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resource, err := s.engine.GetResourceDetail(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resource)
}

// GetKeyPoints handles GET /api/resources/{id}/key-points
func (s *Server) GetKeyPoints(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resource, err := s.engine.GetResourceDetail(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.extractor.KeyPoints(resource))
}

// ImportDocumentRequest is the request body for importing a document
type ImportDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ImportDocumentResponse is the response for importing a document
type ImportDocumentResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	UploadDate time.Time `json:"upload_date"`
}

// ImportDocument handles POST /api/documents
func (s *Server) ImportDocument(w http.ResponseWriter, r *http.Request) {
	var req ImportDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Content == "" {
		http.Error(w, "title and content are required", http.StatusBadRequest)
		return
	}

	doc := &content.UserDocument{
		ID:         content.NewUserDocID(),
		Title:      req.Title,
		Content:    req.Content,
		UploadDate: time.Now().UTC(),
	}
	if err := s.docs.PutUserDocument(r.Context(), doc); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ImportDocumentResponse{
		ID:         doc.ID,
		Title:      doc.Title,
		UploadDate: doc.UploadDate,
	})
}

// GetDocument handles GET /api/documents/{id}
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, err := s.docs.GetUserDocument(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if doc == nil {
		http.Error(w, "document not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// GetRelatedTopics handles GET /api/topics/{topic}/related
// Query params: limit (default 5)
func (s *Server) GetRelatedTopics(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")

	limit := topics.DefaultRelatedLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil || limit <= 0 {
			http.Error(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
	}

	related, err := s.topics.Related(r.Context(), topic, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if related == nil {
		related = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"topic":   topic,
		"related": related,
		"count":   len(related),
	})
}

// GetTopicOverview handles GET /api/topics/{topic}/overview
func (s *Server) GetTopicOverview(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")

	overview, err := s.advisor.TopicOverview(r.Context(), topic)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// AddTopicMapping handles POST /api/topics
func (s *Server) AddTopicMapping(w http.ResponseWriter, r *http.Request) {
	var m content.TopicMapping
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if m.Topic == "" || m.ParentTopic == "" {
		http.Error(w, "topic and parent_topic are required", http.StatusBadRequest)
		return
	}

	if err := s.topics.Add(r.Context(), m); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// LearningPlanRequest is the request body for generating a learning plan
type LearningPlanRequest struct {
	Topic        string                `json:"topic"`
	StudentLevel analysis.StudentLevel `json:"student_level"`
}

// GenerateLearningPlan handles POST /api/learning-plan
func (s *Server) GenerateLearningPlan(w http.ResponseWriter, r *http.Request) {
	var req LearningPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Topic == "" {
		http.Error(w, "topic is required", http.StatusBadRequest)
		return
	}
	if req.StudentLevel == "" {
		req.StudentLevel = analysis.LevelSecondYear
	}

	plan, err := s.advisor.LearningPlan(r.Context(), req.Topic, req.StudentLevel)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// CreateBackup handles POST /api/admin/backups
func (s *Server) CreateBackup(w http.ResponseWriter, r *http.Request) {
	if s.backups == nil {
		http.Error(w, "backups not configured", http.StatusServiceUnavailable)
		return
	}

	b, err := s.backups.Create()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// ListBackups handles GET /api/admin/backups
func (s *Server) ListBackups(w http.ResponseWriter, r *http.Request) {
	if s.backups == nil {
		http.Error(w, "backups not configured", http.StatusServiceUnavailable)
		return
	}

	backups, err := s.backups.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if backups == nil {
		backups = []backup.Backup{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"backups": backups,
		"count":   len(backups),
	})
}

// RestoreBackup handles POST /api/admin/backups/{name}/restore. The restored
// file replaces the live database; open connections keep serving the old
// pages until the process restarts, so operators restart after restoring.
func (s *Server) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	if s.backups == nil {
		http.Error(w, "backups not configured", http.StatusServiceUnavailable)
		return
	}

	name := chi.URLParam(r, "name")
	if err := s.backups.Restore(name); err != nil {
		switch {
		case errors.Is(err, backup.ErrInvalidName):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, os.ErrNotExist):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			s.log.Error("restore failed", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"restored": name})
}

// writeError maps the error taxonomy onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, content.ErrMalformedID):
		status = http.StatusBadRequest
	case errors.Is(err, content.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, content.ErrAdapterUnavailable):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
