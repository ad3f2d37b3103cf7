// Package http implements the REST API of the Wordwise progress engine.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wordwise-app/wordwise-progress/internal/application/command"
	"github.com/wordwise-app/wordwise-progress/internal/application/query"
	"github.com/wordwise-app/wordwise-progress/internal/domain/badge"
	"github.com/wordwise-app/wordwise-progress/internal/domain/catalogue"
	"github.com/wordwise-app/wordwise-progress/internal/domain/learner"
	"github.com/wordwise-app/wordwise-progress/internal/domain/review"
	"github.com/wordwise-app/wordwise-progress/internal/domain/shared"
	"github.com/wordwise-app/wordwise-progress/pkg/logger"
)

// maxBodyBytes caps request bodies on the write endpoints.
const maxBodyBytes = 1 << 20

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Wordwise Progress API",
		"version":     "v1",
		"description": "Progress tracking and spaced repetition for vocabulary learners",
		"endpoints": map[string]string{
			"health":      "/health",
			"register":    "POST /api/v1/learners",
			"progress":    "/api/v1/learners/{id}/progress",
			"lesson":      "/api/v1/learners/{id}/lesson",
			"reviews":     "/api/v1/learners/{id}/reviews",
			"badges":      "/api/v1/learners/{id}/badges",
			"leaderboard": "/api/v1/leaderboard",
			"levels":      "/api/v1/levels",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleMetrics exposes server uptime and event bus counters.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": s.Uptime().Seconds(),
		"running":        s.IsRunning(),
	}

	if s.deps.BusMetrics != nil {
		metrics["event_bus"] = s.deps.BusMetrics()
	}

	writeJSON(w, http.StatusOK, metrics)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEARNER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type registerLearnerRequest struct {
	LearnerID   string `json:"learner_id,omitempty"`
	DisplayName string `json:"display_name"`
}

type registerLearnerResponse struct {
	LearnerID   string    `json:"learner_id"`
	DisplayName string    `json:"display_name"`
	Level       int       `json:"level"`
	CreatedAt   time.Time `json:"created_at"`
}

// handleRegisterLearner handles POST /api/v1/learners
func (s *Server) handleRegisterLearner(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterLearnerHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Registration not configured")
		return
	}

	var req registerLearnerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RegisterLearnerHandler.Handle(r.Context(), command.RegisterLearnerCommand{
		LearnerID:   req.LearnerID,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to register learner")
		return
	}

	writeJSON(w, http.StatusCreated, registerLearnerResponse{
		LearnerID:   result.LearnerID,
		DisplayName: result.DisplayName,
		Level:       result.Level,
		CreatedAt:   result.CreatedAt,
	})
}

// handleGetProgress handles GET /api/v1/learners/{id}/progress
func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Learner ID is required")
		return
	}

	if s.deps.GetProgressSnapshotHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Progress handler not configured")
		return
	}

	result, err := s.deps.GetProgressSnapshotHandler.Handle(r.Context(), query.GetProgressSnapshotQuery{
		LearnerID: learnerID,
		At:        getQueryParamTime(r, "at"),
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to get progress", logger.LearnerID(learnerID))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetDailyLesson handles GET /api/v1/learners/{id}/lesson
func (s *Server) handleGetDailyLesson(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Learner ID is required")
		return
	}

	if s.deps.GetDailyLessonHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Lesson handler not configured")
		return
	}

	result, err := s.deps.GetDailyLessonHandler.Handle(r.Context(), query.GetDailyLessonQuery{
		LearnerID: learnerID,
		Activity:  learner.ActivityKind(r.URL.Query().Get("activity")),
		CountHint: getQueryParamInt(r, "count", 0),
		At:        getQueryParamTime(r, "at"),
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to build daily lesson", logger.LearnerID(learnerID))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetBadges handles GET /api/v1/learners/{id}/badges
func (s *Server) handleGetBadges(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Learner ID is required")
		return
	}

	if s.deps.GetBadgesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Badges handler not configured")
		return
	}

	result, err := s.deps.GetBadgesHandler.Handle(r.Context(), query.GetBadgesQuery{
		LearnerID: learnerID,
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to get badges", logger.LearnerID(learnerID))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORDING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type recordWordRequest struct {
	WordID   string `json:"word_id"`
	Activity string `json:"activity"`
}

type countersView struct {
	TotalWords    int `json:"total_words"`
	Flashcards    int `json:"flashcards"`
	Pronunciation int `json:"pronunciation"`
	Grammar       int `json:"grammar"`
}

type earnedBadgeView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	XPBonus int    `json:"xp_bonus"`
}

type recordWordResponse struct {
	LearnerID      string            `json:"learner_id"`
	XPGained       int               `json:"xp_gained"`
	NewXP          int               `json:"new_xp"`
	NewLevel       int               `json:"new_level"`
	LeveledUp      bool              `json:"leveled_up"`
	CurrentStreak  int               `json:"current_streak"`
	LongestStreak  int               `json:"longest_streak"`
	Counters       countersView      `json:"counters"`
	RemainingQuota int               `json:"remaining_quota"`
	NewBadges      []earnedBadgeView `json:"new_badges"`
	RecordedAt     time.Time         `json:"recorded_at"`
}

// handleRecordWordLearned handles POST /api/v1/learners/{id}/words
func (s *Server) handleRecordWordLearned(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Learner ID is required")
		return
	}

	if s.deps.RecordWordLearnedHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Recording not configured")
		return
	}

	var req recordWordRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RecordWordLearnedHandler.Handle(r.Context(), command.RecordWordLearnedCommand{
		LearnerID:     learnerID,
		WordID:        req.WordID,
		Activity:      learner.ActivityKind(req.Activity),
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to record word",
			logger.LearnerID(learnerID), logger.WordID(req.WordID))
		return
	}

	writeJSON(w, http.StatusOK, recordWordResponse{
		LearnerID:      result.LearnerID,
		XPGained:       result.XPGained,
		NewXP:          result.NewXP,
		NewLevel:       result.NewLevel,
		LeveledUp:      result.LeveledUp,
		CurrentStreak:  result.CurrentStreak,
		LongestStreak:  result.LongestStreak,
		Counters:       toCountersView(result.Counters),
		RemainingQuota: result.RemainingQuota,
		NewBadges:      toBadgeViews(result.NewBadges),
		RecordedAt:     result.RecordedAt,
	})
}

type recordActivityRequest struct {
	Activity string `json:"activity"`
	XP       int    `json:"xp"`
}

type recordActivityResponse struct {
	LearnerID      string            `json:"learner_id"`
	XPGained       int               `json:"xp_gained"`
	NewXP          int               `json:"new_xp"`
	NewLevel       int               `json:"new_level"`
	LeveledUp      bool              `json:"leveled_up"`
	CurrentStreak  int               `json:"current_streak"`
	Counters       countersView      `json:"counters"`
	RemainingQuota int               `json:"remaining_quota"`
	NewBadges      []earnedBadgeView `json:"new_badges"`
}

// handleRecordXPOnly handles POST /api/v1/learners/{id}/activities
func (s *Server) handleRecordXPOnly(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Learner ID is required")
		return
	}

	if s.deps.RecordXPOnlyHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Recording not configured")
		return
	}

	var req recordActivityRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RecordXPOnlyHandler.Handle(r.Context(), command.RecordXPOnlyCommand{
		LearnerID: learnerID,
		Activity:  learner.ActivityKind(req.Activity),
		Amount:    req.XP,
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to record activity",
			logger.LearnerID(learnerID), logger.Activity(req.Activity))
		return
	}

	writeJSON(w, http.StatusOK, recordActivityResponse{
		LearnerID:      result.LearnerID,
		XPGained:       result.XPGained,
		NewXP:          result.NewXP,
		NewLevel:       result.NewLevel,
		LeveledUp:      result.LeveledUp,
		CurrentStreak:  result.CurrentStreak,
		Counters:       toCountersView(result.Counters),
		RemainingQuota: result.RemainingQuota,
		NewBadges:      toBadgeViews(result.NewBadges),
	})
}

type toggleMemorizedResponse struct {
	LearnerID   string     `json:"learner_id"`
	WordID      string     `json:"word_id"`
	IsMemorized bool       `json:"is_memorized"`
	MemorizedAt *time.Time `json:"memorized_at,omitempty"`
}

// handleToggleMemorized handles POST /api/v1/learners/{id}/words/{word_id}/memorized
func (s *Server) handleToggleMemorized(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	wordID := r.PathValue("word_id")
	if learnerID == "" || wordID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Learner ID and word ID are required")
		return
	}

	if s.deps.ToggleMemorizedHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Recording not configured")
		return
	}

	result, err := s.deps.ToggleMemorizedHandler.Handle(r.Context(), command.ToggleMemorizedCommand{
		LearnerID: learnerID,
		WordID:    wordID,
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to toggle memorized",
			logger.LearnerID(learnerID), logger.WordID(wordID))
		return
	}

	resp := toggleMemorizedResponse{
		LearnerID:   result.LearnerID,
		WordID:      result.WordID,
		IsMemorized: result.IsMemorized,
	}
	if !result.MemorizedAt.IsZero() {
		resp.MemorizedAt = &result.MemorizedAt
	}

	writeJSON(w, http.StatusOK, resp)
}

// ══════════════════════════════════════════════════════════════════════════════
// REVIEW HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetReviewQueue handles GET /api/v1/learners/{id}/reviews
func (s *Server) handleGetReviewQueue(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Learner ID is required")
		return
	}

	if s.deps.GetReviewQueueHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Review handler not configured")
		return
	}

	result, err := s.deps.GetReviewQueueHandler.Handle(r.Context(), query.GetReviewQueueQuery{
		LearnerID: learnerID,
		Limit:     getQueryParamInt(r, "limit", 0),
		At:        getQueryParamTime(r, "at"),
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to get review queue", logger.LearnerID(learnerID))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetReviewStats handles GET /api/v1/learners/{id}/reviews/stats
func (s *Server) handleGetReviewStats(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Learner ID is required")
		return
	}

	if s.deps.GetReviewQueueHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Review handler not configured")
		return
	}

	result, err := s.deps.GetReviewQueueHandler.Stats(r.Context(), learnerID, time.Now().UTC())
	if err != nil {
		s.writeDomainError(w, err, "failed to get review stats", logger.LearnerID(learnerID))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type recordReviewRequest struct {
	WordID  string `json:"word_id"`
	Quality int    `json:"quality"`
}

type recordReviewResponse struct {
	LearnerID      string    `json:"learner_id"`
	WordID         string    `json:"word_id"`
	Quality        int       `json:"quality"`
	Passed         bool      `json:"passed"`
	EasinessFactor float64   `json:"easiness_factor"`
	IntervalDays   int       `json:"interval_days"`
	Repetitions    int       `json:"repetitions"`
	NextReviewAt   time.Time `json:"next_review_at"`
}

// handleRecordReview handles POST /api/v1/learners/{id}/reviews
func (s *Server) handleRecordReview(w http.ResponseWriter, r *http.Request) {
	learnerID := r.PathValue("id")
	if learnerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Learner ID is required")
		return
	}

	if s.deps.RecordReviewHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Review handler not configured")
		return
	}

	var req recordReviewRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	result, err := s.deps.RecordReviewHandler.Handle(r.Context(), command.RecordReviewCommand{
		LearnerID: learnerID,
		WordID:    req.WordID,
		Quality:   req.Quality,
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to record review",
			logger.LearnerID(learnerID), logger.WordID(req.WordID))
		return
	}

	writeJSON(w, http.StatusOK, recordReviewResponse{
		LearnerID:      result.LearnerID,
		WordID:         result.WordID,
		Quality:        result.Quality,
		Passed:         result.Passed,
		EasinessFactor: result.EasinessFactor,
		IntervalDays:   result.IntervalDays,
		Repetitions:    result.Repetitions,
		NextReviewAt:   result.NextReviewAt,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// PUBLIC HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetLeaderboard handles GET /api/v1/leaderboard
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetLeaderboardHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Leaderboard handler not configured")
		return
	}

	result, err := s.deps.GetLeaderboardHandler.Handle(r.Context(), query.GetLeaderboardQuery{
		Limit: getQueryParamInt(r, "limit", 0),
	})
	if err != nil {
		s.writeDomainError(w, err, "failed to get leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetLevels handles GET /api/v1/levels
func (s *Server) handleGetLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, query.GetLevelCatalogue())
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type addWordRequest struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	Band         string `json:"band"`
	NumericLevel int    `json:"numeric_level"`
}

// handleAddWord handles POST /api/v1/words
func (s *Server) handleAddWord(w http.ResponseWriter, r *http.Request) {
	if s.deps.WordCatalogue == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Word import not configured")
		return
	}

	var req addWordRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	item, err := catalogue.NewItem(req.ID, req.Text, catalogue.DifficultyBand(req.Band), req.NumericLevel)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := s.deps.WordCatalogue.Add(r.Context(), item); err != nil {
		s.writeDomainError(w, err, "failed to add word", logger.WordID(req.ID))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": item.ID, "status": "created"})
}

// ══════════════════════════════════════════════════════════════════════════════
// SHARED HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody parses a JSON request body, writing a 400 on failure.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload")
		return false
	}

	return true
}

// writeDomainError maps domain errors to HTTP status codes and logs
// anything unexpected.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, logMsg string, fields ...logger.Field) {
	switch {
	case errors.Is(err, learner.ErrLearnerNotFound),
		errors.Is(err, shared.ErrLearnerNotFound),
		errors.Is(err, catalogue.ErrItemNotFound),
		errors.Is(err, review.ErrStateNotFound),
		errors.Is(err, badge.ErrBadgeNotFound),
		errors.Is(err, shared.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, learner.ErrWordAlreadyLearned):
		writeJSONError(w, http.StatusConflict, "word_already_learned", err.Error())

	case errors.Is(err, learner.ErrLearnerAlreadyExists),
		errors.Is(err, shared.ErrAlreadyExists):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())

	case errors.Is(err, shared.ErrQuotaExceeded):
		writeJSONError(w, http.StatusTooManyRequests, "quota_exceeded", err.Error())

	case errors.Is(err, shared.ErrOptimisticLock),
		errors.Is(err, shared.ErrConcurrentModification):
		writeJSONError(w, http.StatusConflict, "conflict", "Concurrent update, please retry")

	case errors.Is(err, shared.ErrUnknownActivity),
		errors.Is(err, review.ErrInvalidQuality),
		errors.Is(err, shared.ErrInvalidQuality),
		errors.Is(err, learner.ErrInvalidXPAmount),
		errors.Is(err, learner.ErrInvalidDisplayName),
		errors.Is(err, shared.ErrInvalidLearnerID),
		errors.Is(err, catalogue.ErrInvalidBand),
		errors.Is(err, catalogue.ErrInvalidNumericLevel),
		errors.Is(err, shared.ErrValueOutOfRange):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())

	default:
		s.log.Error(logMsg, append(fields, logger.Err(err))...)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func toCountersView(c learner.DailyCounters) countersView {
	return countersView{
		TotalWords:    c.TotalWords,
		Flashcards:    c.Flashcards,
		Pronunciation: c.Pronunciation,
		Grammar:       c.Grammar,
	}
}

func toBadgeViews(badges []badge.Badge) []earnedBadgeView {
	views := make([]earnedBadgeView, 0, len(badges))
	for _, b := range badges {
		views = append(views, earnedBadgeView{
			ID:      b.ID,
			Name:    b.Name,
			XPBonus: b.XPBonus,
		})
	}
	return views
}
