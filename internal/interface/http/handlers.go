package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wordquest-app/wordquest-rankings/internal/application/command"
	"github.com/wordquest-app/wordquest-rankings/internal/application/query"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/leaderboard"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/player"
	"github.com/wordquest-app/wordquest-rankings/internal/domain/reward"
	"github.com/wordquest-app/wordquest-rankings/pkg/logger"
)

// maxBodyBytes caps request bodies; challenge results with a full
// lobby stay well under this.
const maxBodyBytes = 1 << 20

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "WordQuest Rankings API",
		"version":     "v1",
		"description": "Fair cross-age scoring and leaderboards for WordQuest",
		"endpoints": map[string]string{
			"health":      "/health",
			"leaderboard": "/api/v1/leaderboard",
			"player_rank": "/api/v1/players/{id}/rank",
			"rewards":     "/api/v1/players/{id}/rewards",
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

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
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

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetLeaderboard handles GET /api/v1/leaderboard
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetLeaderboardHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Leaderboard handler not configured")
		return
	}

	q := query.GetLeaderboardQuery{
		Period:   leaderboard.PeriodType(getQueryParam(r, "period", "daily")),
		AgeGroup: player.AgeGroup(getQueryParam(r, "age_group", "")),
		Limit:    getQueryParamInt(r, "limit", 0),
	}
	if err := q.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.GetLeaderboardHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to get leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetPlayerRank handles GET /api/v1/players/{id}/rank
func (s *Server) handleGetPlayerRank(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")
	if playerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Player ID is required")
		return
	}

	if s.deps.GetPlayerRankHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Rank handler not configured")
		return
	}

	q := query.GetPlayerRankQuery{
		PlayerID: playerID,
		Period:   leaderboard.PeriodType(getQueryParam(r, "period", "daily")),
		AgeGroup: player.AgeGroup(getQueryParam(r, "age_group", "")),
	}
	if err := q.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.GetPlayerRankHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to get player rank")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// PLAYER WRITE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type recordAnswerRequest struct {
	Correct     bool    `json:"correct"`
	Difficulty  int     `json:"difficulty"`
	TimeSpentMs int64   `json:"time_spent_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
	StreakBonus float64 `json:"streak_bonus"`
}

// handleRecordAnswer handles POST /api/v1/players/{id}/answers
func (s *Server) handleRecordAnswer(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")
	if playerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Player ID is required")
		return
	}

	if s.deps.RecordAnswerHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Answer handler not configured")
		return
	}

	var req recordAnswerRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.RecordAnswerCommand{
		PlayerID:    playerID,
		Correct:     req.Correct,
		Difficulty:  req.Difficulty,
		TimeSpent:   time.Duration(req.TimeSpentMs) * time.Millisecond,
		MaxTime:     time.Duration(req.MaxTimeMs) * time.Millisecond,
		StreakBonus: req.StreakBonus,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.RecordAnswerHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to record answer")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type completeProfileRequest struct {
	PlayerID         string `json:"player_id,omitempty"`
	DisplayName      string `json:"display_name"`
	BirthYear        int    `json:"birth_year"`
	Grade            int    `json:"grade"`
	Language         string `json:"language"`
	CompetitionOptIn bool   `json:"competition_opt_in"`
}

// handleCompleteProfile handles POST /api/v1/players/profile
// Creates a new player when player_id is absent, updates otherwise.
func (s *Server) handleCompleteProfile(w http.ResponseWriter, r *http.Request) {
	if s.deps.CompleteProfileHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Profile handler not configured")
		return
	}

	var req completeProfileRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.CompleteProfileCommand{
		PlayerID:         req.PlayerID,
		DisplayName:      req.DisplayName,
		BirthYear:        req.BirthYear,
		Grade:            req.Grade,
		Language:         req.Language,
		CompetitionOptIn: req.CompetitionOptIn,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.CompleteProfileHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to complete profile")
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

type linkParentRequest struct {
	Code         string `json:"code"`
	ParentChatID int64  `json:"parent_chat_id"`
}

// handleLinkParent handles POST /api/v1/players/{id}/parent-link
func (s *Server) handleLinkParent(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")
	if playerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Player ID is required")
		return
	}

	if s.deps.LinkParentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Parent link handler not configured")
		return
	}

	var req linkParentRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.LinkParentCommand{
		PlayerID:     playerID,
		Code:         req.Code,
		ParentChatID: req.ParentChatID,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.LinkParentHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to link parent")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// REWARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListRewards handles GET /api/v1/players/{id}/rewards
func (s *Server) handleListRewards(w http.ResponseWriter, r *http.Request) {
	playerID := r.PathValue("id")
	if playerID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Player ID is required")
		return
	}

	if s.deps.ListRewardsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Rewards handler not configured")
		return
	}

	q := query.ListRewardsQuery{
		PlayerID:      playerID,
		OnlyUnclaimed: getQueryParamBool(r, "unclaimed"),
	}
	if err := q.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.ListRewardsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to list rewards")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type claimRewardRequest struct {
	PlayerID string `json:"player_id"`
}

// handleClaimReward handles POST /api/v1/rewards/{id}/claim
func (s *Server) handleClaimReward(w http.ResponseWriter, r *http.Request) {
	recordID := r.PathValue("id")
	if recordID == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Reward ID is required")
		return
	}

	if s.deps.ClaimRewardHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Claim handler not configured")
		return
	}

	var req claimRewardRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	cmd := command.ClaimRewardCommand{
		RecordID: recordID,
		PlayerID: req.PlayerID,
	}
	if err := cmd.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.ClaimRewardHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to claim reward")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// CHALLENGE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type challengeScoreRequest struct {
	PlayerID          string `json:"player_id"`
	RawScore          int    `json:"raw_score"`
	CorrectAnswers    int    `json:"correct_answers"`
	QuestionsAnswered int    `json:"questions_answered"`
	TotalTimeMs       int64  `json:"total_time_ms"`
}

type challengeResultRequest struct {
	Scores []challengeScoreRequest `json:"scores"`
}

// handleChallengeResult handles POST /api/v1/challenges/result
func (s *Server) handleChallengeResult(w http.ResponseWriter, r *http.Request) {
	if s.deps.ChallengeResultHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Challenge handler not configured")
		return
	}

	var req challengeResultRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	q := query.ChallengeResultQuery{
		Scores: make([]query.ChallengeScoreInput, len(req.Scores)),
	}
	for i, sc := range req.Scores {
		q.Scores[i] = query.ChallengeScoreInput{
			PlayerID:          sc.PlayerID,
			RawScore:          sc.RawScore,
			CorrectAnswers:    sc.CorrectAnswers,
			QuestionsAnswered: sc.QuestionsAnswered,
			TotalTime:         time.Duration(sc.TotalTimeMs) * time.Millisecond,
		}
	}
	if err := q.Validate(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := s.deps.ChallengeResultHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, err, "failed to score challenge")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody decodes a JSON request body into dst. Writes the error
// response itself and returns false when decoding fails.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON: "+err.Error())
		return false
	}
	return true
}

// writeDomainError maps domain errors to HTTP status codes.
// Anything unmapped is an internal failure.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	switch {
	case errors.Is(err, player.ErrPlayerNotFound):
		writeJSONError(w, http.StatusNotFound, "player_not_found", "Player not found")
	case errors.Is(err, leaderboard.ErrPlayerNotRanked):
		writeJSONError(w, http.StatusNotFound, "player_not_ranked", "Player is not on this leaderboard")
	case errors.Is(err, leaderboard.ErrSnapshotNotFound):
		writeJSONError(w, http.StatusNotFound, "leaderboard_not_found", "Leaderboard is not built yet")
	case errors.Is(err, reward.ErrRewardNotFound):
		writeJSONError(w, http.StatusNotFound, "reward_not_found", "Reward not found")
	case errors.Is(err, reward.ErrNotOwner):
		writeJSONError(w, http.StatusForbidden, "not_owner", "Reward belongs to another player")
	case errors.Is(err, reward.ErrAlreadyClaimed):
		writeJSONError(w, http.StatusConflict, "already_claimed", "Reward has already been claimed")
	case errors.Is(err, command.ErrInvalidLinkCode):
		writeJSONError(w, http.StatusForbidden, "invalid_link_code", "Parent link code is invalid or already used")
	case errors.Is(err, player.ErrProfileIncomplete):
		writeJSONError(w, http.StatusUnprocessableEntity, "profile_incomplete", "Player profile must be completed first")
	case errors.Is(err, player.ErrInvalidGrade),
		errors.Is(err, player.ErrInvalidLanguage),
		errors.Is(err, player.ErrInvalidParentChat),
		errors.Is(err, leaderboard.ErrInvalidPeriodType):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.logger.Error(logMsg,
			logger.Err(err),
			logger.String("path", r.URL.Path),
			logger.String("request_id", getRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
