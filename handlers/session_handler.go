package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"voting-bracket-api/auth"
	"voting-bracket-api/models"
	"voting-bracket-api/services"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService    *services.SessionService
	completionService *services.CompletionService
	voteService       *services.VoteService
	candidateService  *services.CandidateService
}

func NewSessionHandler(
	sessionService *services.SessionService,
	completionService *services.CompletionService,
	voteService *services.VoteService,
	candidateService *services.CandidateService,
) *SessionHandler {
	return &SessionHandler{
		sessionService:    sessionService,
		completionService: completionService,
		voteService:       voteService,
		candidateService:  candidateService,
	}
}

// StartTournament starts or resumes the caller's tournament session
// @Summary Start or resume a tournament session
// @Description Returns the caller's active session (creating one if needed) together with the saved client state. A caller who already completed their tournament gets 409.
// @Tags tournament
// @Accept json
// @Produce json
// @Param request body models.StartTournamentRequest false "Set reset to discard the current non-completed session first"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /tournament/start [post]
func (h *SessionHandler) StartTournament(c *gin.Context) {
	tgID, ok := auth.GetCallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.StartTournamentRequest
	// The body is optional; an empty one means plain start/resume.
	_ = c.ShouldBindJSON(&req)

	username, fullName := auth.GetCallerProfile(c)
	if err := h.voteService.SyncUser(tgID, username, fullName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync user"})
		return
	}

	if req.Reset {
		if err := h.sessionService.ResetActiveSession(tgID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset session"})
			return
		}
	}

	session, alreadyCompleted, err := h.sessionService.GetOrCreateSession(tgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start tournament session"})
		return
	}

	if alreadyCompleted {
		c.JSON(http.StatusConflict, gin.H{
			"error":                "Tournament already completed",
			"tournament_completed": true,
		})
		return
	}

	state, err := h.sessionService.GetSessionState(session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":   session.ID,
		"session_data": state,
		"message":      "Tournament session started or resumed",
	})
}

// SaveState overwrites the opaque client-side tournament state
// @Summary Save tournament client state
// @Description Stores the opaque state blob the client uses to survive page reloads. Last writer wins.
// @Tags tournament
// @Accept json
// @Produce json
// @Param request body models.SaveStateRequest true "Session id and state blob"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tournament/state [post]
func (h *SessionHandler) SaveState(c *gin.Context) {
	var req models.SaveStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and state are required"})
		return
	}

	if err := h.sessionService.ReplaceSessionState(req.SessionID, req.State); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "State saved"})
}

// GetState returns the saved client state for a session
// @Summary Load tournament client state
// @Tags tournament
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tournament/{id}/state [get]
func (h *SessionHandler) GetState(c *gin.Context) {
	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
		return
	}

	state, err := h.sessionService.GetSessionState(uint(sessionID))
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "state": state})
}

// Vote buffers one comparison into the caller's session
// @Summary Record a tournament vote
// @Description Buffers the comparison in the session; nothing reaches the permanent ledger until the tournament is completed.
// @Tags tournament
// @Accept json
// @Produce json
// @Param request body models.SessionVoteRequest true "Session vote"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tournament/vote [post]
func (h *SessionHandler) Vote(c *gin.Context) {
	var req models.SessionVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id, winner_id, loser_id and vote_order are required"})
		return
	}

	// The session buffer only checks candidate existence, so activity is
	// validated at the handler boundary.
	for _, id := range []uint{req.WinnerID, req.LoserID} {
		candidate, err := h.candidateService.GetCandidateByID(id)
		if err != nil {
			if errors.Is(err, services.ErrCandidateNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidate IDs"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate candidates"})
			return
		}
		if !candidate.IsActive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Candidate is not active"})
			return
		}
	}

	voteID, err := h.sessionService.AddVoteToSession(
		req.SessionID,
		req.WinnerID,
		req.LoserID,
		*req.VoteOrder,
		services.NormalizeComment(req.Comment),
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		case errors.Is(err, services.ErrInvalidReference):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidate IDs"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record vote"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vote_id":    voteID,
		"session_id": req.SessionID,
		"message":    "Vote recorded in session",
	})
}

// Complete atomically replays the session buffer into the permanent ledger
// @Summary Complete the tournament
// @Description Replays all buffered votes into the ledger in vote order, updates candidate ratings (finale K-factor on the last match) and marks the session completed. All-or-nothing.
// @Tags tournament
// @Accept json
// @Produce json
// @Param request body models.CompleteTournamentRequest true "Session id and optional final comment"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /tournament/complete [post]
func (h *SessionHandler) Complete(c *gin.Context) {
	tgID, ok := auth.GetCallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CompleteTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	username, fullName := auth.GetCallerProfile(c)
	if err := h.voteService.SyncUser(tgID, username, fullName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync user"})
		return
	}

	err := h.completionService.CompleteTournament(req.SessionID, tgID, services.NormalizeComment(req.Comment))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		case errors.Is(err, services.ErrTournamentCompleted):
			c.JSON(http.StatusConflict, gin.H{
				"error":                "Tournament already completed",
				"tournament_completed": true,
			})
		case errors.Is(err, services.ErrEmptySession):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No votes found in session"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete tournament"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tournament completed successfully"})
}
