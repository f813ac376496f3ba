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

type VoteHandler struct {
	voteService    *services.VoteService
	sessionService *services.SessionService
}

func NewVoteHandler(voteService *services.VoteService, sessionService *services.SessionService) *VoteHandler {
	return &VoteHandler{
		voteService:    voteService,
		sessionService: sessionService,
	}
}

// CastVote writes a comparison directly to the permanent ledger
// @Summary Cast a direct vote
// @Description Immediately ledgers a single comparison and updates both ratings with the default K-factor, bypassing the tournament buffer.
// @Tags votes
// @Accept json
// @Produce json
// @Param request body models.CastVoteRequest true "Winner, loser and optional comment"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /votes [post]
func (h *VoteHandler) CastVote(c *gin.Context) {
	tgID, ok := auth.GetCallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "winner_id and loser_id are required"})
		return
	}

	voteID, err := h.voteService.CastVote(tgID, req.WinnerID, req.LoserID, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSameCandidate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Winner and loser cannot be the same candidate"})
		case errors.Is(err, services.ErrCandidateNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidate IDs"})
		case errors.Is(err, services.ErrCandidateInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Candidate is not active"})
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cast vote"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"vote_id": voteID})
}

// GetRandomPair returns two random active candidates
// @Summary Get a random pair of candidates
// @Tags votes
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Router /pair [get]
func (h *VoteHandler) GetRandomPair(c *gin.Context) {
	pair, err := h.voteService.GetRandomPair()
	if err != nil {
		if errors.Is(err, services.ErrNotEnoughCandidates) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not enough active candidates. Need at least 2."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to pick a pair"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pair": pair})
}

// GetMatchupStats returns head-to-head stats between two candidates
// @Summary Get matchup statistics
// @Tags votes
// @Produce json
// @Param candidate1 query int true "First candidate ID"
// @Param candidate2 query int true "Second candidate ID"
// @Success 200 {object} models.MatchupStats
// @Failure 400 {object} map[string]string
// @Router /matchups [get]
func (h *VoteHandler) GetMatchupStats(c *gin.Context) {
	candidate1, err1 := strconv.ParseUint(c.Query("candidate1"), 10, 32)
	candidate2, err2 := strconv.ParseUint(c.Query("candidate2"), 10, 32)
	if err1 != nil || err2 != nil || candidate1 == 0 || candidate2 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "candidate1 and candidate2 parameters are required"})
		return
	}

	stats, err := h.voteService.GetMatchupStats(uint(candidate1), uint(candidate2))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load matchup stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matchup": stats})
}

// GetUserStats returns the caller's voting progress or final stats
// @Summary Get the caller's stats
// @Description Before completion: session progress (buffered vote count). After completion: ledger totals and recent votes.
// @Tags votes
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /me/stats [get]
func (h *VoteHandler) GetUserStats(c *gin.Context) {
	tgID, ok := auth.GetCallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	username, fullName := auth.GetCallerProfile(c)
	if err := h.voteService.SyncUser(tgID, username, fullName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync user"})
		return
	}

	completed, err := h.sessionService.IsTournamentCompleted(tgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	if completed {
		stats, err := h.voteService.GetUserStats(tgID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
		history, err := h.voteService.GetUserVoteHistory(tgID, 10)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vote history"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"tournament_completed": true,
			"user":                 stats,
			"recent_votes":         history,
		})
		return
	}

	session, _, err := h.sessionService.GetOrCreateSession(tgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}

	votesCount, err := h.sessionService.CountSessionVotes(session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count session votes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tournament_completed": false,
		"session_id":           session.ID,
		"votes_in_session":     votesCount,
		"user": gin.H{
			"tg_id":       tgID,
			"username":    username,
			"total_votes": votesCount,
		},
	})
}
