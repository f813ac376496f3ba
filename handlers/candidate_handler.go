package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"voting-bracket-api/models"
	"voting-bracket-api/services"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	candidateService *services.CandidateService
}

func NewCandidateHandler(candidateService *services.CandidateService) *CandidateHandler {
	return &CandidateHandler{
		candidateService: candidateService,
	}
}

// GetCandidates lists candidates
// @Summary List candidates
// @Tags candidates
// @Produce json
// @Param include_inactive query bool false "Include deactivated candidates"
// @Success 200 {object} map[string]interface{}
// @Router /candidates [get]
func (h *CandidateHandler) GetCandidates(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	candidates, err := h.candidateService.GetAllCandidates(!includeInactive)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve candidates"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"candidates": candidates,
		"total":      len(candidates),
	})
}

// GetCandidate returns one candidate by id
// @Summary Get a candidate
// @Tags candidates
// @Produce json
// @Param id path int true "Candidate ID"
// @Success 200 {object} models.Candidate
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /candidates/{id} [get]
func (h *CandidateHandler) GetCandidate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidate id"})
		return
	}

	candidate, err := h.candidateService.GetCandidateByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrCandidateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve candidate"})
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// CreateCandidate adds a candidate to the catalog
// @Summary Create a candidate
// @Description Registers a candidate with an already-uploaded image path. Image upload itself is handled elsewhere.
// @Tags candidates
// @Accept json
// @Produce json
// @Param request body models.CreateCandidateRequest true "Candidate data"
// @Success 201 {object} models.Candidate
// @Failure 400 {object} map[string]string
// @Router /candidates [post]
func (h *CandidateHandler) CreateCandidate(c *gin.Context) {
	var req models.CreateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and image_path are required"})
		return
	}

	candidate, err := h.candidateService.CreateCandidate(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, candidate)
}

// UpdateCandidate edits candidate metadata or toggles activity
// @Summary Update a candidate
// @Tags candidates
// @Accept json
// @Produce json
// @Param id path int true "Candidate ID"
// @Param request body models.UpdateCandidateRequest true "Fields to update"
// @Success 200 {object} models.Candidate
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /candidates/{id} [patch]
func (h *CandidateHandler) UpdateCandidate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidate id"})
		return
	}

	var req models.UpdateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	candidate, err := h.candidateService.UpdateCandidate(uint(id), req)
	if err != nil {
		if errors.Is(err, services.ErrCandidateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update candidate"})
		return
	}

	c.JSON(http.StatusOK, candidate)
}

// DeleteCandidate removes a candidate from the catalog
// @Summary Delete a candidate
// @Description Hard delete. Ledger entries referencing the candidate are kept.
// @Tags candidates
// @Produce json
// @Param id path int true "Candidate ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /candidates/{id} [delete]
func (h *CandidateHandler) DeleteCandidate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid candidate id"})
		return
	}

	if err := h.candidateService.DeleteCandidate(uint(id)); err != nil {
		if errors.Is(err, services.ErrCandidateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete candidate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Candidate deleted"})
}

// GetTierList returns candidates ranked by rating
// @Summary Get the tier list
// @Description Active candidates ordered by elo rating, then winrate, then wins.
// @Tags candidates
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /tierlist [get]
func (h *CandidateHandler) GetTierList(c *gin.Context) {
	tierlist, err := h.candidateService.GetTierList()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build tier list"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tierlist": tierlist,
		"total":    len(tierlist),
	})
}
