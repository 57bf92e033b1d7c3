package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
	"github.com/finstok/finstok_backend/internal/middleware"
)

// checkHandler handles HTTP requests for the post-dated check portfolio.
type checkHandler struct {
	checkService portssvc.CheckSvcFacade
}

// newCheckHandler creates a new checkHandler.
func newCheckHandler(checkService portssvc.CheckSvcFacade) *checkHandler {
	return &checkHandler{checkService: checkService}
}

// registerCheckRoutes registers routes related to checks.
func registerCheckRoutes(rg *gin.RouterGroup, checkService portssvc.CheckSvcFacade) {
	h := newCheckHandler(checkService)

	checks := rg.Group("/checks")
	{
		checks.POST("", h.createCheck)
		checks.GET("", h.listChecks)
		checks.GET("/:id", h.getCheck)
		checks.POST("/:id/settle", h.settleCheck)
		checks.POST("/:id/bounce", h.bounceCheck)
	}
}

// createCheck godoc
// @Summary Register a check in the portfolio
// @Description Creates a check tracking record; no ledger transaction is produced
// @Tags checks
// @Accept json
// @Produce json
// @Param check body dto.CreateCheckRequest true "Check details"
// @Success 201 {object} dto.CheckResponse
// @Failure 400 {object} map[string]string "Invalid input or currency mismatch"
// @Security BearerAuth
// @Router /checks [post]
func (h *checkHandler) createCheck(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateCheck", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	check, err := h.checkService.CreateCheck(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			logger.Warn("Failed to create check", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create check in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create check"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToCheckResponse(check))
}

// listChecks godoc
// @Summary List checks
// @Description Retrieves checks ordered by due date, optionally filtered by status and type
// @Tags checks
// @Produce json
// @Param status query string false "Check status (PORTFOLIO, COLLECTED, PAID, BOUNCED)"
// @Param type query string false "Check type (RECEIVED, GIVEN)"
// @Success 200 {object} dto.ListChecksResponse
// @Security BearerAuth
// @Router /checks [get]
func (h *checkHandler) listChecks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	var params dto.ListChecksParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	checks, err := h.checkService.ListChecks(c.Request.Context(), tenantID, params)
	if err != nil {
		logger.Error("Failed to list checks", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve checks"})
		return
	}

	c.JSON(http.StatusOK, dto.ListChecksResponse{Checks: dto.ToCheckResponses(checks)})
}

// getCheck godoc
// @Summary Get a check by ID
// @Tags checks
// @Produce json
// @Param id path string true "Check ID"
// @Success 200 {object} dto.CheckResponse
// @Failure 404 {object} map[string]string "Check not found"
// @Security BearerAuth
// @Router /checks/{id} [get]
func (h *checkHandler) getCheck(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	checkID := c.Param("id")

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	check, err := h.checkService.GetCheckByID(c.Request.Context(), tenantID, checkID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			c.JSON(status, gin.H{"error": "Check not found"})
		} else {
			logger.Error("Failed to get check", slog.String("error", err.Error()), slog.String("check_id", checkID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve check"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCheckResponse(check))
}

// settleCheck godoc
// @Summary Settle a portfolio check
// @Description Moves the check to COLLECTED/PAID and atomically posts the settlement group
// @Tags checks
// @Accept json
// @Produce json
// @Param id path string true "Check ID"
// @Param settlement body dto.SettleCheckRequest true "Settlement account"
// @Success 200 {object} dto.SettleCheckResponse
// @Failure 404 {object} map[string]string "Check not found"
// @Failure 409 {object} map[string]string "Check already settled or bounced"
// @Security BearerAuth
// @Router /checks/{id}/settle [post]
func (h *checkHandler) settleCheck(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	checkID := c.Param("id")

	var req dto.SettleCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SettleCheck", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	check, group, err := h.checkService.Settle(c.Request.Context(), tenantID, checkID, req.SettlementAccountID, userID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			logger.Warn("Failed to settle check", slog.String("error", err.Error()), slog.String("check_id", checkID))
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to settle check in service", slog.String("error", err.Error()), slog.String("check_id", checkID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to settle check"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.SettleCheckResponse{
		Check:        dto.ToCheckResponse(check),
		PostingGroup: dto.ToPostingGroupResponse(group),
	})
}

// bounceCheck godoc
// @Summary Mark a portfolio check as bounced
// @Description Transitions the check to BOUNCED; no ledger transaction is produced
// @Tags checks
// @Produce json
// @Param id path string true "Check ID"
// @Success 200 {object} dto.CheckResponse
// @Failure 404 {object} map[string]string "Check not found"
// @Failure 409 {object} map[string]string "Check already left the portfolio"
// @Security BearerAuth
// @Router /checks/{id}/bounce [post]
func (h *checkHandler) bounceCheck(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	checkID := c.Param("id")

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	check, err := h.checkService.MarkBounced(c.Request.Context(), tenantID, checkID, userID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			logger.Warn("Failed to bounce check", slog.String("error", err.Error()), slog.String("check_id", checkID))
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to bounce check in service", slog.String("error", err.Error()), slog.String("check_id", checkID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to bounce check"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToCheckResponse(check))
}
