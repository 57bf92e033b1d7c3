package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
	"github.com/finstok/finstok_backend/internal/middleware"
)

// ledgerHandler handles HTTP requests for posting groups and reversals.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newLedgerHandler creates a new ledgerHandler.
func newLedgerHandler(ledgerService portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService}
}

// registerLedgerRoutes registers routes related to the posting engine.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	postings := rg.Group("/postings")
	{
		postings.POST("", h.post)
		postings.GET("", h.listGroups)
		postings.GET("/:id", h.getGroup)
	}

	transactions := rg.Group("/transactions")
	{
		transactions.POST("/:id/reverse", h.reverse)
	}
}

// post godoc
// @Summary Post a balanced group of transactions
// @Description Commits a balanced posting group atomically; debits must equal credits
// @Tags postings
// @Accept json
// @Produce json
// @Param posting body dto.PostRequest true "Posting group"
// @Success 201 {object} dto.PostingGroupResponse
// @Failure 400 {object} map[string]string "Unbalanced or invalid group"
// @Failure 409 {object} map[string]string "Concurrent posting conflict"
// @Security BearerAuth
// @Router /postings [post]
func (h *ledgerHandler) post(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Post", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	group, err := h.ledgerService.Post(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			logger.Warn("Failed to post group", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to post group in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post group"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToPostingGroupResponse(group))
}

// listGroups godoc
// @Summary List posting groups
// @Description Paginated listing, newest first; reversal pairs hidden unless includeReversals=true
// @Tags postings
// @Produce json
// @Param limit query int false "Page size"
// @Param nextToken query string false "Pagination token"
// @Param includeReversals query bool false "Include reversed groups and their reversals"
// @Success 200 {object} dto.ListGroupsResponse
// @Security BearerAuth
// @Router /postings [get]
func (h *ledgerHandler) listGroups(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	var params dto.ListGroupsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}

	resp, err := h.ledgerService.ListGroups(c.Request.Context(), tenantID, params)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list posting groups", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posting groups"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// getGroup godoc
// @Summary Get a posting group by ID
// @Description Retrieves a posting group with its transactions
// @Tags postings
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} dto.PostingGroupResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /postings/{id} [get]
func (h *ledgerHandler) getGroup(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	groupID := c.Param("id")

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	group, err := h.ledgerService.GetGroupByID(c.Request.Context(), tenantID, groupID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			c.JSON(status, gin.H{"error": "Posting group not found"})
		} else {
			logger.Error("Failed to get posting group", slog.String("error", err.Error()), slog.String("group_id", groupID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve posting group"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToPostingGroupResponse(group))
}

// reverse godoc
// @Summary Reverse the posting group containing a transaction
// @Description Creates an offsetting group; the original group is marked REVERSED, never mutated
// @Tags postings
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 201 {object} dto.PostingGroupResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Group already reversed or is itself a reversal"
// @Security BearerAuth
// @Router /transactions/{id}/reverse [post]
func (h *ledgerHandler) reverse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("id")

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	group, err := h.ledgerService.Reverse(c.Request.Context(), tenantID, transactionID, userID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			logger.Warn("Failed to reverse group", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to reverse group in service", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse posting group"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToPostingGroupResponse(group))
}
