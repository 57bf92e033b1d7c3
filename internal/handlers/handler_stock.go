package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portsrepo "github.com/finstok/finstok_backend/internal/core/ports/repositories"
	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
	"github.com/finstok/finstok_backend/internal/middleware"
)

// stockHandler handles HTTP requests for stock positions, movements, and
// reservations.
type stockHandler struct {
	stockService    portssvc.StockSvcFacade
	movementService portssvc.MovementSvcFacade
}

// newStockHandler creates a new stockHandler.
func newStockHandler(stockService portssvc.StockSvcFacade, movementService portssvc.MovementSvcFacade) *stockHandler {
	return &stockHandler{
		stockService:    stockService,
		movementService: movementService,
	}
}

// registerStockRoutes registers routes related to stock.
func registerStockRoutes(rg *gin.RouterGroup, stockService portssvc.StockSvcFacade, movementService portssvc.MovementSvcFacade) {
	h := newStockHandler(stockService, movementService)

	stock := rg.Group("/stock")
	{
		stock.GET("", h.getStock)
		stock.POST("/count", h.countAdjust)
		stock.POST("/replay", h.replayStock)
	}

	movements := rg.Group("/movements")
	{
		movements.POST("", h.recordMovement)
		movements.GET("", h.listMovements)
	}

	reservations := rg.Group("/reservations")
	{
		reservations.POST("", h.reserve)
		reservations.POST("/:id/release", h.release)
	}
}

// getStock godoc
// @Summary List stock positions
// @Description Retrieves on-hand/reserved/net-available per product and location, filterable by warehouse or location
// @Tags stock
// @Produce json
// @Param warehouseID query string false "Restrict to one warehouse"
// @Param locationID query string false "Restrict to one location"
// @Success 200 {object} dto.ListStockResponse
// @Failure 500 {object} map[string]string "Stock record violates invariants"
// @Security BearerAuth
// @Router /stock [get]
func (h *stockHandler) getStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	var params dto.StockFilterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	records, err := h.stockService.GetStock(c.Request.Context(), tenantID, portsrepo.StockFilter{
		WarehouseID: params.WarehouseID,
		LocationID:  params.LocationID,
	})
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			logger.Warn("Stock listing failed", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list stock", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stock"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ListStockResponse{Records: dto.ToStockRecordResponses(records)})
}

// recordMovement godoc
// @Summary Record a stock movement
// @Description Appends a movement (receipt, issue, or transfer) and adjusts on-hand atomically
// @Tags stock
// @Accept json
// @Produce json
// @Param movement body dto.RecordMovementRequest true "Movement details"
// @Success 201 {object} dto.MovementResponse
// @Failure 400 {object} map[string]string "Invalid movement"
// @Failure 409 {object} map[string]string "Insufficient stock or available quantity"
// @Security BearerAuth
// @Router /movements [post]
func (h *stockHandler) recordMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RecordMovement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	movement, err := h.movementService.RecordMovement(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			logger.Warn("Failed to record movement", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to record movement in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record movement"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToMovementResponse(movement))
}

// listMovements godoc
// @Summary List stock movements
// @Description Paginated movement feed, newest first, optionally filtered by product
// @Tags stock
// @Produce json
// @Param productID query string false "Restrict to one product"
// @Param limit query int false "Page size (default 20)"
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListMovementsResponse
// @Security BearerAuth
// @Router /movements [get]
func (h *stockHandler) listMovements(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	var params dto.ListMovementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.stockService.ListMovements(c.Request.Context(), tenantID, params)
	if err != nil {
		logger.Error("Failed to list movements", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve movements"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// reserve godoc
// @Summary Reserve stock
// @Description Places a hold against net available quantity without moving stock
// @Tags stock
// @Accept json
// @Produce json
// @Param reservation body dto.ReserveRequest true "Reservation details"
// @Success 201 {object} dto.ReservationResponse
// @Failure 409 {object} map[string]string "Insufficient available quantity"
// @Security BearerAuth
// @Router /reservations [post]
func (h *stockHandler) reserve(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Reserve", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	reservation, err := h.movementService.Reserve(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			logger.Warn("Failed to reserve stock", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to reserve stock in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reserve stock"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToReservationResponse(reservation))
}

// release godoc
// @Summary Release a reservation
// @Description Returns the reserved quantity to net available; a second release fails
// @Tags stock
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} dto.ReservationResponse
// @Failure 404 {object} map[string]string "Reservation not found"
// @Failure 409 {object} map[string]string "Reservation already released"
// @Security BearerAuth
// @Router /reservations/{id}/release [post]
func (h *stockHandler) release(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reservationID := c.Param("id")

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	reservation, err := h.movementService.Release(c.Request.Context(), tenantID, reservationID, userID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			logger.Warn("Failed to release reservation", slog.String("error", err.Error()), slog.String("reservation_id", reservationID))
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to release reservation in service", slog.String("error", err.Error()), slog.String("reservation_id", reservationID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to release reservation"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToReservationResponse(reservation))
}

// countAdjust godoc
// @Summary Reconcile a physical count
// @Description Posts a synthetic movement for the delta between the count and the cached on-hand
// @Tags stock
// @Accept json
// @Produce json
// @Param count body dto.CountAdjustRequest true "Count details"
// @Success 200 {object} dto.MovementResponse "Adjustment movement, or empty body when the count matched"
// @Failure 409 {object} map[string]string "Outstanding reservations exceed the counted quantity"
// @Security BearerAuth
// @Router /stock/count [post]
func (h *stockHandler) countAdjust(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CountAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CountAdjust", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	movement, err := h.movementService.CountAdjust(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			logger.Warn("Failed to adjust count", slog.String("error", err.Error()))
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to adjust count in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust count"})
		}
		return
	}

	if movement == nil {
		// Count matched the cache; nothing was written
		c.JSON(http.StatusOK, gin.H{"adjusted": false})
		return
	}

	c.JSON(http.StatusOK, dto.ToMovementResponse(movement))
}

// replayStock godoc
// @Summary Replay on-hand from the movement log
// @Description Recomputes on-hand for one product/location and reports drift; repair=true overwrites the cache after the report
// @Tags stock
// @Produce json
// @Param productID query string true "Product ID"
// @Param locationID query string true "Location ID"
// @Param repair query bool false "Overwrite the cached on-hand on drift"
// @Success 200 {object} dto.StockReplayResponse
// @Failure 500 {object} map[string]string "Cached on-hand drifted from the log"
// @Security BearerAuth
// @Router /stock/replay [post]
func (h *stockHandler) replayStock(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	productID := c.Query("productID")
	locationID := c.Query("locationID")
	if productID == "" || locationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productID and locationID are required"})
		return
	}
	repair := c.Query("repair") == "true"

	resp, err := h.stockService.ReplayStock(c.Request.Context(), tenantID, productID, locationID, repair, userID)
	if err != nil {
		// Drift still returns the comparison so the operator sees both figures
		if resp != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "replay": resp})
			return
		}
		if status, mapped := statusForError(err); mapped {
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to replay stock", slog.String("error", err.Error()), slog.String("product_id", productID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replay stock"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
