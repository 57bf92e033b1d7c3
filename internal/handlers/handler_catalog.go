package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
	"github.com/finstok/finstok_backend/internal/middleware"
)

// catalogHandler handles HTTP requests for products and locations.
type catalogHandler struct {
	catalogService portssvc.CatalogSvcFacade
}

// newCatalogHandler creates a new catalogHandler.
func newCatalogHandler(catalogService portssvc.CatalogSvcFacade) *catalogHandler {
	return &catalogHandler{catalogService: catalogService}
}

// registerCatalogRoutes registers routes for the product and location catalog.
func registerCatalogRoutes(rg *gin.RouterGroup, catalogService portssvc.CatalogSvcFacade) {
	h := newCatalogHandler(catalogService)

	products := rg.Group("/products")
	{
		products.POST("", h.createProduct)
		products.GET("", h.listProducts)
		products.GET("/:id", h.getProduct)
	}

	locations := rg.Group("/locations")
	{
		locations.POST("", h.createLocation)
		locations.GET("", h.listLocations)
		locations.GET("/:id", h.getLocation)
	}
}

// createProduct godoc
// @Summary Register a new product
// @Description Stock can only be recorded against registered products
// @Tags catalog
// @Accept json
// @Produce json
// @Param product body dto.CreateProductRequest true "Product details"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "SKU already registered"
// @Security BearerAuth
// @Router /products [post]
func (h *catalogHandler) createProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateProduct", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create product in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToProductResponse(product))
}

// listProducts godoc
// @Summary List products
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.ListProductsResponse
// @Security BearerAuth
// @Router /products [get]
func (h *catalogHandler) listProducts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), tenantID)
	if err != nil {
		logger.Error("Failed to list products", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve products"})
		return
	}

	c.JSON(http.StatusOK, dto.ListProductsResponse{Products: dto.ToProductResponses(products)})
}

// getProduct godoc
// @Summary Get a product by ID
// @Tags catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 404 {object} map[string]string "Product not found"
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *catalogHandler) getProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	productID := c.Param("id")

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProductByID(c.Request.Context(), tenantID, productID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			c.JSON(status, gin.H{"error": "Product not found"})
		} else {
			logger.Error("Failed to get product", slog.String("error", err.Error()), slog.String("product_id", productID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToProductResponse(product))
}

// createLocation godoc
// @Summary Register a new storage location
// @Description Stock can only be recorded against registered locations
// @Tags catalog
// @Accept json
// @Produce json
// @Param location body dto.CreateLocationRequest true "Location details"
// @Success 201 {object} dto.LocationResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /locations [post]
func (h *catalogHandler) createLocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateLocation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	location, err := h.catalogService.CreateLocation(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create location in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create location"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToLocationResponse(location))
}

// listLocations godoc
// @Summary List locations
// @Description Retrieves locations, optionally filtered by warehouse
// @Tags catalog
// @Produce json
// @Param warehouseId query string false "Warehouse ID"
// @Success 200 {object} dto.ListLocationsResponse
// @Security BearerAuth
// @Router /locations [get]
func (h *catalogHandler) listLocations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	var warehouseID *string
	if raw := c.Query("warehouseId"); raw != "" {
		warehouseID = &raw
	}

	locations, err := h.catalogService.ListLocations(c.Request.Context(), tenantID, warehouseID)
	if err != nil {
		logger.Error("Failed to list locations", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve locations"})
		return
	}

	c.JSON(http.StatusOK, dto.ListLocationsResponse{Locations: dto.ToLocationResponses(locations)})
}

// getLocation godoc
// @Summary Get a location by ID
// @Tags catalog
// @Produce json
// @Param id path string true "Location ID"
// @Success 200 {object} dto.LocationResponse
// @Failure 404 {object} map[string]string "Location not found"
// @Security BearerAuth
// @Router /locations/{id} [get]
func (h *catalogHandler) getLocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	locationID := c.Param("id")

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	location, err := h.catalogService.GetLocationByID(c.Request.Context(), tenantID, locationID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			c.JSON(status, gin.H{"error": "Location not found"})
		} else {
			logger.Error("Failed to get location", slog.String("error", err.Error()), slog.String("location_id", locationID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve location"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToLocationResponse(location))
}
