package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finstok/finstok_backend/internal/core/domain"
	portssvc "github.com/finstok/finstok_backend/internal/core/ports/services"
	"github.com/finstok/finstok_backend/internal/dto"
	"github.com/finstok/finstok_backend/internal/middleware"
)

// contactHandler handles HTTP requests related to counterparties.
type contactHandler struct {
	contactService portssvc.ContactSvcFacade
}

// newContactHandler creates a new contactHandler.
func newContactHandler(contactService portssvc.ContactSvcFacade) *contactHandler {
	return &contactHandler{contactService: contactService}
}

// registerContactRoutes registers routes related to contacts.
func registerContactRoutes(rg *gin.RouterGroup, contactService portssvc.ContactSvcFacade) {
	h := newContactHandler(contactService)

	contacts := rg.Group("/contacts")
	{
		contacts.POST("", h.createContact)
		contacts.GET("", h.listContacts)
		contacts.GET("/:id", h.getContact)
		contacts.GET("/:id/balance", h.getContactBalance)
	}
}

// createContact godoc
// @Summary Create a new contact
// @Tags contacts
// @Accept json
// @Produce json
// @Param contact body dto.CreateContactRequest true "Contact details"
// @Success 201 {object} dto.ContactResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /contacts [post]
func (h *contactHandler) createContact(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateContact", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	tenantID, userID, ok := callerScope(c)
	if !ok {
		return
	}

	contact, err := h.contactService.CreateContact(c.Request.Context(), tenantID, req, userID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create contact in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToContactResponse(contact))
}

// listContacts godoc
// @Summary List contacts
// @Description Retrieves active contacts, optionally filtered by type
// @Tags contacts
// @Produce json
// @Param type query string false "Contact type (CUSTOMER, SUPPLIER, SUBCONTRACTOR, PERSONNEL)"
// @Success 200 {object} dto.ListContactsResponse
// @Security BearerAuth
// @Router /contacts [get]
func (h *contactHandler) listContacts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	var contactType *domain.ContactType
	if raw := c.Query("type"); raw != "" {
		ct := domain.ContactType(raw)
		contactType = &ct
	}

	contacts, err := h.contactService.ListContacts(c.Request.Context(), tenantID, contactType)
	if err != nil {
		logger.Error("Failed to list contacts", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contacts"})
		return
	}

	c.JSON(http.StatusOK, dto.ListContactsResponse{Contacts: dto.ToContactResponses(contacts)})
}

// getContact godoc
// @Summary Get a contact by ID
// @Tags contacts
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} dto.ContactResponse
// @Failure 404 {object} map[string]string "Contact not found"
// @Security BearerAuth
// @Router /contacts/{id} [get]
func (h *contactHandler) getContact(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	contactID := c.Param("id")

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	contact, err := h.contactService.GetContactByID(c.Request.Context(), tenantID, contactID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			c.JSON(status, gin.H{"error": "Contact not found"})
		} else {
			logger.Error("Failed to get contact", slog.String("error", err.Error()), slog.String("contact_id", contactID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve contact"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToContactResponse(contact))
}

// getContactBalance godoc
// @Summary Get the aggregated balance of a contact
// @Description Sums the cached balances of the contact's accounts; all must share one currency
// @Tags contacts
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} dto.ContactBalanceResponse
// @Failure 400 {object} map[string]string "Accounts span multiple currencies"
// @Failure 404 {object} map[string]string "Contact not found"
// @Security BearerAuth
// @Router /contacts/{id}/balance [get]
func (h *contactHandler) getContactBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	contactID := c.Param("id")

	tenantID, _, ok := callerScope(c)
	if !ok {
		return
	}

	resp, err := h.contactService.GetContactBalance(c.Request.Context(), tenantID, contactID)
	if err != nil {
		if status, mapped := statusForError(err); mapped {
			c.JSON(status, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to get contact balance", slog.String("error", err.Error()), slog.String("contact_id", contactID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to derive contact balance"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
