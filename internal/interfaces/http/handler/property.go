package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	propertyapp "github.com/realty/backend/internal/application/property"
)

// PropertyHandler handles property-related API endpoints
type PropertyHandler struct {
	BaseHandler
	propertyService *propertyapp.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(propertyService *propertyapp.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
	}
}

// CreatePropertyRequest represents a request to list a new property
type CreatePropertyRequest struct {
	Name                       string           `json:"name" binding:"required,min=1,max=200"`
	Price                      string           `json:"price" binding:"required"`
	Currency                   string           `json:"currency" binding:"required,len=3"`
	ConstructionTriggerPercent *decimal.Decimal `json:"construction_trigger_percent"`
	TurnoverReadinessPercent   *decimal.Decimal `json:"turnover_readiness_percent"`
}

// Create lists a new property in PRE_SELLING status
func (h *PropertyHandler) Create(c *gin.Context) {
	var req CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.propertyService.CreateProperty(c.Request.Context(), propertyapp.CreatePropertyRequest{
		Name:                       req.Name,
		Price:                      req.Price,
		Currency:                   req.Currency,
		ConstructionTriggerPercent: req.ConstructionTriggerPercent,
		TurnoverReadinessPercent:   req.TurnoverReadinessPercent,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get retrieves a property by ID
func (h *PropertyHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid property ID")
		return
	}

	resp, err := h.propertyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List lists all properties
func (h *PropertyHandler) List(c *gin.Context) {
	properties, err := h.propertyService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, properties)
}

// EvaluateTriggers recomputes the property's collection ratio against its
// construction and turnover thresholds.
func (h *PropertyHandler) EvaluateTriggers(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid property ID")
		return
	}

	resp, err := h.propertyService.EvaluateTriggers(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// StartConstruction transitions the property to UNDER_CONSTRUCTION once the
// collection threshold has been met.
func (h *PropertyHandler) StartConstruction(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid property ID")
		return
	}

	resp, err := h.propertyService.StartConstruction(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// MarkTurnoverReady transitions the property to READY_FOR_TURNOVER
func (h *PropertyHandler) MarkTurnoverReady(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid property ID")
		return
	}

	resp, err := h.propertyService.MarkTurnoverReady(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
