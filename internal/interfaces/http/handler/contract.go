package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	contractapp "github.com/realty/backend/internal/application/contract"
)

// ContractHandler handles contract-related API endpoints
type ContractHandler struct {
	BaseHandler
	contractService *contractapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *contractapp.ContractService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
	}
}

// CreateContractRequest represents a request to create a new contract
type CreateContractRequest struct {
	ContractNumber    string           `json:"contract_number" binding:"max=50"`
	Type              string           `json:"type" binding:"required,oneof=CTS DOAS"`
	PropertyID        uuid.UUID        `json:"property_id" binding:"required"`
	ClientID          uuid.UUID        `json:"client_id" binding:"required"`
	DeveloperID       uuid.UUID        `json:"developer_id" binding:"required"`
	AgentID           *uuid.UUID       `json:"agent_id"`
	BrokerID          *uuid.UUID       `json:"broker_id"`
	TotalAmount       string           `json:"total_amount" binding:"required"`
	Currency          string           `json:"currency" binding:"required,len=3"`
	ReservationFee    string           `json:"reservation_fee"`
	DownpaymentAmount string           `json:"downpayment_amount" binding:"required"`
	EquityAmount      string           `json:"equity_amount"`
	LoanableAmount    string           `json:"loanable_amount"`
	DownpaymentMonths int              `json:"downpayment_months" binding:"required,gt=0"`
	TermMonths        int              `json:"term_months" binding:"gte=0"`
	AgentRate         *decimal.Decimal `json:"agent_rate"`
	BrokerRate        *decimal.Decimal `json:"broker_rate"`
	AllowPrepayment   bool             `json:"allow_prepayment"`
	StartDate         time.Time        `json:"start_date" binding:"required"`
	EndDate           *time.Time       `json:"end_date"`
}

// SignContractRequest represents a signature submission for one party
type SignContractRequest struct {
	Role string `json:"role" binding:"required,oneof=CLIENT DEVELOPER AGENT"`
	Blob string `json:"blob" binding:"required"`
}

// TerminateContractRequest carries the reason for termination or cancellation
type TerminateContractRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// Create creates a new contract in DRAFT status with its payment plan attached.
func (h *ContractHandler) Create(c *gin.Context) {
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.contractService.CreateContract(c.Request.Context(), contractapp.CreateContractRequest{
		ContractNumber:    req.ContractNumber,
		Type:              req.Type,
		PropertyID:        req.PropertyID,
		ClientID:          req.ClientID,
		DeveloperID:       req.DeveloperID,
		AgentID:           req.AgentID,
		BrokerID:          req.BrokerID,
		TotalAmount:       req.TotalAmount,
		Currency:          req.Currency,
		ReservationFee:    req.ReservationFee,
		DownpaymentAmount: req.DownpaymentAmount,
		EquityAmount:      req.EquityAmount,
		LoanableAmount:    req.LoanableAmount,
		DownpaymentMonths: req.DownpaymentMonths,
		TermMonths:        req.TermMonths,
		AgentRate:         req.AgentRate,
		BrokerRate:        req.BrokerRate,
		AllowPrepayment:   req.AllowPrepayment,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get retrieves a contract by ID
func (h *ContractHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	resp, err := h.contractService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// GetByNumber retrieves a contract by its contract number
func (h *ContractHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Contract number is required")
		return
	}

	resp, err := h.contractService.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List lists contracts with optional filters and pagination
func (h *ContractHandler) List(c *gin.Context) {
	var filter contractapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.contractService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Submit moves a DRAFT contract into PENDING_SIGNATURE
func (h *ContractHandler) Submit(c *gin.Context) {
	h.transition(c, h.contractService.SubmitForSignature)
}

// Sign records one party's signature; the contract activates once all
// required parties have signed.
func (h *ContractHandler) Sign(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	var req SignContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.contractService.Sign(c.Request.Context(), id, contractapp.SignRequest{
		Role: req.Role,
		Blob: req.Blob,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Terminate terminates an active contract
func (h *ContractHandler) Terminate(c *gin.Context) {
	h.transitionWithReason(c, h.contractService.Terminate)
}

// Cancel cancels a contract before activation
func (h *ContractHandler) Cancel(c *gin.Context) {
	h.transitionWithReason(c, h.contractService.Cancel)
}

// Expire marks an unsigned contract past its signing window as EXPIRED
func (h *ContractHandler) Expire(c *gin.Context) {
	h.transition(c, h.contractService.ExpireOverdue)
}

// GetSchedule returns the contract's full installment schedule
func (h *ContractHandler) GetSchedule(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	schedule, err := h.contractService.GetSchedule(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, schedule)
}

// GetProgress returns the contract's payment progress summary
func (h *ContractHandler) GetProgress(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	progress, err := h.contractService.GetProgress(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, progress)
}

func (h *ContractHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*contractapp.ContractResponse, error)) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	resp, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

func (h *ContractHandler) transitionWithReason(c *gin.Context, fn func(ctx context.Context, id uuid.UUID, reason string) (*contractapp.ContractResponse, error)) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	var req TerminateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := fn(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
