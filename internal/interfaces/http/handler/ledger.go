package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/realty/backend/internal/application/ledger"
)

// LedgerHandler handles payment and ledger API endpoints for a contract
type LedgerHandler struct {
	BaseHandler
	paymentService *ledgerapp.PaymentService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(paymentService *ledgerapp.PaymentService) *LedgerHandler {
	return &LedgerHandler{
		paymentService: paymentService,
	}
}

// ApplyPaymentRequest represents an incoming payment against a contract
type ApplyPaymentRequest struct {
	Amount            string     `json:"amount" binding:"required"`
	ReceivedAt        *time.Time `json:"received_at"`
	ExternalReference string     `json:"external_reference" binding:"max=100"`
}

// ReverseTransactionRequest identifies a ledger entry to reverse
type ReverseTransactionRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,uuid"`
	Reason        string `json:"reason" binding:"required,min=1,max=500"`
}

// RecordRefundRequest represents a refund of principal to the payer
type RecordRefundRequest struct {
	Amount string `json:"amount" binding:"required"`
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ApplyPayment applies a payment to the contract's payment plan, allocating
// across due installments and assessing overdue penalties first.
func (h *LedgerHandler) ApplyPayment(c *gin.Context) {
	contractID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	var req ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.paymentService.ApplyPayment(c.Request.Context(), ledgerapp.ApplyPaymentRequest{
		ContractID:        contractID,
		Amount:            req.Amount,
		ReceivedAt:        req.ReceivedAt,
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Reverse reverses a posted PAYMENT entry, restoring its allocations
func (h *LedgerHandler) Reverse(c *gin.Context) {
	contractID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	var req ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	txID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	resp, err := h.paymentService.ReverseTransaction(c.Request.Context(), ledgerapp.ReverseRequest{
		ContractID:    contractID,
		TransactionID: txID,
		Reason:        req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Refund records a refund of collected principal outside the reversal flow
func (h *LedgerHandler) Refund(c *gin.Context) {
	contractID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	var req RecordRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.paymentService.RecordRefund(c.Request.Context(), ledgerapp.RefundRequest{
		ContractID: contractID,
		Amount:     req.Amount,
		Reason:     req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// ListTransactions lists the contract's ledger entries, oldest first
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	contractID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	var filter ledgerapp.ListTransactionsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.paymentService.ListTransactions(c.Request.Context(), contractID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListCommissions lists the commission records accrued under the contract
func (h *LedgerHandler) ListCommissions(c *gin.Context) {
	contractID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}

	records, err := h.paymentService.ListCommissions(c.Request.Context(), contractID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, records)
}

// PayoutCommission records the payout of a single open commission record
func (h *LedgerHandler) PayoutCommission(c *gin.Context) {
	contractID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID")
		return
	}
	recordID, err := uuid.Parse(c.Param("record_id"))
	if err != nil {
		h.BadRequest(c, "Invalid commission record ID")
		return
	}

	resp, err := h.paymentService.PayoutCommission(c.Request.Context(), contractID, recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}
