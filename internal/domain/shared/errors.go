package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Error codes shared by the contract ledger. Handlers map these to HTTP
// statuses; services match on code rather than on message text.
const (
	ErrCodeCurrencyMismatch  = "CURRENCY_MISMATCH"
	ErrCodeInvalidSchedule   = "INVALID_SCHEDULE"
	ErrCodeOverpayment       = "OVERPAYMENT"
	ErrCodeAlreadyReversed   = "ALREADY_REVERSED"
	ErrCodeInvalidReversal   = "INVALID_REVERSAL"
	ErrCodeAlreadyPaid       = "ALREADY_PAID"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeMissingRate       = "MISSING_RATE"
)

// IsDomainErrorWithCode reports whether err is a DomainError carrying code.
func IsDomainErrorWithCode(err error, code string) bool {
	de, ok := err.(*DomainError)
	return ok && de.Code == code
}
