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
	ErrNotFound             = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput         = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict  = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidTransition    = NewDomainError("INVALID_TRANSITION", "Requested status change is not allowed")
	ErrInsufficientStock    = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrWouldGoNegative      = NewDomainError("WOULD_GO_NEGATIVE", "Reversal would drive stock negative")
	ErrDuplicateShipment    = NewDomainError("DUPLICATE_SHIPMENT", "Purchase order already has a shipment")
	ErrMissingShipment      = NewDomainError("MISSING_SHIPMENT", "Purchase order has no linked shipment")
	ErrAllocationDegenerate = NewDomainError("ALLOCATION_DEGENERATE", "No usable allocation strategy for the given items")
)
