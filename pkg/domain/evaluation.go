package domain

// EvaluationRequest is the body sent to the remote evaluator.
// RequestID never leaves the process as JSON; adapters may forward it as a header.
type EvaluationRequest struct {
	Expression string `json:"expression"`
	RequestID  string `json:"-"`
}

// NewEvaluationRequest builds a request from a Valid outcome.
// It returns ErrInvalidExpression wrapped in a *ValidationError otherwise.
func NewEvaluationRequest(outcome ValidationOutcome) (EvaluationRequest, error) {
	if err := outcome.Err(); err != nil {
		return EvaluationRequest{}, err
	}
	return EvaluationRequest{Expression: outcome.Expression}, nil
}

// EvaluationResponse is the success payload of the remote evaluator.
// A well-formed response has exactly one of Result and Error set.
// A missing "error" key decodes as nil.
type EvaluationResponse struct {
	Result *int64  `json:"result"`
	Error  *string `json:"error"`
}

// FailureKind classifies a failed pipeline run.
type FailureKind string

const (
	FailureNetwork  FailureKind = "network"
	FailureClient   FailureKind = "client"
	FailureServer   FailureKind = "server"
	FailureUnknown  FailureKind = "unknown"
	FailureCanceled FailureKind = "canceled"
)

// Fixed failure messages surfaced to the user.
const (
	MessageNetwork  = "Network error occurred. Please check your connection."
	MessageClient   = "Invalid request. Please check your input."
	MessageServer   = "Server error occurred. Please try again later."
	MessageUnknown  = "An unexpected error occurred. Please try again."
	MessageCanceled = "Request was canceled."
)

// Retryable reports whether a failure of this kind may be attempted again.
// Client errors are terminal and do not consume the retry budget.
func (k FailureKind) Retryable() bool {
	switch k {
	case FailureNetwork, FailureServer, FailureUnknown:
		return true
	default:
		return false
	}
}

// EvaluationResult is the outcome of one complete pipeline run.
// Exactly one of the Success and Failure shapes is populated.
type EvaluationResult struct {
	OK bool

	// Success shape.
	Value *int64
	Note  string

	// Failure shape.
	Kind    FailureKind
	Message string

	// Attempts is the number of calls made to the evaluator.
	Attempts int
}

// Success builds a successful result. note mirrors a business-level error returned with a nil value.
func Success(value *int64, note string) EvaluationResult {
	return EvaluationResult{OK: true, Value: value, Note: note}
}

// Failure builds a failed result.
func Failure(kind FailureKind, message string) EvaluationResult {
	return EvaluationResult{Kind: kind, Message: message}
}

// SuccessFromResponse passes an evaluator payload through unchanged.
func SuccessFromResponse(resp EvaluationResponse) EvaluationResult {
	note := ""
	if resp.Error != nil {
		note = *resp.Error
	}
	return Success(resp.Result, note)
}
