package domain

// SubmissionState is the observable snapshot owned by the submission controller.
// It is replaced wholly on each transition and never mutated in place.
type SubmissionState struct {
	Result       *int64 `json:"result"`
	ErrorMessage string `json:"error_message"`
	IsLoading    bool   `json:"is_loading"`
}

// Idle returns the initial state: no result, no error, not loading.
func Idle() SubmissionState {
	return SubmissionState{}
}

// Loading returns the state shown while a submission is in flight.
func Loading() SubmissionState {
	return SubmissionState{IsLoading: true}
}

// Succeeded returns the idle state carrying a computed value.
func Succeeded(value int64) SubmissionState {
	return SubmissionState{Result: &value}
}

// Failed returns the idle state carrying an error message.
func Failed(message string) SubmissionState {
	return SubmissionState{ErrorMessage: message}
}

// Valid reports whether the snapshot honours the state invariants:
// loading implies an empty result and message, and result and message never coexist.
func (s SubmissionState) Valid() bool {
	if s.IsLoading && (s.Result != nil || s.ErrorMessage != "") {
		return false
	}
	return s.Result == nil || s.ErrorMessage == ""
}

// Snapshot returns a copy that shares no memory with s.
func (s SubmissionState) Snapshot() SubmissionState {
	if s.Result != nil {
		v := *s.Result
		s.Result = &v
	}
	return s
}

// StateFromResult maps a pipeline result onto the settled idle state.
func StateFromResult(r EvaluationResult) SubmissionState {
	switch {
	case !r.OK:
		return Failed(r.Message)
	case r.Value != nil && r.Note == "":
		return Succeeded(*r.Value)
	case r.Note != "":
		return Failed(r.Note)
	default:
		return Idle()
	}
}

// FormState mirrors the expression input control.
type FormState struct {
	Expression string            `json:"expression"`
	Touched    bool              `json:"touched"`
	Validation ValidationOutcome `json:"validation"`
}
