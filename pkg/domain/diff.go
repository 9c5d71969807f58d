package domain

// StateDiff represents the changes between two submission states.
// It is designed to be serialized to JSON for partial updates on a front end.
// Result is set (possibly to nil) only when ResultChanged is true.
type StateDiff struct {
	ResultChanged bool    `json:"result_changed,omitempty"`
	Result        *int64  `json:"result,omitempty"`
	ErrorMessage  *string `json:"error_message,omitempty"`
	IsLoading     *bool   `json:"is_loading,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// It returns nil when nothing changed.
func Diff(oldState, newState SubmissionState) *StateDiff {
	diff := &StateDiff{}
	changed := false

	if !sameResult(oldState.Result, newState.Result) {
		diff.ResultChanged = true
		if newState.Result != nil {
			v := *newState.Result
			diff.Result = &v
		}
		changed = true
	}
	if oldState.ErrorMessage != newState.ErrorMessage {
		msg := newState.ErrorMessage
		diff.ErrorMessage = &msg
		changed = true
	}
	if oldState.IsLoading != newState.IsLoading {
		loading := newState.IsLoading
		diff.IsLoading = &loading
		changed = true
	}

	if !changed {
		return nil
	}
	return diff
}

func sameResult(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
