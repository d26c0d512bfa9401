package apiclient

import "time"

// RefreshOutcome labels how a refresh attempt ended.
type RefreshOutcome string

const (
	RefreshSuccess         RefreshOutcome = "success"
	RefreshNoCredential    RefreshOutcome = "no_credential"
	RefreshRejected        RefreshOutcome = "rejected"
	RefreshNetworkError    RefreshOutcome = "network_error"
	RefreshInvalidResponse RefreshOutcome = "invalid_response"
	RefreshStoreError      RefreshOutcome = "store_error"
)

// Recorder receives request and refresh observations.
// kind is "" for a successful request, otherwise Kind.String().
// status is 0 when no response was received.
type Recorder interface {
	ObserveRequest(method string, status int, kind string, elapsed time.Duration)
	ObserveRefresh(outcome RefreshOutcome)
}

type NopRecorder struct{}

func (NopRecorder) ObserveRequest(string, int, string, time.Duration) {}
func (NopRecorder) ObserveRefresh(RefreshOutcome)                     {}
