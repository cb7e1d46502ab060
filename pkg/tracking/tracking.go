package tracking

import "net/http"

// Tracking receives behavioural events from the builder. A nil
// Tracking is always tolerated by callers.
type Tracking interface {
	TrackSession(sessionId int, r *http.Request)
	TrackStepChoice(sessionId int, field string, value string)
	TrackToggle(sessionId int, slotKey string, variantId uint)
	TrackAddToCart(sessionId int, submissionId string, itemCount int)
}
