package cart

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matst80/slask-builder/pkg/builder"
)

var (
	submissionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskbuilder_submissions_total",
		Help: "The total number of builder submissions sent to the cart service",
	})
	submissionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskbuilder_submission_failures_total",
		Help: "The total number of failed builder submissions",
	})
	emptySubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskbuilder_empty_submissions_total",
		Help: "The total number of submissions attempted with nothing selected",
	})
)

type SubmitStatus string

const (
	StatusAdded           SubmitStatus = "added"
	StatusNothingSelected SubmitStatus = "nothing-selected"
	StatusFailed          SubmitStatus = "failed"
)

// SubmitResult is what the shopper-facing layer turns into a status
// message and, on success, a builder reset.
type SubmitResult struct {
	Status       SubmitStatus `json:"status"`
	SubmissionId string       `json:"submission_id,omitempty"`
	ItemCount    int          `json:"item_count,omitempty"`
	Reason       string       `json:"reason,omitempty"`
	Cart         *Snapshot    `json:"cart,omitempty"`
}

// Notifier receives fire-and-forget notifications after a successful
// submission. Publish errors must not reach the shopper.
type Notifier interface {
	CartChanged(snapshot *Snapshot)
	ItemAdded(snapshot *Snapshot)
}

// Submitter drives the external cart service for one submission. It
// never retries and never mutates the selection; the caller resets the
// builder only on StatusAdded.
type Submitter struct {
	Client   *Client
	Notifier Notifier
}

// Submit sends the whole selection as one batched add, then reads the
// cart back for the updated item count. An empty selection is reported
// without contacting the cart service.
func (s *Submitter) Submit(ctx context.Context, set *builder.SelectionSet) SubmitResult {
	if set.Len() == 0 {
		emptySubmissions.Inc()
		return SubmitResult{Status: StatusNothingSelected}
	}
	submissionId := uuid.NewString()
	items := make([]AddItem, 0, set.Len())
	for _, e := range set.Entries {
		items = append(items, AddItem{Id: e.VariantId, Quantity: e.Quantity})
	}

	submissionsTotal.Inc()
	if _, err := s.Client.AddItems(ctx, items); err != nil {
		submissionFailures.Inc()
		log.Printf("submission %s failed: %v", submissionId, err)
		return SubmitResult{
			Status:       StatusFailed,
			SubmissionId: submissionId,
			Reason:       err.Error(),
		}
	}

	// The items are in the cart at this point, so a read failure must
	// not surface as Failed or a retry would add them twice.
	snapshot, err := s.Client.ReadCart(ctx)
	if err != nil {
		log.Printf("submission %s added but cart read failed: %v", submissionId, err)
		snapshot = &Snapshot{ItemCount: set.Len()}
	}

	if s.Notifier != nil {
		s.Notifier.CartChanged(snapshot)
		s.Notifier.ItemAdded(snapshot)
	}
	return SubmitResult{
		Status:       StatusAdded,
		SubmissionId: submissionId,
		ItemCount:    snapshot.ItemCount,
		Cart:         snapshot,
	}
}
