package dispatch

import (
	"sync"
	"time"
)

// Status is the delivery state of one recipient within a run.
type Status string

const (
	StatusPending Status = "pending"
	StatusSending Status = "sending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// RecipientState tracks one participant's progress through a run.
type RecipientState struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Status        Status `json:"status"`
	Error         string `json:"error,omitempty"`
}

// RunSnapshot is a read-only copy of a run's state at a point in time.
// swagger:model RunSnapshot
type RunSnapshot struct {
	ID          string           `json:"id"`
	EventID     string           `json:"event_id"`
	Done        bool             `json:"done"`
	Total       int              `json:"total"`
	Sent        int              `json:"sent"`
	Failed      int              `json:"failed"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Recipients  []RecipientState `json:"recipients"`
}

// Run holds the mutable state of one bulk dispatch. All state transitions
// go through its methods; readers only ever see copies via Snapshot.
type Run struct {
	id      string
	eventID string

	mu          sync.Mutex
	recipients  []RecipientState // fixed order, set at creation
	index       map[string]int   // participant ID to recipients slot
	sent        int
	failed      int
	done        bool
	startedAt   time.Time
	completedAt *time.Time
}

func newRun(id, eventID string, recipients []RecipientState) *Run {
	idx := make(map[string]int, len(recipients))
	for i, r := range recipients {
		idx[r.ParticipantID] = i
	}
	return &Run{
		id:         id,
		eventID:    eventID,
		recipients: recipients,
		index:      idx,
		startedAt:  time.Now(),
	}
}

// participantIDs returns the run's participant IDs in dispatch order.
func (r *Run) participantIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.recipients))
	for i, rec := range r.recipients {
		ids[i] = rec.ParticipantID
	}
	return ids
}

func (r *Run) setStatus(participantID string, status Status, sendErr error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[participantID]
	if !ok {
		return
	}
	r.recipients[i].Status = status
	switch status {
	case StatusSuccess:
		r.sent++
	case StatusError:
		r.failed++
		if sendErr != nil {
			r.recipients[i].Error = sendErr.Error()
		}
	}
}

func (r *Run) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return
	}
	r.done = true
	now := time.Now()
	r.completedAt = &now
}

// Snapshot returns a copy safe to serialize while the run is in flight.
func (r *Run) Snapshot() *RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	recipients := make([]RecipientState, len(r.recipients))
	copy(recipients, r.recipients)
	snap := &RunSnapshot{
		ID:         r.id,
		EventID:    r.eventID,
		Done:       r.done,
		Total:      len(r.recipients),
		Sent:       r.sent,
		Failed:     r.failed,
		StartedAt:  r.startedAt,
		Recipients: recipients,
	}
	if r.completedAt != nil {
		at := *r.completedAt
		snap.CompletedAt = &at
	}
	return snap
}
