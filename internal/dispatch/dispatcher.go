// Package dispatch runs bulk certificate sends in the background. A run
// processes an event's unsent participants in fixed-size groups: members
// of a group are sent concurrently, groups are strictly serialized with a
// pause between them to stay inside email provider rate limits.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"certforge/internal/domain"
)

var (
	// ErrRunActive is returned when the event already has a run in flight.
	ErrRunActive = errors.New("a dispatch run is already active for this event")
	// ErrRunNotFound is returned for unknown run IDs.
	ErrRunNotFound = errors.New("dispatch run not found")
)

// Config controls run pacing.
type Config struct {
	// BatchSize is the number of concurrent sends per group.
	BatchSize int
	// BatchDelay is the pause between consecutive groups.
	BatchDelay time.Duration
}

// Dispatcher owns all run state. Runs live in memory only; a restart
// forgets finished runs, and unsent participants are picked up again by
// the next run because the emailed flag is the durable record.
type Dispatcher struct {
	cfg          Config
	sender       domain.CertificateService
	events       domain.EventRepository
	participants domain.ParticipantRepository
	logger       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu            sync.Mutex
	runs          map[string]*Run
	activeByEvent map[string]string // event ID to in-flight run ID
}

func NewDispatcher(cfg Config,
	sender domain.CertificateService,
	events domain.EventRepository,
	participants domain.ParticipantRepository,
	logger *slog.Logger,
) *Dispatcher {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		cfg:           cfg,
		sender:        sender,
		events:        events,
		participants:  participants,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		runs:          make(map[string]*Run),
		activeByEvent: make(map[string]string),
	}
}

// Close stops the inter-group pauses of in-flight runs and waits for their
// goroutines to return. Sends already handed to the provider complete.
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}

// StartRun validates ownership, collects the event's unsent participants,
// and launches a background run over them. It returns the initial snapshot
// immediately; progress is observed via Snapshot. An event can have at
// most one run in flight.
func (d *Dispatcher) StartRun(ctx context.Context, eventID, callerID, subject, transcript string) (*RunSnapshot, error) {
	event, err := d.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}

	unsent, err := d.participants.ListUnsentByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list unsent participants: %w", err)
	}

	recipients := make([]RecipientState, len(unsent))
	for i, p := range unsent {
		recipients[i] = RecipientState{
			ParticipantID: p.ID,
			Name:          p.Name,
			Email:         p.Email,
			Status:        StatusPending,
		}
	}

	d.mu.Lock()
	if _, active := d.activeByEvent[eventID]; active {
		d.mu.Unlock()
		return nil, ErrRunActive
	}
	run := newRun(uuid.NewString(), eventID, recipients)
	d.runs[run.id] = run
	if len(recipients) == 0 {
		// Nothing to send; the run is recorded as already complete.
		run.finish()
		d.mu.Unlock()
		return run.Snapshot(), nil
	}
	d.activeByEvent[eventID] = run.id
	d.mu.Unlock()

	d.wg.Add(1)
	go d.process(run, callerID, subject, transcript)

	return run.Snapshot(), nil
}

// Snapshot returns the current state of a run.
func (d *Dispatcher) Snapshot(runID string) (*RunSnapshot, error) {
	d.mu.Lock()
	run, ok := d.runs[runID]
	d.mu.Unlock()
	if !ok {
		return nil, ErrRunNotFound
	}
	return run.Snapshot(), nil
}

func (d *Dispatcher) process(run *Run, callerID, subject, transcript string) {
	defer d.wg.Done()
	defer func() {
		run.finish()
		d.mu.Lock()
		delete(d.activeByEvent, run.eventID)
		d.mu.Unlock()
	}()

	groups := chunkIDs(run.participantIDs(), d.cfg.BatchSize)
	for gi, group := range groups {
		var wg sync.WaitGroup
		for _, id := range group {
			run.setStatus(id, StatusSending, nil)
			wg.Add(1)
			go func(participantID string) {
				defer wg.Done()
				err := d.sender.SendCertificate(d.ctx, participantID, run.eventID, callerID, subject, transcript)
				if err != nil {
					run.setStatus(participantID, StatusError, err)
					d.logger.Error("certificate send failed",
						"run_id", run.id, "event_id", run.eventID,
						"participant_id", participantID, "error", err)
					return
				}
				run.setStatus(participantID, StatusSuccess, nil)
			}(id)
		}
		wg.Wait()

		if gi < len(groups)-1 && d.cfg.BatchDelay > 0 {
			select {
			case <-time.After(d.cfg.BatchDelay):
			case <-d.ctx.Done():
				return
			}
		}
	}

	snap := run.Snapshot()
	d.logger.Info("dispatch run complete",
		"run_id", run.id, "event_id", run.eventID,
		"total", snap.Total, "sent", snap.Sent, "failed", snap.Failed)
}

// chunkIDs splits ids into groups of at most size elements, preserving
// order. Concatenating the groups yields the input.
func chunkIDs(ids []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	var groups [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		groups = append(groups, ids[start:end])
	}
	return groups
}
