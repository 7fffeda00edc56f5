package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"certforge/internal/domain"
)

type eventService struct {
	eventRepo       domain.EventRepository
	templateRepo    domain.TemplateRepository
	participantRepo domain.ParticipantRepository
	contextTimeout  time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	templateRepo domain.TemplateRepository,
	participantRepo domain.ParticipantRepository,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:       eventRepo,
		templateRepo:    templateRepo,
		participantRepo: participantRepo,
		contextTimeout:  timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OwnerID == "" {
		return fmt.Errorf("event owner is required")
	}
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("event title is required")
	}

	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	return s.eventRepo.Create(ctx, event)
}

// ownedEvent loads the event and enforces that callerID is its owner.
func (s *eventService) ownedEvent(ctx context.Context, eventID, callerID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID, callerID string) (*domain.Event, *domain.CertificateTemplate, []*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, nil, nil, err
	}

	var template *domain.CertificateTemplate
	if event.TemplateID != nil {
		template, err = s.templateRepo.GetByID(ctx, *event.TemplateID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, fmt.Errorf("get template: %w", err)
		}
	}

	participants, _, err := s.participantRepo.ListByEventID(ctx, eventID, domain.PaginationParams{Page: 1, PageSize: allParticipantsPageSize})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list participants: %w", err)
	}
	if participants == nil {
		participants = []*domain.Participant{}
	}

	return event, template, participants, nil
}

// allParticipantsPageSize bounds the nested participant list on the event
// detail response. Larger lists go through the paginated endpoint.
const allParticipantsPageSize = 1000

func (s *eventService) ListEventsByOwner(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByOwnerID(ctx, ownerID)
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID, title string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	updated, err := s.eventRepo.UpdateTitle(ctx, eventID, strings.TrimSpace(title))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, eventID)
}

// UpdateEventTemplate applies a partial update to the event's template.
// If the event has no template yet, one is created from the patch (the
// image URL is then required) and attached to the event.
func (s *eventService) UpdateEventTemplate(ctx context.Context, eventID, callerID string, patch domain.TemplatePatch) (*domain.CertificateTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.ownedEvent(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}

	if event.TemplateID == nil {
		if patch.ImageURL == nil || strings.TrimSpace(*patch.ImageURL) == "" {
			return nil, fmt.Errorf("%w: image_url is required to create a template", domain.ErrInvalidInput)
		}
		now := time.Now()
		template := domain.NewCertificateTemplate(callerID, strings.TrimSpace(*patch.ImageURL), now, now)
		applyTemplatePatch(template, patch)
		if err := s.templateRepo.Create(ctx, template); err != nil {
			return nil, fmt.Errorf("create template: %w", err)
		}
		if err := s.eventRepo.SetTemplateID(ctx, eventID, template.ID); err != nil {
			return nil, fmt.Errorf("attach template: %w", err)
		}
		return template, nil
	}

	updated, err := s.templateRepo.Update(ctx, *event.TemplateID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update template: %w", err)
	}
	return updated, nil
}

func applyTemplatePatch(t *domain.CertificateTemplate, patch domain.TemplatePatch) {
	if patch.PositionX != nil {
		t.PositionX = *patch.PositionX
	}
	if patch.PositionY != nil {
		t.PositionY = *patch.PositionY
	}
	if patch.Width != nil {
		t.Width = *patch.Width
	}
	if patch.Height != nil {
		t.Height = *patch.Height
	}
	if patch.FontFamily != nil {
		t.FontFamily = *patch.FontFamily
	}
	if patch.FontSize != nil {
		t.FontSize = *patch.FontSize
	}
	if patch.FontColor != nil {
		t.FontColor = *patch.FontColor
	}
}

func (s *eventService) AddParticipants(ctx context.Context, eventID, callerID string, entries []domain.ParticipantEntry) ([]*domain.Participant, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no participants given", domain.ErrInvalidInput)
	}

	created := make([]*domain.Participant, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		email := strings.TrimSpace(strings.ToLower(entry.Email))
		if name == "" || !emailRegexp.MatchString(email) {
			continue
		}
		now := time.Now()
		p := &domain.Participant{
			EventID:   eventID,
			Name:      name,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.participantRepo.Create(ctx, p); err != nil {
			if errors.Is(err, domain.ErrDuplicateParticipant) {
				continue
			}
			return nil, fmt.Errorf("create participant: %w", err)
		}
		created = append(created, p)
	}
	return created, nil
}

func (s *eventService) ListParticipants(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.Participant, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return nil, 0, err
	}
	return s.participantRepo.ListByEventID(ctx, eventID, params)
}

func (s *eventService) DeleteParticipant(ctx context.Context, eventID, participantID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedEvent(ctx, eventID, callerID); err != nil {
		return err
	}
	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return err
	}
	if participant.EventID != eventID {
		return domain.ErrNotFound
	}
	return s.participantRepo.Delete(ctx, participantID)
}
