package services

import (
	"context"
	"testing"
	"time"

	"certforge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEventService() (domain.EventService, *fakeEventRepo, *fakeTemplateRepo, *fakeParticipantRepo) {
	events := newFakeEventRepo()
	templates := newFakeTemplateRepo()
	participants := newFakeParticipantRepo()
	return NewEventService(events, templates, participants, time.Second), events, templates, participants
}

func TestCreateEvent(t *testing.T) {
	svc, _, _, _ := newTestEventService()

	event := &domain.Event{Title: "Go Conference", OwnerID: "owner-1"}
	require.NoError(t, svc.CreateEvent(context.Background(), event))
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestCreateEvent_Validation(t *testing.T) {
	svc, _, _, _ := newTestEventService()

	assert.Error(t, svc.CreateEvent(context.Background(), &domain.Event{Title: "No Owner"}))
	assert.Error(t, svc.CreateEvent(context.Background(), &domain.Event{Title: "   ", OwnerID: "owner-1"}))
}

func TestGetEventByID_IncludesTemplateAndParticipants(t *testing.T) {
	svc, events, templates, participants := newTestEventService()

	event := seedEventWithTemplate(t, events, templates, "owner-1")
	seedParticipant(t, participants, event.ID, "Ada", "ada@example.com")
	seedParticipant(t, participants, event.ID, "Grace", "grace@example.com")

	got, tpl, list, err := svc.GetEventByID(context.Background(), event.ID, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)
	require.NotNil(t, tpl)
	assert.Equal(t, domain.DefaultFontFamily, tpl.FontFamily)
	assert.Len(t, list, 2)
}

func TestGetEventByID_NoTemplate(t *testing.T) {
	svc, events, _, _ := newTestEventService()

	now := time.Now()
	event := domain.NewEvent("Bare", "owner-1", now, now)
	require.NoError(t, events.Create(context.Background(), event))

	_, tpl, list, err := svc.GetEventByID(context.Background(), event.ID, "owner-1")
	require.NoError(t, err)
	assert.Nil(t, tpl)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetEventByID_Forbidden(t *testing.T) {
	svc, events, templates, _ := newTestEventService()
	event := seedEventWithTemplate(t, events, templates, "owner-1")

	_, _, _, err := svc.GetEventByID(context.Background(), event.ID, "intruder")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateEvent(t *testing.T) {
	svc, events, templates, _ := newTestEventService()
	event := seedEventWithTemplate(t, events, templates, "owner-1")

	updated, err := svc.UpdateEvent(context.Background(), event.ID, "owner-1", "  Renamed  ")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	_, err = svc.UpdateEvent(context.Background(), event.ID, "owner-1", "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.UpdateEvent(context.Background(), event.ID, "intruder", "X")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteEvent(t *testing.T) {
	svc, events, templates, _ := newTestEventService()
	event := seedEventWithTemplate(t, events, templates, "owner-1")

	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), event.ID, "intruder"), domain.ErrForbidden)
	require.NoError(t, svc.DeleteEvent(context.Background(), event.ID, "owner-1"))
	assert.ErrorIs(t, svc.DeleteEvent(context.Background(), event.ID, "owner-1"), domain.ErrNotFound)
}

func TestUpdateEventTemplate_CreatesWhenMissing(t *testing.T) {
	svc, events, _, _ := newTestEventService()

	now := time.Now()
	event := domain.NewEvent("Bare", "owner-1", now, now)
	require.NoError(t, events.Create(context.Background(), event))

	img := "https://res.cloudinary.com/demo/image/upload/v1/cert.png"
	size := 60
	tpl, err := svc.UpdateEventTemplate(context.Background(), event.ID, "owner-1", domain.TemplatePatch{
		ImageURL: &img,
		FontSize: &size,
	})
	require.NoError(t, err)
	assert.Equal(t, img, tpl.ImageURL)
	assert.Equal(t, 60, tpl.FontSize)
	// Unpatched settings come from the defaults.
	assert.Equal(t, domain.DefaultFontFamily, tpl.FontFamily)
	assert.InEpsilon(t, domain.DefaultPositionX, tpl.PositionX, 0.001)

	stored, err := events.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TemplateID)
	assert.Equal(t, tpl.ID, *stored.TemplateID)
}

func TestUpdateEventTemplate_RequiresImageForNewTemplate(t *testing.T) {
	svc, events, _, _ := newTestEventService()

	now := time.Now()
	event := domain.NewEvent("Bare", "owner-1", now, now)
	require.NoError(t, events.Create(context.Background(), event))

	size := 60
	_, err := svc.UpdateEventTemplate(context.Background(), event.ID, "owner-1", domain.TemplatePatch{FontSize: &size})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateEventTemplate_PatchesExisting(t *testing.T) {
	svc, events, templates, _ := newTestEventService()
	event := seedEventWithTemplate(t, events, templates, "owner-1")

	x := 30.0
	color := "#FF0000"
	tpl, err := svc.UpdateEventTemplate(context.Background(), event.ID, "owner-1", domain.TemplatePatch{
		PositionX: &x,
		FontColor: &color,
	})
	require.NoError(t, err)
	assert.InEpsilon(t, 30.0, tpl.PositionX, 0.001)
	assert.Equal(t, "#FF0000", tpl.FontColor)
	// Untouched settings survive the patch.
	assert.Equal(t, domain.DefaultFontSize, tpl.FontSize)
}

func TestAddParticipants_SkipsInvalidAndDuplicates(t *testing.T) {
	svc, events, templates, _ := newTestEventService()
	event := seedEventWithTemplate(t, events, templates, "owner-1")

	created, err := svc.AddParticipants(context.Background(), event.ID, "owner-1", []domain.ParticipantEntry{
		{Name: "Ada", Email: "ADA@Example.com"},
		{Name: "", Email: "noname@example.com"},
		{Name: "Bad Email", Email: "not-an-email"},
		{Name: "Ada Again", Email: "ada@example.com"}, // same address after lowercasing
		{Name: "Grace", Email: "grace@example.com"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "ada@example.com", created[0].Email)
	assert.Equal(t, "grace@example.com", created[1].Email)
}

func TestAddParticipants_EmptyInput(t *testing.T) {
	svc, events, templates, _ := newTestEventService()
	event := seedEventWithTemplate(t, events, templates, "owner-1")

	_, err := svc.AddParticipants(context.Background(), event.ID, "owner-1", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListParticipants_Paginates(t *testing.T) {
	svc, events, templates, participants := newTestEventService()
	event := seedEventWithTemplate(t, events, templates, "owner-1")
	for _, n := range []string{"a", "b", "c", "d", "e"} {
		seedParticipant(t, participants, event.ID, n, n+"@example.com")
	}

	page, total, err := svc.ListParticipants(context.Background(), event.ID, "owner-1", domain.PaginationParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].Name)
}

func TestDeleteParticipant(t *testing.T) {
	svc, events, templates, participants := newTestEventService()
	event := seedEventWithTemplate(t, events, templates, "owner-1")
	other := seedEventWithTemplate(t, events, templates, "owner-1")
	p := seedParticipant(t, participants, event.ID, "Ada", "ada@example.com")

	// Participant belongs to a different event than the one addressed.
	assert.ErrorIs(t, svc.DeleteParticipant(context.Background(), other.ID, p.ID, "owner-1"), domain.ErrNotFound)

	require.NoError(t, svc.DeleteParticipant(context.Background(), event.ID, p.ID, "owner-1"))
	_, err := participants.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
