package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"certforge/internal/delivery/http/helpers"
	"certforge/internal/domain"
)

type mockEventService struct {
	event        *domain.Event
	template     *domain.CertificateTemplate
	participants []*domain.Participant
	err          error

	gotPatch   domain.TemplatePatch
	gotEntries []domain.ParticipantEntry
}

func (m *mockEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	event.ID = testEventID
	return nil
}

func (m *mockEventService) GetEventByID(ctx context.Context, eventID, callerID string) (*domain.Event, *domain.CertificateTemplate, []*domain.Participant, error) {
	if m.err != nil {
		return nil, nil, nil, m.err
	}
	return m.event, m.template, m.participants, nil
}

func (m *mockEventService) ListEventsByOwner(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.event == nil {
		return nil, nil
	}
	return []*domain.Event{m.event}, nil
}

func (m *mockEventService) UpdateEvent(ctx context.Context, eventID, callerID, title string) (*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	return m.err
}

func (m *mockEventService) UpdateEventTemplate(ctx context.Context, eventID, callerID string, patch domain.TemplatePatch) (*domain.CertificateTemplate, error) {
	m.gotPatch = patch
	if m.err != nil {
		return nil, m.err
	}
	return m.template, nil
}

func (m *mockEventService) AddParticipants(ctx context.Context, eventID, callerID string, entries []domain.ParticipantEntry) ([]*domain.Participant, error) {
	m.gotEntries = entries
	if m.err != nil {
		return nil, m.err
	}
	return m.participants, nil
}

func (m *mockEventService) ListParticipants(ctx context.Context, eventID, callerID string, params domain.PaginationParams) ([]*domain.Participant, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.participants, len(m.participants), nil
}

func (m *mockEventService) DeleteParticipant(ctx context.Context, eventID, participantID, callerID string) error {
	return m.err
}

func TestEventController_CreateEvent_Success(t *testing.T) {
	svc := &mockEventService{}
	ctrl := NewEventController(testControllerLogger(), svc)

	w := httptest.NewRecorder()
	ctrl.CreateEvent(w, authedRequest(http.MethodPost, "/api/events", `{"title":"Go Conference"}`))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
}

func TestEventController_CreateEvent_Unauthorized(t *testing.T) {
	ctrl := NewEventController(testControllerLogger(), &mockEventService{})

	req := httptest.NewRequest(http.MethodPost, "/api/events", nil)
	w := httptest.NewRecorder()
	ctrl.ListMyEvents(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestEventController_CreateEvent_EmptyTitle(t *testing.T) {
	ctrl := NewEventController(testControllerLogger(), &mockEventService{})

	w := httptest.NewRecorder()
	ctrl.CreateEvent(w, authedRequest(http.MethodPost, "/api/events", `{"title":"  "}`))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestEventController_GetEvent_InvalidID(t *testing.T) {
	ctrl := NewEventController(testControllerLogger(), &mockEventService{})

	req := authedRequest(http.MethodGet, "/api/events/not-a-uuid", "")
	req.SetPathValue("eventID", "not-a-uuid")
	w := httptest.NewRecorder()
	ctrl.GetEvent(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestEventController_GetEvent_Forbidden(t *testing.T) {
	ctrl := NewEventController(testControllerLogger(), &mockEventService{err: domain.ErrForbidden})

	req := authedRequest(http.MethodGet, "/api/events/"+testEventID, "")
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()
	ctrl.GetEvent(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
	var resp helpers.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != helpers.ErrCodeForbidden {
		t.Fatalf("expected forbidden error, got %v", resp.Error)
	}
}

func TestEventController_UpdateEventTemplate_Success(t *testing.T) {
	svc := &mockEventService{template: &domain.CertificateTemplate{ID: "tpl-1", FontSize: 60}}
	ctrl := NewEventController(testControllerLogger(), svc)

	body := `{"font_size":60,"position_x":30.5}`
	req := authedRequest(http.MethodPatch, "/api/events/"+testEventID+"/template", body)
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()
	ctrl.UpdateEventTemplate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if svc.gotPatch.FontSize == nil || *svc.gotPatch.FontSize != 60 {
		t.Fatalf("expected font size patch, got %+v", svc.gotPatch)
	}
	if svc.gotPatch.PositionX == nil || *svc.gotPatch.PositionX != 30.5 {
		t.Fatalf("expected position_x patch, got %+v", svc.gotPatch)
	}
	if svc.gotPatch.FontFamily != nil {
		t.Fatalf("expected font_family to stay nil, got %v", *svc.gotPatch.FontFamily)
	}
}

func TestEventController_UpdateEventTemplate_Validation(t *testing.T) {
	ctrl := NewEventController(testControllerLogger(), &mockEventService{})

	tests := []struct {
		name string
		body string
	}{
		{"position out of range", `{"position_x":150}`},
		{"negative width", `{"width":-5}`},
		{"bad font color", `{"font_color":"red"}`},
		{"empty image url", `{"image_url":"  "}`},
		{"zero font size", `{"font_size":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := authedRequest(http.MethodPatch, "/api/events/"+testEventID+"/template", tt.body)
			req.SetPathValue("eventID", testEventID)
			w := httptest.NewRecorder()
			ctrl.UpdateEventTemplate(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestEventController_AddParticipants_Success(t *testing.T) {
	svc := &mockEventService{participants: []*domain.Participant{{ID: testParticipantID, Name: "Ada"}}}
	ctrl := NewEventController(testControllerLogger(), svc)

	body := `{"participants":[{"name":"Ada","email":"ada@example.com"}]}`
	req := authedRequest(http.MethodPost, "/api/events/"+testEventID+"/participants", body)
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()
	ctrl.AddParticipants(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	if len(svc.gotEntries) != 1 || svc.gotEntries[0].Email != "ada@example.com" {
		t.Fatalf("service called with entries %+v", svc.gotEntries)
	}
}

func TestEventController_AddParticipants_EmptyList(t *testing.T) {
	ctrl := NewEventController(testControllerLogger(), &mockEventService{})

	req := authedRequest(http.MethodPost, "/api/events/"+testEventID+"/participants", `{"participants":[]}`)
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()
	ctrl.AddParticipants(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestEventController_DeleteParticipant_NotFound(t *testing.T) {
	ctrl := NewEventController(testControllerLogger(), &mockEventService{err: domain.ErrNotFound})

	req := authedRequest(http.MethodDelete, "/api/events/"+testEventID+"/participants/"+testParticipantID, "")
	req.SetPathValue("eventID", testEventID)
	req.SetPathValue("participantID", testParticipantID)
	w := httptest.NewRecorder()
	ctrl.DeleteParticipant(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestEventController_DeleteEvent_NoContent(t *testing.T) {
	ctrl := NewEventController(testControllerLogger(), &mockEventService{})

	req := authedRequest(http.MethodDelete, "/api/events/"+testEventID, "")
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()
	ctrl.DeleteEvent(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, w.Code)
	}
}
