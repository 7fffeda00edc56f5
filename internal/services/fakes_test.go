package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"certforge/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, Create returns this error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeEventRepo) UpdateTitle(ctx context.Context, id, title string) (*domain.Event, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.Title = title
	e.UpdatedAt = time.Now()
	return e, nil
}

func (f *fakeEventRepo) SetTemplateID(ctx context.Context, id, templateID string) error {
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.TemplateID = &templateID
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeTemplateRepo is an in-memory TemplateRepository for tests.
type fakeTemplateRepo struct {
	byID   map[string]*domain.CertificateTemplate
	nextID int
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{
		byID:   make(map[string]*domain.CertificateTemplate),
		nextID: 1,
	}
}

func (f *fakeTemplateRepo) Create(ctx context.Context, t *domain.CertificateTemplate) error {
	t.ID = fmt.Sprintf("tpl-%d", f.nextID)
	f.nextID++
	f.byID[t.ID] = t
	return nil
}

func (f *fakeTemplateRepo) GetByID(ctx context.Context, id string) (*domain.CertificateTemplate, error) {
	if t, ok := f.byID[id]; ok {
		return t, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeTemplateRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.CertificateTemplate, error) {
	var out []*domain.CertificateTemplate
	for _, t := range f.byID {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) Update(ctx context.Context, id string, patch domain.TemplatePatch) (*domain.CertificateTemplate, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.ImageURL != nil {
		t.ImageURL = *patch.ImageURL
	}
	applyTemplatePatch(t, patch)
	t.UpdatedAt = time.Now()
	return t, nil
}

// fakeParticipantRepo is an in-memory ParticipantRepository for tests.
// IDs are assigned in insertion order so ListUnsentByEventID is stable.
type fakeParticipantRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.Participant
	order  []string
	nextID int
	err    error // if set, Create returns this error
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{
		byID:   make(map[string]*domain.Participant),
		nextID: 1,
	}
}

func (f *fakeParticipantRepo) Create(ctx context.Context, p *domain.Participant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if existing.EventID == p.EventID && existing.Email == p.Email {
			return domain.ErrDuplicateParticipant
		}
	}
	p.ID = fmt.Sprintf("pt-%d", f.nextID)
	f.nextID++
	f.byID[p.ID] = p
	f.order = append(f.order, p.ID)
	return nil
}

func (f *fakeParticipantRepo) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeParticipantRepo) GetByVerificationCode(ctx context.Context, code string) (*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.VerificationCode != nil && *p.VerificationCode == code {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeParticipantRepo) ListByEventID(ctx context.Context, eventID string, params domain.PaginationParams) ([]*domain.Participant, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []*domain.Participant
	for _, id := range f.order {
		if p, ok := f.byID[id]; ok && p.EventID == eventID {
			all = append(all, p)
		}
	}
	total := len(all)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := start + params.PageSize
	if params.PageSize <= 0 || end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f *fakeParticipantRepo) ListUnsentByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Participant
	for _, id := range f.order {
		if p, ok := f.byID[id]; ok && p.EventID == eventID && !p.Emailed {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) UpdateCertificate(ctx context.Context, id string, rec domain.CertificateRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.CertificateURL = &rec.CertificateURL
	if p.VerificationCode == nil {
		code := rec.VerificationCode
		p.VerificationCode = &code
	}
	p.CertificateHash = &rec.CertificateHash
	p.IsVerified = true
	at := rec.VerifiedAt
	p.VerifiedAt = &at
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakeParticipantRepo) MarkEmailed(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Emailed = true
	return nil
}

func (f *fakeParticipantRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byEmail map[string]*domain.User
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*domain.User),
		nextID:  1,
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = fmt.Sprintf("us-%d", f.nextID)
	f.nextID++
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// fakeHasher is a reversible stand-in for the bcrypt hasher.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) {
	return salt + ":" + password, nil
}

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return fmt.Errorf("hash mismatch")
	}
	return nil
}

// fakeIssuer issues predictable tokens.
type fakeIssuer struct{ err error }

func (f fakeIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + userID, nil
}

// fakeEmailService records sends and can fail per recipient.
type fakeEmailService struct {
	mu     sync.Mutex
	sent   []string // recipient emails, in send order
	failTo map[string]error
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{failTo: make(map[string]error)}
}

func (f *fakeEmailService) SendCertificateEmail(ctx context.Context, to string, data *domain.CertificateEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failTo[strings.ToLower(to)]; ok {
		return err
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeEmailService) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	copy(out, f.sent)
	return out
}
