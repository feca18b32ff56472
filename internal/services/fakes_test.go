package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"eventmanager/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, Create returns this error
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
	for _, e := range events {
		f.byID[e.ID] = e
	}
	return f
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

func (f *fakeEventRepo) owned(ownerID string, keep func(*domain.Event) bool) []*domain.Event {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.CreatedBy == ownerID && keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventDate.Before(out[j].EventDate) })
	return out
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Event, error) {
	return f.owned(ownerID, func(*domain.Event) bool { return true }), nil
}

func (f *fakeEventRepo) ListByOwnerBetween(ctx context.Context, ownerID string, from, to time.Time) ([]*domain.Event, error) {
	return f.owned(ownerID, func(e *domain.Event) bool {
		return !e.EventDate.Before(from) && e.EventDate.Before(to)
	}), nil
}

func (f *fakeEventRepo) ListUpcomingByOwner(ctx context.Context, ownerID string, now time.Time, limit int) ([]*domain.Event, error) {
	out := f.owned(ownerID, func(e *domain.Event) bool { return !e.EventDate.Before(now) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	e, ok := f.byID[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = patch.Description
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.Capacity != nil {
		e.Capacity = *patch.Capacity
	}
	if patch.EventDate != nil {
		e.EventDate = *patch.EventDate
	}
	e.UpdatedAt = time.Now()
	return e, nil
}

// fakeParticipantRepo is an in-memory ParticipantRepository enforcing the
// (event_id, email) uniqueness of the real table.
type fakeParticipantRepo struct {
	byID        map[string]*domain.Participant
	order       []string
	nextID      int
	createErr   error
	updateQRErr error
}

func newFakeParticipantRepo(ps ...*domain.Participant) *fakeParticipantRepo {
	f := &fakeParticipantRepo{byID: make(map[string]*domain.Participant), nextID: 1}
	for _, p := range ps {
		f.byID[p.ID] = p
		f.order = append(f.order, p.ID)
	}
	return f
}

func (f *fakeParticipantRepo) CreateBatch(ctx context.Context, ps []*domain.Participant) error {
	if f.createErr != nil {
		return f.createErr
	}
	seen := make(map[string]bool)
	for _, p := range f.byID {
		seen[p.EventID+"|"+p.Email] = true
	}
	for _, p := range ps {
		key := p.EventID + "|" + p.Email
		if seen[key] {
			return domain.ErrAlreadyRegistered
		}
		seen[key] = true
	}
	for _, p := range ps {
		p.ID = fmt.Sprintf("p-%d", f.nextID)
		f.nextID++
		f.byID[p.ID] = p
		f.order = append(f.order, p.ID)
	}
	return nil
}

func (f *fakeParticipantRepo) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeParticipantRepo) GetByToken(ctx context.Context, token string) (*domain.Participant, error) {
	for _, p := range f.byID {
		if p.InvitationToken == token {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeParticipantRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	var out []*domain.Participant
	for _, id := range f.order {
		if p, ok := f.byID[id]; ok && p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) ListPage(ctx context.Context, eventID string, filter domain.ParticipantFilter, params domain.PaginationParams) ([]*domain.Participant, int, error) {
	all, _ := f.ListByEventID(ctx, eventID)
	var matched []*domain.Participant
	for _, p := range all {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(p.Email, filter.Search) && !strings.Contains(p.Name, filter.Search) {
			continue
		}
		matched = append(matched, p)
	}
	start := params.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + params.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (f *fakeParticipantRepo) ListByIDs(ctx context.Context, eventID string, ids []string) ([]*domain.Participant, error) {
	var out []*domain.Participant
	for _, id := range ids {
		if p, ok := f.byID[id]; ok && p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeParticipantRepo) UpdateStatus(ctx context.Context, id string, status domain.Status, updatedAt time.Time) (*domain.Participant, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = updatedAt
	cp := *p
	return &cp, nil
}

func (f *fakeParticipantRepo) UpdateQRCodeData(ctx context.Context, id, data string, updatedAt time.Time) error {
	if f.updateQRErr != nil {
		return f.updateQRErr
	}
	p, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.QRCodeData = data
	p.UpdatedAt = updatedAt
	return nil
}

func (f *fakeParticipantRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeProfileRepo is an in-memory ProfileRepository for tests.
type fakeProfileRepo struct {
	byID      map[string]*domain.Profile
	createErr error
	getErr    error
	creates   int
}

func newFakeProfileRepo(ps ...*domain.Profile) *fakeProfileRepo {
	f := &fakeProfileRepo{byID: make(map[string]*domain.Profile)}
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byID[p.ID]; ok {
		return domain.ErrDuplicate
	}
	f.byID[p.ID] = p
	return nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

// fakeEmailService records invitations and fails for addresses listed in failFor.
type fakeEmailService struct {
	sent    []*domain.InvitationEmailData
	failFor map[string]error
}

func newFakeEmailService() *fakeEmailService {
	return &fakeEmailService{failFor: make(map[string]error)}
}

func (f *fakeEmailService) SendInvitation(ctx context.Context, data *domain.InvitationEmailData) error {
	if err, ok := f.failFor[data.Email]; ok {
		return err
	}
	f.sent = append(f.sent, data)
	return nil
}

// recordingNotifier keeps every published change.
type recordingNotifier struct {
	mu      sync.Mutex
	changes []domain.ParticipantChange
	err     error
}

func (n *recordingNotifier) Publish(ctx context.Context, c domain.ParticipantChange) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, c)
	return n.err
}

func (n *recordingNotifier) types() []domain.ChangeType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.ChangeType, 0, len(n.changes))
	for _, c := range n.changes {
		out = append(out, c.Type)
	}
	return out
}

// fakeFeed records subscriptions.
type fakeFeed struct {
	subscribed   []string
	unsubscribed int
}

func (f *fakeFeed) Subscribe(eventID string, onChange func(domain.ParticipantChange)) func() {
	f.subscribed = append(f.subscribed, eventID)
	return func() { f.unsubscribed++ }
}

// seqTokens mints predictable UUID-shaped tokens.
type seqTokens struct{ n int }

func (g *seqTokens) Generate() string {
	g.n++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", g.n)
}

// fakeQR returns the payload prefixed with "png:".
type fakeQR struct{ err error }

func (q fakeQR) PNG(payload string) ([]byte, error) {
	if q.err != nil {
		return nil, q.err
	}
	return []byte("png:" + payload), nil
}

const testBaseURL = "https://events.test"

var (
	organizer = domain.Identity{UserID: "user-1", Email: "org@example.com", Name: "Olga Organizer"}
	stranger  = domain.Identity{UserID: "user-2", Email: "other@example.com"}
)

func testEvent(id, owner string) *domain.Event {
	desc := "Annual meetup"
	return &domain.Event{
		ID:          id,
		Title:       "Go Meetup",
		Description: &desc,
		Location:    "Berlin",
		Capacity:    10,
		EventDate:   time.Date(2026, time.March, 6, 19, 30, 0, 0, time.UTC),
		CreatedBy:   owner,
	}
}

func testParticipant(id, eventID, email string, status domain.Status, token string) *domain.Participant {
	return &domain.Participant{
		ID:              id,
		EventID:         eventID,
		Email:           email,
		Status:          status,
		InvitationToken: token,
	}
}
