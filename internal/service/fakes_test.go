package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
)

var (
	agentID    = "0b6f1b8e-7c59-4c53-9a55-0f8f8f6a0a01"
	dispatchID = "0b6f1b8e-7c59-4c53-9a55-0f8f8f6a0a02"
	retiredID  = "0b6f1b8e-7c59-4c53-9a55-0f8f8f6a0a03"
)

type fakeTickets struct {
	mu      sync.Mutex
	byID    map[int64]*domain.Ticket
	nextID  int64
	updates int
}

func newFakeTickets(tickets ...*domain.Ticket) *fakeTickets {
	f := &fakeTickets{byID: map[int64]*domain.Ticket{}, nextID: 100}
	for _, t := range tickets {
		cp := *t
		f.byID[t.ID] = &cp
	}
	return f
}

func (f *fakeTickets) Create(_ context.Context, t *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.TicketID == t.TicketID {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	f.nextID++
	t.ID = f.nextID
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTickets) Update(_ context.Context, t *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[t.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.IsClosed() {
		return domain.ErrTicketClosed
	}
	f.updates++
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTickets) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTickets) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.byID {
		if filter.StationID != nil && t.StationID != *filter.StationID {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTickets) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

type fakeStations map[int64]*domain.Station

func (f fakeStations) Create(_ context.Context, s *domain.Station) error {
	s.ID = int64(len(f) + 1)
	f[s.ID] = s
	return nil
}

func (f fakeStations) Update(_ context.Context, s *domain.Station) error {
	if _, ok := f[s.ID]; !ok {
		return pgx.ErrNoRows
	}
	f[s.ID] = s
	return nil
}

func (f fakeStations) GetByID(_ context.Context, id int64) (*domain.Station, error) {
	s, ok := f[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f fakeStations) List(_ context.Context) ([]domain.Station, error) {
	var out []domain.Station
	for _, s := range f {
		out = append(out, *s)
	}
	return out, nil
}

func (f fakeStations) Delete(_ context.Context, id int64) error {
	if _, ok := f[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f, id)
	return nil
}

type fakePrincipals struct {
	mu   sync.Mutex
	byID map[string]*domain.Principal
}

func newFakePrincipals(ps ...*domain.Principal) *fakePrincipals {
	f := &fakePrincipals{byID: map[string]*domain.Principal{}}
	for _, p := range ps {
		cp := *p
		f.byID[p.ID] = &cp
	}
	return f
}

func (f *fakePrincipals) Create(_ context.Context, p *domain.Principal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == p.Email {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	p.ID = "0b6f1b8e-7c59-4c53-9a55-0f8f8f6a0aff"
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePrincipals) Update(_ context.Context, p *domain.Principal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePrincipals) GetByID(_ context.Context, id string) (*domain.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakePrincipals) GetByEmail(_ context.Context, email string) (*domain.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakePrincipals) List(_ context.Context, _ repository.PrincipalFilter) ([]domain.Principal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Principal
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePrincipals) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

type fakeRoles struct {
	byID  map[int64]*domain.Role
	inUse map[int64]bool
}

func (f *fakeRoles) Create(_ context.Context, r *domain.Role) error {
	for _, existing := range f.byID {
		if existing.Name == r.Name {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	r.ID = int64(len(f.byID) + 10)
	f.byID[r.ID] = r
	return nil
}

func (f *fakeRoles) Update(_ context.Context, r *domain.Role) error {
	f.byID[r.ID] = r
	return nil
}

func (f *fakeRoles) GetByID(_ context.Context, id int64) (*domain.Role, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRoles) List(_ context.Context) ([]domain.Role, error) {
	var out []domain.Role
	for _, r := range f.byID {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRoles) Delete(_ context.Context, id int64) error {
	if f.inUse[id] {
		return repository.ErrRoleInUse
	}
	if _, ok := f.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.byID, id)
	return nil
}

type fakeAttachments struct {
	created []domain.Attachment
}

func (f *fakeAttachments) Create(_ context.Context, a *domain.Attachment) error {
	a.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *a)
	return nil
}

func (f *fakeAttachments) ListByTicket(_ context.Context, ticketID int64) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, a := range f.created {
		if a.TicketID != nil && *a.TicketID == ticketID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttachments) ListByPrincipal(_ context.Context, principalID string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, a := range f.created {
		if a.PrincipalID != nil && *a.PrincipalID == principalID {
			out = append(out, a)
		}
	}
	return out, nil
}

type recordingEvents struct {
	mu        sync.Mutex
	published []events.Event
	err       error
}

func (r *recordingEvents) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, e)
	return r.err
}

func (r *recordingEvents) Subscribe(events.EventType, events.EventHandler) {}

type fakeAlerts struct {
	mu   sync.Mutex
	sent []domain.AlertRequest
	fail map[domain.Platform]error
}

func (f *fakeAlerts) Dispatch(_ context.Context, req domain.AlertRequest) (*domain.DispatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[req.Platform]; err != nil {
		return nil, err
	}
	f.sent = append(f.sent, req)
	return &domain.DispatchResult{Platform: req.Platform, Delivered: true, ID: "id"}, nil
}

func (f *fakeAlerts) byPlatform(p domain.Platform) []domain.AlertRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AlertRequest
	for _, r := range f.sent {
		if r.Platform == p {
			out = append(out, r)
		}
	}
	return out
}

func actorWith(grants domain.Grants) *domain.AuthContext {
	return &domain.AuthContext{
		Principal: &domain.Principal{ID: dispatchID, Name: "Lee", Active: true},
		Role:      &domain.Role{ID: 9, Name: "test", Permissions: domain.NewPermissionSet(grants, nil)},
	}
}

func ticketActions(actions ...domain.Action) *domain.AuthContext {
	row := map[domain.Action]bool{}
	for _, a := range actions {
		row[a] = true
	}
	return actorWith(domain.Grants{domain.ResourceTickets: row})
}

func clock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
