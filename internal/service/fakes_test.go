package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/customer-care-api/internal/domain"
	"github.com/spec-kit/customer-care-api/internal/events"
	"github.com/spec-kit/customer-care-api/internal/repository"
)

// In-memory repository fakes. They honor the same contracts as the
// Postgres implementations: pgx.ErrNoRows for missing rows, copies on
// read, and an atomic conditional write for UpdateStatusIf.

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	user.ID = fmt.Sprintf("usr-%d", f.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []domain.User
	for _, user := range f.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && user.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != nil {
			needle := strings.ToLower(*filter.Search)
			if !strings.Contains(strings.ToLower(user.Name), needle) &&
				!strings.Contains(strings.ToLower(user.Email), needle) {
				continue
			}
		}
		matched = append(matched, user)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (f *fakeUserRepo) ListAgents(_ context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var agents []domain.User
	for _, user := range f.users {
		if user.Role.IsAgent() && user.IsActive {
			agents = append(agents, user)
		}
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].Name < agents[j].Name })
	return agents, nil
}

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]domain.Ticket)}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	ticket.ID = fmt.Sprintf("tck-%d", f.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.AgentID = stored.AgentID
	ticket.UpdatedAt = time.Now()
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (f *fakeTicketRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.tickets, id)
	return nil
}

func (f *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.UserID != nil && ticket.UserID != *filter.UserID {
			continue
		}
		if filter.AgentID != nil && (ticket.AgentID == nil || *ticket.AgentID != *filter.AgentID) {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && ticket.Priority != *filter.Priority {
			continue
		}
		if filter.Category != nil && ticket.Category != *filter.Category {
			continue
		}
		if filter.Search != nil {
			needle := strings.ToLower(*filter.Search)
			if !strings.Contains(strings.ToLower(ticket.Title), needle) &&
				!strings.Contains(strings.ToLower(ticket.Description), needle) {
				continue
			}
		}
		matched = append(matched, ticket)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return paginate(matched, filter.Page), int64(len(matched)), nil
}

func (f *fakeTicketRepo) UpdateStatus(_ context.Context, id string, next domain.TicketStatus) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket.Status = next
	ticket.UpdatedAt = time.Now()
	f.tickets[id] = ticket
	return &ticket, nil
}

func (f *fakeTicketRepo) UpdateStatusIf(_ context.Context, id string, expected, next domain.TicketStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok || ticket.Status != expected {
		return false, nil
	}
	ticket.Status = next
	ticket.UpdatedAt = time.Now()
	f.tickets[id] = ticket
	return true, nil
}

func (f *fakeTicketRepo) AssignAgent(_ context.Context, id, agentID string, status domain.TicketStatus) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket.AgentID = &agentID
	ticket.Status = status
	ticket.UpdatedAt = time.Now()
	f.tickets[id] = ticket
	return &ticket, nil
}

type fakeResponseRepo struct {
	mu        sync.Mutex
	seq       int
	responses []domain.Response
	users     *fakeUserRepo
}

func newFakeResponseRepo(users *fakeUserRepo) *fakeResponseRepo {
	return &fakeResponseRepo{users: users}
}

func (f *fakeResponseRepo) Create(_ context.Context, response *domain.Response) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	response.ID = fmt.Sprintf("rsp-%d", f.seq)
	response.CreatedAt = time.Now().Add(time.Duration(f.seq) * time.Millisecond)
	response.UpdatedAt = response.CreatedAt
	stored := *response
	stored.Author = nil
	f.responses = append(f.responses, stored)
	return nil
}

func (f *fakeResponseRepo) Update(_ context.Context, response *domain.Response) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.responses {
		if f.responses[i].ID == response.ID {
			response.UpdatedAt = time.Now()
			stored := *response
			stored.Author = nil
			f.responses[i] = stored
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeResponseRepo) GetByID(_ context.Context, id string) (*domain.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, response := range f.responses {
		if response.ID == id {
			r := response
			return &r, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeResponseRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.responses {
		if f.responses[i].ID == id {
			f.responses = append(f.responses[:i], f.responses[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeResponseRepo) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.Response, error) {
	f.mu.Lock()
	var matched []domain.Response
	for _, response := range f.responses {
		if response.TicketID != ticketID {
			continue
		}
		if response.IsInternal && !includeInternal {
			continue
		}
		matched = append(matched, response)
	}
	f.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.Before(matched[j].CreatedAt) })
	for i := range matched {
		if author, err := f.users.GetByID(ctx, matched[i].UserID); err == nil {
			matched[i].Author = author
		}
	}
	return matched, nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	seq        int
	categories map[string]domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[string]domain.Category)}
}

func (f *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	category.ID = fmt.Sprintf("cat-%d", f.seq)
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	f.categories[category.ID] = *category
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	category.UpdatedAt = time.Now()
	f.categories[category.ID] = *category
	return nil
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	category, ok := f.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &category, nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Category
	for _, category := range f.categories {
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var matched []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func paginate[T any](items []T, page repository.Page) []T {
	offset := page.Offset()
	if offset >= len(items) {
		return nil
	}
	end := offset + page.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
