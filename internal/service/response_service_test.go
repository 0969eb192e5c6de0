package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/customer-care-api/internal/domain"
	"github.com/spec-kit/customer-care-api/internal/events"
	apperrors "github.com/spec-kit/customer-care-api/pkg/util"
)

type responseFixture struct {
	service    *ResponseService
	tickets    *fakeTicketRepo
	users      *fakeUserRepo
	responses  *fakeResponseRepo
	dispatcher *recordingDispatcher
}

func newResponseFixture() *responseFixture {
	users := newFakeUserRepo()
	tickets := newFakeTicketRepo()
	responses := newFakeResponseRepo(users)
	dispatcher := &recordingDispatcher{}
	svc := NewResponseService(ResponseDependencies{
		ResponseRepo: responses,
		TicketRepo:   tickets,
		UserRepo:     users,
		Dispatcher:   dispatcher,
	})
	return &responseFixture{
		service:    svc,
		tickets:    tickets,
		users:      users,
		responses:  responses,
		dispatcher: dispatcher,
	}
}

func (f *responseFixture) seedUser(t *testing.T, role domain.Role, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         "Test " + string(role),
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *responseFixture) seedTicket(t *testing.T, userID string, status domain.TicketStatus) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		UserID:      userID,
		Title:       "widget stopped working",
		Description: "it just stopped",
		Status:      status,
		Priority:    domain.TicketPriorityMedium,
	}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	return ticket
}

func TestCreateResponseCustomerReopensResolved(t *testing.T) {
	f := newResponseFixture()
	customer := f.seedUser(t, domain.RoleCustomer, "customer@example.com")
	ticket := f.seedTicket(t, customer.ID, domain.TicketStatusResolved)

	response, err := f.service.CreateResponse(context.Background(), ResponseCreateInput{
		TicketID: ticket.ID,
		UserID:   customer.ID,
		Content:  "it broke again",
	})
	require.NoError(t, err)
	require.NotNil(t, response.Author)
	assert.Equal(t, customer.ID, response.Author.ID)

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)

	changes := f.dispatcher.ofType(events.EventTicketStatusChanged)
	require.Len(t, changes, 1)
	payload, ok := changes[0].Payload.(events.TicketStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusResolved, payload.OldStatus)
	assert.Equal(t, domain.TicketStatusOpen, payload.NewStatus)
	assert.True(t, payload.Automatic)

	require.Len(t, f.dispatcher.ofType(events.EventResponseAdded), 1)
}

func TestCreateResponseAgentProgressesOpen(t *testing.T) {
	f := newResponseFixture()
	customer := f.seedUser(t, domain.RoleCustomer, "customer@example.com")
	agent := f.seedUser(t, domain.RoleAgent, "agent@example.com")
	ticket := f.seedTicket(t, customer.ID, domain.TicketStatusOpen)

	_, err := f.service.CreateResponse(context.Background(), ResponseCreateInput{
		TicketID: ticket.ID,
		UserID:   agent.ID,
		Content:  "taking a look now",
	})
	require.NoError(t, err)

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
}

func TestCreateResponseInternalNeverTransitions(t *testing.T) {
	tests := []struct {
		role   domain.Role
		status domain.TicketStatus
	}{
		{domain.RoleAgent, domain.TicketStatusOpen},
		{domain.RoleCustomer, domain.TicketStatusResolved},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s on %s", tt.role, tt.status), func(t *testing.T) {
			f := newResponseFixture()
			author := f.seedUser(t, tt.role, "author@example.com")
			ticket := f.seedTicket(t, author.ID, tt.status)

			_, err := f.service.CreateResponse(context.Background(), ResponseCreateInput{
				TicketID:   ticket.ID,
				UserID:     author.ID,
				Content:    "internal note",
				IsInternal: true,
			})
			require.NoError(t, err)

			stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, stored.Status)
			assert.Empty(t, f.dispatcher.ofType(events.EventTicketStatusChanged))
		})
	}
}

func TestCreateResponseNoTransitionOutsideRules(t *testing.T) {
	f := newResponseFixture()
	customer := f.seedUser(t, domain.RoleCustomer, "customer@example.com")
	ticket := f.seedTicket(t, customer.ID, domain.TicketStatusClosed)

	_, err := f.service.CreateResponse(context.Background(), ResponseCreateInput{
		TicketID: ticket.ID,
		UserID:   customer.ID,
		Content:  "please reopen",
	})
	require.NoError(t, err)

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, stored.Status)
}

func TestCreateResponseValidation(t *testing.T) {
	f := newResponseFixture()
	customer := f.seedUser(t, domain.RoleCustomer, "customer@example.com")
	ticket := f.seedTicket(t, customer.ID, domain.TicketStatusOpen)

	_, err := f.service.CreateResponse(context.Background(), ResponseCreateInput{
		TicketID: ticket.ID,
		UserID:   customer.ID,
		Content:  "   ",
	})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	_, err = f.service.CreateResponse(context.Background(), ResponseCreateInput{
		TicketID: "tck-missing",
		UserID:   customer.ID,
		Content:  "hello",
	})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)

	_, err = f.service.CreateResponse(context.Background(), ResponseCreateInput{
		TicketID: ticket.ID,
		UserID:   "usr-missing",
		Content:  "hello",
	})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestListForTicketVisibility(t *testing.T) {
	f := newResponseFixture()
	customer := f.seedUser(t, domain.RoleCustomer, "customer@example.com")
	agent := f.seedUser(t, domain.RoleAgent, "agent@example.com")
	ticket := f.seedTicket(t, customer.ID, domain.TicketStatusOpen)

	contents := []struct {
		text     string
		internal bool
		author   string
	}{
		{"first public", false, customer.ID},
		{"internal note", true, agent.ID},
		{"second public", false, agent.ID},
	}
	for _, c := range contents {
		_, err := f.service.CreateResponse(context.Background(), ResponseCreateInput{
			TicketID:   ticket.ID,
			UserID:     c.author,
			Content:    c.text,
			IsInternal: c.internal,
		})
		require.NoError(t, err)
	}

	visible, err := f.service.ListForTicket(context.Background(), ticket.ID, false)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, "first public", visible[0].Content)
	assert.Equal(t, "second public", visible[1].Content)
	require.NotNil(t, visible[0].Author)
	assert.Equal(t, customer.ID, visible[0].Author.ID)

	all, err := f.service.ListForTicket(context.Background(), ticket.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "internal note", all[1].Content)
}

func TestListForTicketUnknownTicket(t *testing.T) {
	f := newResponseFixture()

	_, err := f.service.ListForTicket(context.Background(), "tck-missing", false)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestUpdateResponse(t *testing.T) {
	f := newResponseFixture()
	customer := f.seedUser(t, domain.RoleCustomer, "customer@example.com")
	ticket := f.seedTicket(t, customer.ID, domain.TicketStatusInProgress)

	created, err := f.service.CreateResponse(context.Background(), ResponseCreateInput{
		TicketID: ticket.ID,
		UserID:   customer.ID,
		Content:  "original",
	})
	require.NoError(t, err)

	internal := true
	updated, err := f.service.UpdateResponse(context.Background(), created.ID, ResponseUpdateInput{
		Content:    "edited",
		IsInternal: &internal,
	})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.True(t, updated.IsInternal)

	_, err = f.service.UpdateResponse(context.Background(), created.ID, ResponseUpdateInput{Content: ""})
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	_, err = f.service.UpdateResponse(context.Background(), "rsp-missing", ResponseUpdateInput{Content: "hello"})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestDeleteResponse(t *testing.T) {
	f := newResponseFixture()
	customer := f.seedUser(t, domain.RoleCustomer, "customer@example.com")
	ticket := f.seedTicket(t, customer.ID, domain.TicketStatusInProgress)

	created, err := f.service.CreateResponse(context.Background(), ResponseCreateInput{
		TicketID: ticket.ID,
		UserID:   customer.ID,
		Content:  "to be removed",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteResponse(context.Background(), created.ID))

	err = f.service.DeleteResponse(context.Background(), created.ID)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

// Concurrent agent replies on the same open ticket: the conditional write
// means only one of them performs the transition, so exactly one automatic
// status change is recorded even though every response is persisted.
func TestCreateResponseConcurrentTransition(t *testing.T) {
	f := newResponseFixture()
	customer := f.seedUser(t, domain.RoleCustomer, "customer@example.com")
	ticket := f.seedTicket(t, customer.ID, domain.TicketStatusOpen)

	const workers = 8
	agents := make([]*domain.User, workers)
	for i := range agents {
		agents[i] = f.seedUser(t, domain.RoleAgent, fmt.Sprintf("agent%d@example.com", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.CreateResponse(context.Background(), ResponseCreateInput{
				TicketID: ticket.ID,
				UserID:   agents[i].ID,
				Content:  fmt.Sprintf("reply %d", i),
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	stored, err := f.tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)

	assert.Len(t, f.dispatcher.ofType(events.EventTicketStatusChanged), 1)
	assert.Len(t, f.dispatcher.ofType(events.EventResponseAdded), workers)

	thread, err := f.service.ListForTicket(context.Background(), ticket.ID, false)
	require.NoError(t, err)
	assert.Len(t, thread, workers)
}
