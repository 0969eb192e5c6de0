// Package lifecycle holds the ticket status state machine. The rules are
// pure functions over the role and status enums so they can be exercised
// without a data store.
package lifecycle

import "github.com/spec-kit/customer-care-api/internal/domain"

// TransitionOnResponse derives the automatic status transition caused by a
// new response, if any. Internal responses never trigger a transition. A
// customer replying to a resolved ticket reopens it; an agent or admin
// replying to an open ticket moves it to in_progress. The preconditions
// are disjoint, so at most one rule applies.
func TransitionOnResponse(author domain.Role, isInternal bool, current domain.TicketStatus) (domain.TicketStatus, bool) {
	if isInternal {
		return current, false
	}
	switch {
	case author == domain.RoleCustomer && current == domain.TicketStatusResolved:
		return domain.TicketStatusOpen, true
	case author.IsAgent() && current == domain.TicketStatusOpen:
		return domain.TicketStatusInProgress, true
	}
	return current, false
}

// StatusOnAssignment is the status a ticket takes when an agent is
// assigned. Assignment always forces in_progress, whatever the prior
// status was.
func StatusOnAssignment() domain.TicketStatus {
	return domain.TicketStatusInProgress
}

// CanAssign reports whether a user may be set as a ticket's agent.
func CanAssign(target domain.Role) bool {
	return target.IsAgent()
}
