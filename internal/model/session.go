package model

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusDraft         SessionStatus = "draft"           // Caterers propose items
	SessionStatusOpenForVoting SessionStatus = "open_for_voting" // Students vote
	SessionStatusClosed        SessionStatus = "closed"          // Waiting for admin review
	SessionStatusFinalized     SessionStatus = "finalized"       // Final menu frozen
)

var sessionStatusOrder = []SessionStatus{
	SessionStatusDraft,
	SessionStatusOpenForVoting,
	SessionStatusClosed,
	SessionStatusFinalized,
}

func (s SessionStatus) Valid() bool {
	return s.rank() >= 0
}

func (s SessionStatus) rank() int {
	for i, st := range sessionStatusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the status that directly follows s. Finalized has no successor.
func (s SessionStatus) Next() (SessionStatus, bool) {
	r := s.rank()
	if r < 0 || r == len(sessionStatusOrder)-1 {
		return "", false
	}
	return sessionStatusOrder[r+1], true
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Only single forward steps are allowed.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	n, ok := s.Next()
	return ok && n == next
}

// VotingSession is a bounded voting period with its own item set.
type VotingSession struct {
	ID        uuid.UUID     `json:"id"`
	Title     string        `json:"title"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Covers checks that date falls inside the session date range (inclusive).
func (s *VotingSession) Covers(date time.Time) bool {
	d := date.Format(DateLayout)
	return d >= s.StartDate.Format(DateLayout) && d <= s.EndDate.Format(DateLayout)
}

func (s *VotingSession) IsOpen() bool {
	return s.Status == SessionStatusOpenForVoting
}

func (s *VotingSession) IsFinalized() bool {
	return s.Status == SessionStatusFinalized
}
