package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

// Stats снимок агрегатов для метрик
type Stats struct {
	SessionsByStatus map[model.SessionStatus]int
	ProfilesByRole   map[model.Role]int
	Votes            int
}

type StatsService struct {
	sessions SessionRepository
	profiles ProfileRepository
	votes    VoteRepository
}

func NewStatsService(sessions SessionRepository, profiles ProfileRepository, votes VoteRepository) *StatsService {
	return &StatsService{sessions: sessions, profiles: profiles, votes: votes}
}

func (s *StatsService) Snapshot(ctx context.Context) (*Stats, error) {
	sessions, err := s.sessions.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	profiles, err := s.profiles.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count profiles: %w", err)
	}
	votes, err := s.votes.Total(ctx)
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}

	return &Stats{SessionsByStatus: sessions, ProfilesByRole: profiles, Votes: votes}, nil
}
