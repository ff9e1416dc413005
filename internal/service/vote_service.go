package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/metrics"
	"github.com/Freeeeeet/mess_voting_bot/internal/model"
	"github.com/Freeeeeet/mess_voting_bot/internal/repository"
	"github.com/Freeeeeet/mess_voting_bot/internal/voting"
)

// VoteResult состояние голосов студента после операции
type VoteResult struct {
	ItemID uuid.UUID   `json:"menu_item_id"`
	Voted  bool        `json:"voted"`
	Votes  []uuid.UUID `json:"votes"`
}

type VoteService struct {
	sessions SessionRepository
	items    MenuItemRepository
	profiles ProfileRepository
	votes    VoteRepository
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewVoteService(
	sessions SessionRepository,
	items MenuItemRepository,
	profiles ProfileRepository,
	votes VoteRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *VoteService {
	return &VoteService{
		sessions: sessions,
		items:    items,
		profiles: profiles,
		votes:    votes,
		metrics:  m,
		logger:   logger,
	}
}

// ballotRequest всё, что нужно для переключения голоса
type ballotRequest struct {
	item   *model.MenuItem
	ballot *voting.Ballot
}

// prepare проверяет запрос до любых записей в хранилище
func (s *VoteService) prepare(ctx context.Context, studentID, itemID uuid.UUID) (*ballotRequest, error) {
	if studentID == uuid.Nil || itemID == uuid.Nil {
		return nil, validationError("student id and menu item id are required")
	}

	student, err := loadProfile(ctx, s.profiles, studentID)
	if err != nil {
		return nil, err
	}
	if !student.IsStudent() {
		return nil, fmt.Errorf("%w: only students vote", ErrForbidden)
	}
	if student.Mess() == "" {
		return nil, validationError("student has no mess type")
	}

	item, err := loadMenuItem(ctx, s.items, itemID)
	if err != nil {
		return nil, err
	}
	if item.MessType != student.Mess() {
		return nil, fmt.Errorf("%w: item belongs to mess %s", ErrForbidden, item.MessType)
	}

	session, err := loadSession(ctx, s.sessions, item.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOpen() {
		return nil, ErrSessionNotOpen
	}

	current, err := s.votes.ListByUser(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(current))
	for _, v := range current {
		ids = append(ids, v.MenuItemID)
	}

	return &ballotRequest{
		item:   item,
		ballot: voting.NewBallot(studentID, ids),
	}, nil
}

func (s *VoteService) toggle(ctx context.Context, req *ballotRequest) (*VoteResult, error) {
	slot, err := s.items.ListSlot(ctx, req.item)
	if err != nil {
		return nil, fmt.Errorf("list slot items: %w", err)
	}

	wasVoted := req.ballot.Votes().Has(req.item.ID)
	votes, err := req.ballot.Toggle(ctx, s.votes, *req.item, slot)
	if err != nil {
		reason := "store"
		if errors.Is(err, repository.ErrSlotAlreadyVoted) {
			reason = "slot_taken"
		}
		s.metrics.VoteFailed(reason)
		s.logger.Warn("Vote toggle reverted",
			zap.String("student_id", req.ballot.StudentID().String()),
			zap.String("item_id", req.item.ID.String()),
			zap.Error(err),
		)
		return nil, translateRepoError(err)
	}

	if wasVoted {
		s.metrics.VoteOp(voting.OpDelete.String())
	} else {
		s.metrics.VoteOp(voting.OpInsert.String())
	}

	s.logger.Debug("Vote toggled",
		zap.String("student_id", req.ballot.StudentID().String()),
		zap.String("item_id", req.item.ID.String()),
		zap.Bool("voted", !wasVoted),
	)

	return &VoteResult{ItemID: req.item.ID, Voted: votes.Has(req.item.ID), Votes: votes.IDs()}, nil
}

func unchanged(req *ballotRequest) *VoteResult {
	votes := req.ballot.Votes()
	return &VoteResult{ItemID: req.item.ID, Voted: votes.Has(req.item.ID), Votes: votes.IDs()}
}

// Toggle переключает голос: снимает, если стоял, иначе ставит вместо голоса в том же слоте
func (s *VoteService) Toggle(ctx context.Context, studentID, itemID uuid.UUID) (*VoteResult, error) {
	req, err := s.prepare(ctx, studentID, itemID)
	if err != nil {
		return nil, err
	}
	return s.toggle(ctx, req)
}

// Cast ставит голос; если он уже стоит, ничего не делает
func (s *VoteService) Cast(ctx context.Context, studentID, itemID uuid.UUID) (*VoteResult, error) {
	req, err := s.prepare(ctx, studentID, itemID)
	if err != nil {
		return nil, err
	}
	if req.ballot.Votes().Has(itemID) {
		return unchanged(req), nil
	}
	return s.toggle(ctx, req)
}

// Remove снимает голос; если его нет, ничего не делает
func (s *VoteService) Remove(ctx context.Context, studentID, itemID uuid.UUID) (*VoteResult, error) {
	req, err := s.prepare(ctx, studentID, itemID)
	if err != nil {
		return nil, err
	}
	if !req.ballot.Votes().Has(itemID) {
		return unchanged(req), nil
	}
	return s.toggle(ctx, req)
}

func (s *VoteService) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Vote, error) {
	if userID == uuid.Nil {
		return nil, validationError("user id is required")
	}
	votes, err := s.votes.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	return votes, nil
}

// CountsBySession считает голоса по пунктам меню, всегда свежим запросом
func (s *VoteService) CountsBySession(ctx context.Context, sessionID uuid.UUID) ([]model.VoteCount, error) {
	if _, err := loadSession(ctx, s.sessions, sessionID); err != nil {
		return nil, err
	}
	counts, err := s.votes.CountsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count votes: %w", err)
	}
	return counts, nil
}

func (s *VoteService) TotalBySession(ctx context.Context, sessionID uuid.UUID) (int, error) {
	counts, err := s.CountsBySession(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total, nil
}
