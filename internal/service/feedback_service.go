package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/mess_voting_bot/internal/model"
)

const maxFeedbackLength = 2000

type FeedbackService struct {
	feedback FeedbackRepository
	profiles ProfileRepository
	logger   *zap.Logger
}

func NewFeedbackService(feedback FeedbackRepository, profiles ProfileRepository, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{feedback: feedback, profiles: profiles, logger: logger}
}

// Submit отправляет отзыв студента повару
func (s *FeedbackService) Submit(ctx context.Context, studentID, catererID uuid.UUID, message string) (*model.Feedback, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, validationError("message is required")
	}
	if len([]rune(message)) > maxFeedbackLength {
		return nil, validationError("message is longer than %d characters", maxFeedbackLength)
	}

	student, err := loadProfile(ctx, s.profiles, studentID)
	if err != nil {
		return nil, err
	}
	if !student.IsStudent() {
		return nil, fmt.Errorf("%w: only students send feedback", ErrForbidden)
	}

	caterer, err := loadProfile(ctx, s.profiles, catererID)
	if err != nil {
		return nil, err
	}
	if !caterer.IsCaterer() {
		return nil, validationError("feedback target is not a caterer")
	}

	fb := &model.Feedback{
		StudentID:   studentID,
		CatererID:   catererID,
		Message:     message,
		StudentName: student.FullName,
		CatererName: caterer.FullName,
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	s.logger.Info("Feedback submitted",
		zap.String("feedback_id", fb.ID.String()),
		zap.String("caterer_id", catererID.String()),
	)
	return fb, nil
}

func (s *FeedbackService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]*model.Feedback, error) {
	list, err := s.feedback.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return list, nil
}

func (s *FeedbackService) ListForCaterer(ctx context.Context, catererID uuid.UUID) ([]*model.Feedback, error) {
	list, err := s.feedback.ListByCaterer(ctx, catererID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return list, nil
}

// Respond сохраняет ответ повара на его собственный отзыв
func (s *FeedbackService) Respond(ctx context.Context, catererID, feedbackID uuid.UUID, response string) (*model.Feedback, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, validationError("response is required")
	}

	fb, err := s.feedback.GetByID(ctx, feedbackID)
	if err != nil {
		return nil, fmt.Errorf("get feedback: %w", err)
	}
	if fb == nil {
		return nil, notFound("feedback")
	}
	if fb.CatererID != catererID {
		return nil, fmt.Errorf("%w: feedback addressed to another caterer", ErrForbidden)
	}

	if err := s.feedback.Respond(ctx, feedbackID, catererID, response); err != nil {
		return nil, translateRepoError(err)
	}

	fb.Response = &response
	return fb, nil
}
