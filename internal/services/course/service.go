// Package course serves the investment-literacy curriculum
package course

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
)

// Service implements CourseService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new course service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

var _ interfaces.CourseService = (*Service)(nil)

// ListCourses returns the full curriculum.
func (s *Service) ListCourses(ctx context.Context) ([]models.Course, error) {
	return s.storage.LearnStore().ListCourses(ctx)
}

// GetCourse returns one course with its lessons.
func (s *Service) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	c, err := s.storage.LearnStore().GetCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("course %s: %w", courseID, err)
	}
	return c, nil
}

// GetProgress returns the user's progress in a course. A user who has
// not started gets zero progress, not an error.
func (s *Service) GetProgress(ctx context.Context, userID, courseID string) (*models.CourseProgress, error) {
	if userID == "" {
		return nil, common.ErrUnavailable
	}

	progress, err := s.storage.LearnStore().GetProgress(ctx, userID, courseID)
	if errors.Is(err, common.ErrNotFound) {
		return &models.CourseProgress{UserID: userID, CourseID: courseID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("progress %s/%s: %w", userID, courseID, err)
	}
	return progress, nil
}

// CompleteLesson marks a lesson done and recomputes percent complete.
// Completing an already-completed lesson is a no-op.
func (s *Service) CompleteLesson(ctx context.Context, userID, courseID, lessonID string) (*models.CourseProgress, error) {
	if userID == "" {
		return nil, common.ErrUnavailable
	}

	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, lesson := range course.Lessons {
		if lesson.ID == lessonID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("lesson %s in course %s: %w", lessonID, courseID, common.ErrNotFound)
	}

	progress, err := s.GetProgress(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	for _, done := range progress.CompletedLessons {
		if done == lessonID {
			return progress, nil
		}
	}

	progress.CompletedLessons = append(progress.CompletedLessons, lessonID)
	if len(course.Lessons) > 0 {
		progress.PercentComplete = float64(len(progress.CompletedLessons)) / float64(len(course.Lessons)) * 100
	}
	progress.UpdatedAt = s.now()

	if err := s.storage.LearnStore().SaveProgress(ctx, progress); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("course_id", courseID).
		Str("lesson_id", lessonID).
		Float64("percent", progress.PercentComplete).
		Msg("Lesson completed")

	return progress, nil
}
