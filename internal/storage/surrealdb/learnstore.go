package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
)

// LearnStore holds courses, per-user progress, and tutor chat history.
type LearnStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

var _ interfaces.LearnStore = (*LearnStore)(nil)

func NewLearnStore(db *surrealdb.DB, logger *common.Logger) *LearnStore {
	return &LearnStore{
		db:     db,
		logger: logger,
	}
}

func (s *LearnStore) ListCourses(ctx context.Context) ([]models.Course, error) {
	list, err := surrealdb.Select[[]models.Course](ctx, s.db, surrealmodels.Table("course"))
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	if list == nil {
		return nil, nil
	}
	return *list, nil
}

func (s *LearnStore) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := surrealdb.Select[models.Course](ctx, s.db, surrealmodels.NewRecordID("course", courseID))
	if err != nil {
		return nil, fmt.Errorf("failed to select course: %w", err)
	}
	if course == nil || course.ID == "" {
		return nil, fmt.Errorf("course %s: %w", courseID, common.ErrNotFound)
	}
	return course, nil
}

func (s *LearnStore) SaveCourse(ctx context.Context, course *models.Course) error {
	sql := "UPSERT type::record('course', $id) CONTENT $course"
	vars := map[string]any{"id": course.ID, "course": course}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.Course](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save course after retries: %w", err)
		}
	}
	return nil
}

// CourseProgress ID format: course_progress:<userID>_<courseID>
func progressID(userID, courseID string) string {
	return userID + "_" + courseID
}

func (s *LearnStore) GetProgress(ctx context.Context, userID, courseID string) (*models.CourseProgress, error) {
	progress, err := surrealdb.Select[models.CourseProgress](ctx, s.db, surrealmodels.NewRecordID("course_progress", progressID(userID, courseID)))
	if err != nil {
		return nil, fmt.Errorf("failed to select progress: %w", err)
	}
	if progress == nil || progress.CourseID == "" {
		return nil, fmt.Errorf("progress %s/%s: %w", userID, courseID, common.ErrNotFound)
	}
	return progress, nil
}

func (s *LearnStore) SaveProgress(ctx context.Context, progress *models.CourseProgress) error {
	sql := "UPSERT type::record('course_progress', $id) CONTENT $progress"
	vars := map[string]any{"id": progressID(progress.UserID, progress.CourseID), "progress": progress}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.CourseProgress](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to save progress after retries: %w", err)
		}
	}
	return nil
}

func (s *LearnStore) ListProgress(ctx context.Context, userID string) ([]models.CourseProgress, error) {
	sql := "SELECT * FROM course_progress WHERE user_id = $user_id"
	vars := map[string]any{"user_id": userID}

	results, err := surrealdb.Query[[]models.CourseProgress](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	if results != nil && len(*results) > 0 {
		return (*results)[0].Result, nil
	}
	return nil, nil
}

func (s *LearnStore) AppendChat(ctx context.Context, msg *models.ChatMessage) error {
	sql := "CREATE type::record('chat_message', $id) CONTENT $msg"
	vars := map[string]any{"id": msg.ID, "msg": msg}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.ChatMessage](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to append chat message after retries: %w", err)
		}
	}
	return nil
}

// ListChat returns the user's most recent messages, oldest first.
func (s *LearnStore) ListChat(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	sql := "SELECT * FROM chat_message WHERE user_id = $user_id ORDER BY created_at DESC LIMIT $limit"
	vars := map[string]any{"user_id": userID, "limit": limit}

	results, err := surrealdb.Query[[]models.ChatMessage](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	if results == nil || len(*results) == 0 {
		return nil, nil
	}

	msgs := (*results)[0].Result
	// Reverse to oldest-first for prompt assembly and display
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
