package models

import "time"

// Course is one unit of the investment-literacy curriculum.
type Course struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Level   string   `json:"level"` // "beginner", "intermediate", "advanced"
	Lessons []Lesson `json:"lessons"`
}

// Lesson is a single section within a course.
type Lesson struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

// CourseProgress tracks which lessons of a course a user has completed.
type CourseProgress struct {
	UserID           string    `json:"user_id"`
	CourseID         string    `json:"course_id"`
	CompletedLessons []string  `json:"completed_lessons"`
	PercentComplete  float64   `json:"percent_complete"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Chat message roles for the tutor conversation history.
const (
	ChatRoleUser  = "user"
	ChatRoleTutor = "tutor"
)

// ChatMessage is one turn of a user's tutor conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
