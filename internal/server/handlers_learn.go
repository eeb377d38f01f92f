package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/mkellaway/papertrade/internal/common"
)

// handleCourseList handles GET /api/courses.
func (s *Server) handleCourseList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	courses, err := s.app.CourseService.ListCourses(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
		"count":   len(courses),
	})
}

// handleCourseGet handles GET /api/courses/{id}.
func (s *Server) handleCourseGet(w http.ResponseWriter, r *http.Request, courseID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	course, err := s.app.CourseService.GetCourse(r.Context(), courseID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, course)
}

// handleCourseProgress handles GET /api/courses/{id}/progress.
func (s *Server) handleCourseProgress(w http.ResponseWriter, r *http.Request, courseID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	progress, err := s.app.CourseService.GetProgress(r.Context(), common.ResolveUserID(r.Context()), courseID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, progress)
}

// handleCourseComplete handles POST /api/courses/{id}/complete — mark a
// lesson done. Idempotent per lesson.
func (s *Server) handleCourseComplete(w http.ResponseWriter, r *http.Request, courseID string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		LessonID string `json:"lesson_id"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.LessonID == "" {
		WriteError(w, http.StatusBadRequest, "lesson_id is required")
		return
	}

	progress, err := s.app.CourseService.CompleteLesson(r.Context(), common.ResolveUserID(r.Context()), courseID, req.LessonID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, progress)
}

// handleTutorChat handles POST /api/tutor/chat.
func (s *Server) handleTutorChat(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.app.TutorService.Chat(r.Context(), common.ResolveUserID(r.Context()), req.Message)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, reply)
}

// handleTutorHistory handles GET /api/tutor/history?limit=N.
func (s *Server) handleTutorHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	messages, err := s.app.TutorService.History(r.Context(), common.ResolveUserID(r.Context()), limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}
