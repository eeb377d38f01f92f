// Package tutor is the AI investment tutor
package tutor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
)

// historyWindow is how many prior turns are folded into the prompt.
const historyWindow = 10

const systemPrompt = `You are a friendly investment tutor inside a paper-trading simulator for beginners.
Explain concepts in plain language, keep answers short, and never give real financial advice.
All money in the simulator is virtual. If asked to pick specific real investments, explain how to
evaluate them instead of recommending them.`

// Service implements TutorService
type Service struct {
	ai      interfaces.AIClient
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new tutor service.
// ai may be nil when no API key is configured; Chat then returns a
// canned unavailability reply rather than failing.
func NewService(ai interfaces.AIClient, storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		ai:      ai,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

var _ interfaces.TutorService = (*Service)(nil)

// Chat sends the user's message to the tutor, persists both turns, and
// returns the reply.
func (s *Service) Chat(ctx context.Context, userID, message string) (*models.ChatMessage, error) {
	if userID == "" {
		return nil, common.ErrUnavailable
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("message must not be empty")
	}

	userMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      models.ChatRoleUser,
		Content:   message,
		CreatedAt: s.now(),
	}
	if err := s.storage.LearnStore().AppendChat(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persist chat message: %w", err)
	}

	reply := s.generateReply(ctx, userID, message)

	tutorMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      models.ChatRoleTutor,
		Content:   reply,
		CreatedAt: s.now(),
	}
	if err := s.storage.LearnStore().AppendChat(ctx, tutorMsg); err != nil {
		return nil, fmt.Errorf("persist tutor reply: %w", err)
	}

	return tutorMsg, nil
}

// generateReply builds the prompt from recent history and calls the
// model. Model failures degrade to an apology so the conversation
// stays usable.
func (s *Service) generateReply(ctx context.Context, userID, message string) string {
	if s.ai == nil {
		return "The tutor is offline right now. Try the courses section in the meantime."
	}

	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\n")

	history, err := s.storage.LearnStore().ListChat(ctx, userID, historyWindow)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Chat history unavailable, prompting without it")
	} else {
		for _, msg := range history {
			sb.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
		}
	}
	sb.WriteString(fmt.Sprintf("user: %s\ntutor:", message))

	reply, err := s.ai.GenerateText(ctx, sb.String())
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Tutor generation failed")
		return "Sorry, I could not answer that just now. Please try again in a moment."
	}
	return strings.TrimSpace(reply)
}

// History returns the user's recent conversation, oldest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	if userID == "" {
		return nil, common.ErrUnavailable
	}
	if limit <= 0 {
		limit = 50
	}
	return s.storage.LearnStore().ListChat(ctx, userID, limit)
}
