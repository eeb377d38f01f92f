package tutor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mkellaway/papertrade/internal/common"
	"github.com/mkellaway/papertrade/internal/interfaces"
	"github.com/mkellaway/papertrade/internal/models"
)

var now = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

type fakeAI struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeAI) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeLearnStore struct {
	interfaces.LearnStore
	chat []models.ChatMessage
	err  error
}

func (f *fakeLearnStore) AppendChat(ctx context.Context, msg *models.ChatMessage) error {
	if f.err != nil {
		return f.err
	}
	f.chat = append(f.chat, *msg)
	return nil
}

func (f *fakeLearnStore) ListChat(ctx context.Context, userID string, limit int) ([]models.ChatMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.chat) {
		return f.chat[len(f.chat)-limit:], nil
	}
	return f.chat, nil
}

type fakeStorage struct {
	learn *fakeLearnStore
}

func (f *fakeStorage) InternalStore() interfaces.InternalStore { return nil }
func (f *fakeStorage) LedgerStore() interfaces.LedgerStore     { return nil }
func (f *fakeStorage) MarketStore() interfaces.MarketStore     { return nil }
func (f *fakeStorage) FundStore() interfaces.FundStore         { return nil }
func (f *fakeStorage) LearnStore() interfaces.LearnStore       { return f.learn }
func (f *fakeStorage) Ping(ctx context.Context) error          { return nil }
func (f *fakeStorage) Close() error                            { return nil }

func newTestService(ai interfaces.AIClient) (*Service, *fakeLearnStore) {
	store := &fakeLearnStore{}
	svc := NewService(ai, &fakeStorage{learn: store}, common.NewSilentLogger())
	svc.now = func() time.Time { return now }
	return svc, store
}

func TestChat_PersistsBothTurns(t *testing.T) {
	ai := &fakeAI{reply: "A stock is a share of ownership in a company."}
	svc, store := newTestService(ai)

	reply, err := svc.Chat(context.Background(), "u1", "What is a stock?")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply.Role != models.ChatRoleTutor {
		t.Errorf("Role = %q, want tutor", reply.Role)
	}
	if reply.Content != ai.reply {
		t.Errorf("Content = %q, want model reply", reply.Content)
	}
	if len(store.chat) != 2 {
		t.Fatalf("persisted messages = %d, want 2", len(store.chat))
	}
	if store.chat[0].Role != models.ChatRoleUser || store.chat[1].Role != models.ChatRoleTutor {
		t.Errorf("roles = %q/%q, want user/tutor", store.chat[0].Role, store.chat[1].Role)
	}
}

func TestChat_PromptCarriesHistory(t *testing.T) {
	ai := &fakeAI{reply: "ok"}
	svc, store := newTestService(ai)
	store.chat = []models.ChatMessage{
		{UserID: "u1", Role: models.ChatRoleUser, Content: "What is a fund?"},
		{UserID: "u1", Role: models.ChatRoleTutor, Content: "A pooled investment."},
	}

	if _, err := svc.Chat(context.Background(), "u1", "And what are its fees?"); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if !strings.Contains(ai.prompt, "What is a fund?") {
		t.Error("prompt missing prior user turn")
	}
	if !strings.Contains(ai.prompt, "And what are its fees?") {
		t.Error("prompt missing current message")
	}
}

func TestChat_ModelFailure_DegradesToApology(t *testing.T) {
	ai := &fakeAI{err: errors.New("quota exceeded")}
	svc, store := newTestService(ai)

	reply, err := svc.Chat(context.Background(), "u1", "hello")
	if err != nil {
		t.Fatalf("Chat() error = %v, want degraded reply", err)
	}
	if reply.Content == "" {
		t.Error("degraded reply must not be empty")
	}
	if len(store.chat) != 2 {
		t.Errorf("persisted messages = %d, want 2 even on model failure", len(store.chat))
	}
}

func TestChat_NoAIConfigured(t *testing.T) {
	svc, _ := newTestService(nil)

	reply, err := svc.Chat(context.Background(), "u1", "hello")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply.Content == "" {
		t.Error("offline reply must not be empty")
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	svc, _ := newTestService(&fakeAI{reply: "ok"})

	if _, err := svc.Chat(context.Background(), "u1", "   "); err == nil {
		t.Error("expected error for blank message")
	}
}

func TestChat_NoUser(t *testing.T) {
	svc, _ := newTestService(&fakeAI{reply: "ok"})

	if _, err := svc.Chat(context.Background(), "", "hello"); !errors.Is(err, common.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestHistory(t *testing.T) {
	svc, store := newTestService(&fakeAI{reply: "ok"})
	for i := 0; i < 5; i++ {
		store.chat = append(store.chat, models.ChatMessage{UserID: "u1", Role: models.ChatRoleUser})
	}

	msgs, err := svc.History(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(msgs) != 3 {
		t.Errorf("messages = %d, want 3", len(msgs))
	}

	if _, err := svc.History(context.Background(), "", 3); !errors.Is(err, common.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}
