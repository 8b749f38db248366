package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/microlearn/microlearn-server/internal/logger"
	"github.com/microlearn/microlearn-server/internal/store"
)

// Generator produces content for a prompt. *LLMService is the production implementation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (text string, ok bool)
}

// LearningService ties the registry, the history store, the generator and the
// snapshotter together. Every mutating call persists a full snapshot before returning.
type LearningService struct {
	users     *store.UserRegistry
	history   *store.HistoryStore
	generator Generator
	snapshots store.Snapshotter
	log       *logger.Logger
	now       func() time.Time

	// saveMu serializes snapshot writes; the snapshot is captured under it so a
	// later save never writes older state than an earlier one.
	saveMu sync.Mutex
}

func NewLearningService(users *store.UserRegistry, history *store.HistoryStore, gen Generator, snaps store.Snapshotter, log *logger.Logger) *LearningService {
	return &LearningService{
		users:     users,
		history:   history,
		generator: gen,
		snapshots: snaps,
		log:       log.With("component", "learning"),
		now:       time.Now,
	}
}

// Restore loads the persisted snapshot. Any failure leaves the service empty.
func (s *LearningService) Restore(ctx context.Context) {
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		s.log.Warn("No usable previous data found, starting fresh", "error", err)
		return
	}
	s.users.Replace(snap.Users)
	s.history.Replace(snap.History)
	s.log.Info("Restored snapshot", "users", len(snap.Users), "histories", len(snap.History))
}

// Register creates a user and its empty history.
func (s *LearningService) Register(ctx context.Context, name, username, password string) (store.User, error) {
	user, err := s.users.Register(name, username, password)
	if err != nil {
		return store.User{}, err
	}
	s.history.Init(user.ID)
	s.persist(ctx)

	s.log.Info("User registered", "user_id", user.ID, "username", username)
	return user, nil
}

func (s *LearningService) Login(ctx context.Context, username, password string) (store.User, error) {
	return s.users.Authenticate(username, password)
}

// Chat generates content for topic in mode, records it in the user's history
// and counts the session. Unknown users are rejected before any generation call.
func (s *LearningService) Chat(ctx context.Context, userID, topic, mode string) (store.ChatMessage, error) {
	if _, err := s.users.Get(userID); err != nil {
		return store.ChatMessage{}, fmt.Errorf("chat for %s: %w", userID, err)
	}

	// A client disconnect must not turn into recorded fallback content; the
	// generator applies its own timeout.
	content, ok := s.generator.Generate(context.WithoutCancel(ctx), BuildPrompt(topic, mode))

	msg := store.ChatMessage{
		Role:      store.RoleAssistant,
		Content:   content,
		Mode:      mode,
		Topic:     topic,
		Timestamp: s.now().UnixMilli(),
		OK:        ok,
	}
	s.history.Append(userID, msg)

	if _, err := s.users.IncrementSessions(userID); err != nil {
		return store.ChatMessage{}, fmt.Errorf("chat for %s: %w", userID, err)
	}
	s.persist(ctx)

	if !ok {
		s.log.Warn("Recorded fallback content", "user_id", userID, "mode", mode)
	}
	return msg, nil
}

// History never fails: unknown users have an empty history.
func (s *LearningService) History(ctx context.Context, userID string) []store.ChatMessage {
	return s.history.List(userID)
}

func (s *LearningService) Progress(ctx context.Context, userID string) (store.User, error) {
	return s.users.Get(userID)
}

// SetProgress sets masteredCards to an absolute value.
func (s *LearningService) SetProgress(ctx context.Context, userID string, masteredCards int) (store.User, error) {
	user, err := s.users.SetMastered(userID, masteredCards)
	if err != nil {
		return store.User{}, fmt.Errorf("set progress for %s: %w", userID, err)
	}
	s.persist(ctx)
	return user, nil
}

// ReviewFlashcards adds cardsReviewed to masteredCards.
func (s *LearningService) ReviewFlashcards(ctx context.Context, userID string, cardsReviewed int) (store.User, error) {
	user, err := s.users.AddMastered(userID, cardsReviewed)
	if err != nil {
		return store.User{}, fmt.Errorf("flashcard review for %s: %w", userID, err)
	}
	s.persist(ctx)
	return user, nil
}

// persist writes a full snapshot. Failures are logged and otherwise ignored.
func (s *LearningService) persist(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	snap := store.Snapshot{
		Users:   s.users.All(),
		History: s.history.All(),
	}
	// The response does not depend on the write, so a cancelled request must not abort it.
	if err := s.snapshots.Save(context.WithoutCancel(ctx), snap); err != nil {
		s.log.Error("Failed to persist snapshot", "error", err)
	}
}
