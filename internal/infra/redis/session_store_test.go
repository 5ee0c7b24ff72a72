package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

func TestSessionStoreMirrorsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute, zerolog.Nop())

	session := app.NewSession("quiz-1", "Arithmetic")
	_ = session.AddQuestions(domain.Question{ID: "q1", Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: 1})
	_ = session.Join(domain.Participant{ID: "u1", Name: "Alice"})
	if err := store.Add(ctx, session); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !mr.Exists("quiz:session:quiz-1") {
		t.Fatalf("expected redis key to be set")
	}
	if got := mr.HGet("quiz:session:quiz-1", "status"); got != "WAITING" {
		t.Fatalf("expected WAITING status, got %q", got)
	}
	if mr.TTL("quiz:session:quiz-1") <= 0 {
		t.Fatalf("expected ttl on session key")
	}

	if _, err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := session.Answer("u1", 1, 0); err != nil {
		t.Fatalf("answer: %v", err)
	}
	store.Save(ctx, session)

	if got := mr.HGet("quiz:session:quiz-1", "status"); got != "IN_PROGRESS" {
		t.Fatalf("expected IN_PROGRESS status, got %q", got)
	}
	score, err := mr.ZScore("quiz:session:quiz-1:scores", "u1")
	if err != nil {
		t.Fatalf("zscore: %v", err)
	}
	if score != 1000 {
		t.Fatalf("expected mirrored score 1000, got %v", score)
	}

	if !store.Delete(ctx, "quiz-1") {
		t.Fatalf("expected delete to report removal")
	}
	if mr.Exists("quiz:session:quiz-1") || mr.Exists("quiz:session:quiz-1:scores") {
		t.Fatalf("expected redis keys to be removed")
	}
	if _, ok := store.Get("quiz-1"); ok {
		t.Fatalf("expected session removed locally")
	}
}

func TestSessionStoreKeepsLocalStateWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	client := newClient(mr)
	mr.Close()

	store := NewSessionStore(client, time.Minute, zerolog.Nop())
	if err := store.Add(context.Background(), app.NewSession("quiz-1", "Offline")); err != nil {
		t.Fatalf("add should not fail on mirror errors: %v", err)
	}
	if _, ok := store.Get("quiz-1"); !ok {
		t.Fatalf("expected session kept locally")
	}
}

func TestSessionStoreMirrorEndsWithFinalState(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewSessionStore(newClient(mr), time.Minute, zerolog.Nop())
	registry := app.NewRegistry(app.Config{
		Sessions:  store,
		Directory: nopDirectory{},
		Logger:    zerolog.Nop(),
		NewID:     func() string { return "quiz-1" },
	})

	const players = 16
	host := domain.Participant{ID: "host", Name: "Host"}
	if err := registry.Connect(host); err != nil {
		t.Fatalf("connect host: %v", err)
	}
	questions := []domain.Question{{ID: "q1", Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: 1}}
	if err := registry.Dispatch(ctx, host.ID, app.CreateGame{QuizName: "Race", Questions: questions}); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < players; i++ {
		p := domain.Participant{ID: fmt.Sprintf("p-%d", i), Name: "Player"}
		if err := registry.Connect(p); err != nil {
			t.Fatalf("connect %s: %v", p.ID, err)
		}
		if err := registry.Dispatch(ctx, p.ID, app.JoinGame{QuizID: "quiz-1"}); err != nil {
			t.Fatalf("join %s: %v", p.ID, err)
		}
	}
	if err := registry.Dispatch(ctx, host.ID, app.StartGame{QuizID: "quiz-1"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Answers race the final NEXT; late answers are rejected once the session ends.
	var wg sync.WaitGroup
	for i := 0; i < players; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = registry.Dispatch(ctx, id, app.AnswerQuestion{QuizID: "quiz-1", Answer: 1, TimeTaken: 0})
		}(fmt.Sprintf("p-%d", i))
		if i == players/2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := registry.Dispatch(ctx, host.ID, app.NextQuestion{QuizID: "quiz-1"}); err != nil {
					t.Errorf("next: %v", err)
				}
			}()
		}
	}
	wg.Wait()

	if got := mr.HGet("quiz:session:quiz-1", "status"); got != "ENDED" {
		t.Fatalf("expected mirrored status ENDED, got %q", got)
	}
	session, _ := registry.Session("quiz-1")
	for _, e := range session.Leaderboard() {
		score, err := mr.ZScore("quiz:session:quiz-1:scores", e.UserID)
		if err != nil {
			t.Fatalf("zscore %s: %v", e.UserID, err)
		}
		if int(score) != e.Score {
			t.Fatalf("expected mirrored score %d for %s, got %v", e.Score, e.UserID, score)
		}
	}
}

type nopDirectory struct{}

func (nopDirectory) Send(string, any)          {}
func (nopDirectory) AddToGroup(string, string) {}
func (nopDirectory) Broadcast(string, any)     {}
func (nopDirectory) Remove(string)             {}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
