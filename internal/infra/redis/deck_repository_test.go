package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"live-quiz-service/internal/domain"
	"live-quiz-service/internal/infra/memory"
)

func TestDeckRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		DeckLoader: memory.NewStaticDeckLoader(map[string]domain.Deck{
			"deck-1": sampleDeck(),
		}),
	}
	repo := NewDeckRepository(newClient(mr), loader, time.Minute)

	deck, err := repo.GetDeck(context.Background(), "deck-1")
	if err != nil {
		t.Fatalf("get deck: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:deck:deck-1") {
		t.Fatalf("expected deck cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	again, _ := repo.GetDeck(context.Background(), "deck-1")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if again.Name != deck.Name || len(again.Questions) != len(deck.Questions) {
		t.Fatalf("cached deck differs: %+v vs %+v", again, deck)
	}
	if again.Questions[0].CorrectAnswer != 1 {
		t.Fatalf("expected correct answer preserved, got %d", again.Questions[0].CorrectAnswer)
	}
}

type countingLoader struct {
	memory.DeckLoader
	calls int
}

func (l *countingLoader) LoadDeck(ctx context.Context, deckID string) (domain.Deck, error) {
	l.calls++
	return l.DeckLoader.LoadDeck(ctx, deckID)
}

func sampleDeck() domain.Deck {
	return domain.Deck{
		ID:   "deck-1",
		Name: "Arithmetic",
		Questions: []domain.Question{
			{ID: "q1", Text: "What is 2 + 2?", Options: []string{"3", "4", "5"}, CorrectAnswer: 1, TimeLimit: 20},
		},
	}
}
