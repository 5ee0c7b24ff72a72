package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"live-quiz-service/internal/domain"
)

// DeckLoader loads question decks stored as JSONB.
type DeckLoader struct {
	pool *pgxpool.Pool
}

func NewDeckLoader(pool *pgxpool.Pool) *DeckLoader {
	return &DeckLoader{pool: pool}
}

func (l *DeckLoader) LoadDeck(ctx context.Context, deckID string) (domain.Deck, error) {
	var (
		name string
		raw  []byte
	)
	err := l.pool.QueryRow(ctx, `SELECT name, questions FROM decks WHERE id=$1`, deckID).Scan(&name, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Deck{}, domain.ErrDeckNotFound
	}
	if err != nil {
		return domain.Deck{}, fmt.Errorf("load deck: %w", err)
	}
	deck := domain.Deck{ID: deckID, Name: name}
	if err := json.Unmarshal(raw, &deck.Questions); err != nil {
		return domain.Deck{}, fmt.Errorf("unmarshal deck: %w", err)
	}
	return deck, nil
}

// SaveDeck inserts or replaces a deck.
func (l *DeckLoader) SaveDeck(ctx context.Context, deck domain.Deck) error {
	raw, err := json.Marshal(deck.Questions)
	if err != nil {
		return fmt.Errorf("marshal deck: %w", err)
	}
	_, err = l.pool.Exec(ctx, `INSERT INTO decks (id, name, questions) VALUES ($1, $2, $3::jsonb)
ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, questions=EXCLUDED.questions, updated_at=now()`,
		deck.ID, deck.Name, string(raw))
	if err != nil {
		return fmt.Errorf("save deck: %w", err)
	}
	return nil
}
