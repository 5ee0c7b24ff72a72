package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/infra/memory"
)

// SessionStore keeps live sessions in process and mirrors their state into Redis.
// Notes:
//   - Sessions and their locks stay local; Redis is a read-only projection for
//     dashboards and operators, never read back by the registry.
//   - Each session is projected as a hash (quiz:session:{id}) plus a sorted set of
//     scores (quiz:session:{id}:scores), both expiring after ttl without updates.
//   - Mirror writes are best-effort; failures are logged and never fail the mutation.
type SessionStore struct {
	*memory.SessionStore
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewSessionStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *SessionStore {
	return &SessionStore{
		SessionStore: memory.NewSessionStore(),
		client:       client,
		ttl:          ttl,
		log:          logger.With().Str("component", "redis_session_store").Logger(),
	}
}

func (s *SessionStore) Add(ctx context.Context, session *app.Session) error {
	if err := s.SessionStore.Add(ctx, session); err != nil {
		return err
	}
	s.Save(ctx, session)
	return nil
}

func (s *SessionStore) Save(ctx context.Context, session *app.Session) {
	summary, scores := session.Projection()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, s.key(session.ID()),
		"name", summary.QuizName,
		"status", string(summary.Status),
		"players", len(summary.Players),
	)
	scoreKey := s.scoresKey(session.ID())
	pipe.Del(ctx, scoreKey)
	if len(scores) > 0 {
		members := make([]redis.Z, 0, len(scores))
		for _, e := range scores {
			members = append(members, redis.Z{Score: float64(e.Score), Member: e.UserID})
		}
		pipe.ZAdd(ctx, scoreKey, members...)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(session.ID()), s.ttl)
		pipe.Expire(ctx, scoreKey, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", session.ID()).Msg("mirror session")
	}
}

func (s *SessionStore) Delete(ctx context.Context, sessionID string) bool {
	if !s.SessionStore.Delete(ctx, sessionID) {
		return false
	}
	if err := s.client.Del(ctx, s.key(sessionID), s.scoresKey(sessionID)).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", sessionID).Msg("remove session mirror")
	}
	return true
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}

func (s *SessionStore) scoresKey(sessionID string) string {
	return "quiz:session:" + sessionID + ":scores"
}
