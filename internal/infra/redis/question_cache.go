package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"quiz-tournament-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionFetcher sources a question batch's content (the trivia adapter).
type QuestionFetcher interface {
	FetchQuestions(ctx context.Context, category string, difficulty domain.Difficulty, amount int) []domain.Question
}

// QuestionCache stores each tournament's batch as a JSON value in Redis:
// SET tournament:{id}:questions {batch JSON}. The whole batch round-trips,
// prompts and correct answers included, so every process instance serves the
// identical set. TTL 0 means no expiry (explicit invalidation only).
type QuestionCache struct {
	client  *redis.Client
	fetcher QuestionFetcher
	ttl     time.Duration
	sf      singleflight.Group
}

func NewQuestionCache(client *redis.Client, fetcher QuestionFetcher, ttl time.Duration) *QuestionCache {
	return &QuestionCache{client: client, fetcher: fetcher, ttl: ttl}
}

func (c *QuestionCache) Batch(ctx context.Context, tournament domain.Tournament, count int) (domain.QuestionBatch, error) {
	key := batchKey(tournament.ID)

	if batch, ok, err := c.load(ctx, key); err != nil {
		return domain.QuestionBatch{}, err
	} else if ok {
		return batch, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if batch, ok, err := c.load(ctx, key); err != nil {
			return domain.QuestionBatch{}, err
		} else if ok {
			return batch, nil
		}

		batch := domain.QuestionBatch{
			TournamentID: tournament.ID,
			Questions:    c.fetcher.FetchQuestions(ctx, tournament.Category, tournament.Difficulty, count),
		}

		raw, err := json.Marshal(batch)
		if err != nil {
			return domain.QuestionBatch{}, fmt.Errorf("marshal batch: %w", err)
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return domain.QuestionBatch{}, fmt.Errorf("store batch: %w", err)
		}
		return batch, nil
	})
	if err != nil {
		return domain.QuestionBatch{}, err
	}
	return result.(domain.QuestionBatch), nil
}

func (c *QuestionCache) Invalidate(ctx context.Context, tournamentID int64) error {
	return c.client.Del(ctx, batchKey(tournamentID)).Err()
}

func (c *QuestionCache) InvalidateAll(ctx context.Context) error {
	keys, err := c.client.Keys(ctx, "tournament:*:questions").Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *QuestionCache) Size(ctx context.Context) (int, error) {
	keys, err := c.client.Keys(ctx, "tournament:*:questions").Result()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (c *QuestionCache) load(ctx context.Context, key string) (domain.QuestionBatch, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return domain.QuestionBatch{}, false, nil
	}
	if err != nil {
		return domain.QuestionBatch{}, false, fmt.Errorf("read batch: %w", err)
	}
	var batch domain.QuestionBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return domain.QuestionBatch{}, false, fmt.Errorf("unmarshal batch: %w", err)
	}
	return batch, true, nil
}

func batchKey(tournamentID int64) string {
	return "tournament:" + strconv.FormatInt(tournamentID, 10) + ":questions"
}
