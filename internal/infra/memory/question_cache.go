package memory

import (
	"context"
	"strconv"
	"sync"

	"quiz-tournament-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionFetcher sources a question batch's content (the trivia adapter).
type QuestionFetcher interface {
	FetchQuestions(ctx context.Context, category string, difficulty domain.Difficulty, amount int) []domain.Question
}

// QuestionCache memoizes one batch per tournament in process memory.
// There is no expiry: the batch lives until explicit invalidation, which is
// what keeps every participant on an identical question set.
type QuestionCache struct {
	fetcher QuestionFetcher
	sf      singleflight.Group

	mu      sync.RWMutex
	batches map[int64]domain.QuestionBatch
}

func NewQuestionCache(fetcher QuestionFetcher) *QuestionCache {
	return &QuestionCache{
		fetcher: fetcher,
		batches: make(map[int64]domain.QuestionBatch),
	}
}

func (c *QuestionCache) Batch(ctx context.Context, tournament domain.Tournament, count int) (domain.QuestionBatch, error) {
	c.mu.RLock()
	if batch, ok := c.batches[tournament.ID]; ok {
		c.mu.RUnlock()
		return batch, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(strconv.FormatInt(tournament.ID, 10), func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		c.mu.RLock()
		if batch, ok := c.batches[tournament.ID]; ok {
			c.mu.RUnlock()
			return batch, nil
		}
		c.mu.RUnlock()

		batch := domain.QuestionBatch{
			TournamentID: tournament.ID,
			Questions:    c.fetcher.FetchQuestions(ctx, tournament.Category, tournament.Difficulty, count),
		}

		c.mu.Lock()
		c.batches[tournament.ID] = batch
		c.mu.Unlock()
		return batch, nil
	})
	if err != nil {
		return domain.QuestionBatch{}, err
	}
	return result.(domain.QuestionBatch), nil
}

func (c *QuestionCache) Invalidate(_ context.Context, tournamentID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.batches, tournamentID)
	return nil
}

func (c *QuestionCache) InvalidateAll(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = make(map[int64]domain.QuestionBatch)
	return nil
}

func (c *QuestionCache) Size(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.batches), nil
}
