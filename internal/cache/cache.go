// Package cache memoizes answered application questions for a session.
package cache

import (
	"context"
	"fmt"

	"github.com/jonathan/apply-agent/internal/types"
	"go.uber.org/zap"
)

// QuestionStore is the persistence the cache writes through to
type QuestionStore interface {
	LoadQuestions(ctx context.Context) ([]types.QuestionAnswer, error)
	InsertQuestion(ctx context.Context, qa types.QuestionAnswer) (bool, error)
}

// AnswerCache holds one answer per (normalized question, field type).
// It is not safe for concurrent use.
type AnswerCache struct {
	store   QuestionStore
	log     *zap.Logger
	entries []types.QuestionAnswer
	index   map[types.QuestionKey]int
}

// New creates an empty cache over store
func New(store QuestionStore, log *zap.Logger) *AnswerCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnswerCache{
		store: store,
		log:   log,
		index: make(map[types.QuestionKey]int),
	}
}

// Load replaces the cache contents with every stored answer.
// Rows that normalize to an existing key keep the first answer.
func (c *AnswerCache) Load(ctx context.Context) error {
	rows, err := c.store.LoadQuestions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load answer cache: %w", err)
	}

	c.entries = c.entries[:0]
	c.index = make(map[types.QuestionKey]int, len(rows))
	for _, qa := range rows {
		c.add(qa)
	}

	c.log.Info("Loaded answer cache", zap.Int("entries", len(c.entries)))
	return nil
}

// Get returns the cached answer for question under fieldType
func (c *AnswerCache) Get(question string, fieldType types.FieldType) (string, bool) {
	i, ok := c.index[types.QuestionKey{Question: types.NormalizeQuestion(question), Type: fieldType}]
	if !ok {
		return "", false
	}
	return c.entries[i].Answer, true
}

// Put records qa unless its key is already cached. The store is written first;
// memory is updated only when that succeeds, so a failed Put can be retried.
func (c *AnswerCache) Put(ctx context.Context, qa types.QuestionAnswer) error {
	qa.Question = types.NormalizeQuestion(qa.Question)
	if _, ok := c.index[qa.Key()]; ok {
		return nil
	}

	if _, err := c.store.InsertQuestion(ctx, qa); err != nil {
		return fmt.Errorf("failed to persist answer: %w", err)
	}

	c.add(qa)
	c.log.Debug("Cached answer",
		zap.String("type", string(qa.Type)),
		zap.String("question", qa.Question))
	return nil
}

// Entries returns a copy of the cached answers in insertion order
func (c *AnswerCache) Entries() []types.QuestionAnswer {
	out := make([]types.QuestionAnswer, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of cached answers
func (c *AnswerCache) Len() int {
	return len(c.entries)
}

func (c *AnswerCache) add(qa types.QuestionAnswer) {
	qa.Question = types.NormalizeQuestion(qa.Question)
	key := qa.Key()
	if _, ok := c.index[key]; ok {
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, qa)
}
