package store

import (
	"context"

	"github.com/seantiz/jsengine/internal/model"
)

// Store defines the persistence operations for evaluations.
type Store interface {
	CreateEvaluation(ctx context.Context, e *model.Evaluation) error
	GetEvaluation(ctx context.Context, id string) (*model.Evaluation, error)
	ListEvaluations(ctx context.Context, limit, offset int) ([]*model.Evaluation, int, error)
	GetEvaluationStats(ctx context.Context) (*model.EvaluationStats, error)
	Close() error
}
