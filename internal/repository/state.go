package repository

import (
	"context"

	"github.com/eslsoft/wordladder/internal/entity"
)

// ListWordsQuery holds parameters for listing words.
type ListWordsQuery struct {
	Pagination
	FilterOrder
}

// StateRepository persists the whole trainer state. Load returns nil and no
// error when nothing has been saved yet.
type StateRepository interface {
	Load(ctx context.Context) (*entity.State, error)
	Save(ctx context.Context, state *entity.State) error
}
