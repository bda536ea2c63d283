package api

import (
	"context"

	"medboard-api/domain"
)

// Storage abstracts the item store for handlers. Writes follow a
// load-modify-save pattern; concurrent writers race with last-writer-wins
// semantics at the granularity of a full collection save.
type Storage interface {
	LoadAll(ctx context.Context) ([]domain.BoardItem, error)
	SaveAll(ctx context.Context, items []domain.BoardItem) error
}

// Broadcaster fans typed events out to every connected stream viewer.
type Broadcaster interface {
	Broadcast(event string, payload any)
}
