package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"

	"medboard-api/domain"
)

// All items live in a single partition; the board is one logical collection.
const boardPartition = "board"

// Tables is an Azure Table storage backend with one entity per item.
type Tables struct {
	table *aztables.Client
}

// NewTables creates a Tables store from the given connection string.
func NewTables(connStr, tableName string) (*Tables, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	return &Tables{table: svc.NewClient(tableName)}, nil
}

type itemEntity struct {
	aztables.Entity
	Type      string  `json:"Type"`
	X         float64 `json:"X"`
	Y         float64 `json:"Y"`
	Width     float64 `json:"Width"`
	Height    float64 `json:"Height"`
	TypeData  string  `json:"TypeData"`
	CreatedAt int64   `json:"CreatedAt"`
	UpdatedAt int64   `json:"UpdatedAt"`
}

// LoadAll retrieves every item on the board.
func (t *Tables) LoadAll(ctx context.Context) ([]domain.BoardItem, error) {
	filter := "PartitionKey eq '" + boardPartition + "'"
	pager := t.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	items := []domain.BoardItem{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			var ent itemEntity
			if err := json.Unmarshal(e, &ent); err != nil {
				return nil, err
			}
			items = append(items, domain.BoardItem{
				ID:        ent.RowKey,
				Type:      domain.ItemType(ent.Type),
				X:         ent.X,
				Y:         ent.Y,
				Width:     ent.Width,
				Height:    ent.Height,
				TypeData:  []byte(ent.TypeData),
				CreatedAt: ent.CreatedAt,
				UpdatedAt: ent.UpdatedAt,
			})
		}
	}
	return items, nil
}

// SaveAll upserts every item in the collection and deletes rows that are no
// longer part of it.
func (t *Tables) SaveAll(ctx context.Context, items []domain.BoardItem) error {
	current, err := t.LoadAll(ctx)
	if err != nil {
		return err
	}
	keep := make(map[string]struct{}, len(items))
	for _, it := range items {
		keep[it.ID] = struct{}{}
		ent := itemEntity{
			Entity: aztables.Entity{
				PartitionKey: boardPartition,
				RowKey:       it.ID,
			},
			Type:      string(it.Type),
			X:         it.X,
			Y:         it.Y,
			Width:     it.Width,
			Height:    it.Height,
			TypeData:  string(it.TypeData),
			CreatedAt: it.CreatedAt,
			UpdatedAt: it.UpdatedAt,
		}
		data, err := json.Marshal(ent)
		if err != nil {
			return err
		}
		if _, err := t.table.UpsertEntity(ctx, data, nil); err != nil {
			return err
		}
	}
	for _, it := range current {
		if _, ok := keep[it.ID]; ok {
			continue
		}
		if _, err := t.table.DeleteEntity(ctx, boardPartition, it.ID, nil); err != nil {
			return err
		}
	}
	return nil
}
