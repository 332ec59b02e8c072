package library

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection keys understood by every gateway.
const (
	KeyAccounts = "accounts"
	KeyLoans    = "loans"
	KeyCatalog  = "catalog"
)

// Gateway stores whole serialized collections under string keys. It owns no
// domain logic; a missing key is reported with found == false, not an error.
type Gateway interface {
	Load(ctx context.Context, key string) (payload []byte, found bool, err error)
	Save(ctx context.Context, key string, payload []byte) error
	// SaveBatch writes every entry or none of them.
	SaveBatch(ctx context.Context, entries []Entry) error
	Close() error
}

// Entry is one keyed payload of a batch save.
type Entry struct {
	Key     string
	Payload []byte
}

func loadCollection[T any](ctx context.Context, gw Gateway, key string) ([]T, bool, error) {
	payload, found, err := gw.Load(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}
	var items []T
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, true, nil
}

func encodeCollection[T any](key string, items []T) (Entry, error) {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return Entry{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return Entry{Key: key, Payload: payload}, nil
}

func saveCollection[T any](ctx context.Context, gw Gateway, key string, items []T) error {
	e, err := encodeCollection(key, items)
	if err != nil {
		return err
	}
	if err := gw.Save(ctx, key, e.Payload); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
