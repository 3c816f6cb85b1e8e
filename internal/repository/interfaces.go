package repository

import (
	"context"
)

// Well-known preference keys.
const (
	PrefSelectedDataset = "selected_dataset_id"
)

// PreferenceRepository handles small key/value settings that outlive a
// session.
type PreferenceRepository interface {
	// Get returns the stored value; ok is false when key is unset.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
