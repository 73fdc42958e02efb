package cache

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// ViewCache keeps JSON-encoded projections. Store failures degrade to a
// miss and are only logged.
type ViewCache struct {
	store Store
}

func NewViewCache(store Store) *ViewCache {
	return &ViewCache{store: store}
}

// Load decodes the entry at key into dst and reports a hit.
func (v *ViewCache) Load(ctx context.Context, key string, dst any) bool {
	data, ok, err := v.store.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache entry undecodable")
		return false
	}
	return true
}

func (v *ViewCache) Put(ctx context.Context, key string, view any) {
	data, err := json.Marshal(view)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache entry unencodable")
		return
	}
	if err := v.store.Set(ctx, key, data); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}
