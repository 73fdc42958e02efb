package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"airport-service/internal/delivery/kafka"
	"airport-service/internal/models"
	"airport-service/internal/repository/cache"
	"airport-service/internal/service"
)

// purgeCacheCmd drops cached views after data was changed behind the
// service's back (manual SQL, restores). The shared store is purged
// directly; replicas with a memory cache are reached through the
// mutation topic.
func purgeCacheCmd() *cobra.Command {
	var kinds []string

	cmd := &cobra.Command{
		Use:   "purge-cache",
		Short: "Purge cached views for the given entity kinds",
		Example: `  manage purge-cache --kind flight --kind ticket
  manage purge-cache            # every kind`,
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := parseKinds(kinds)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if cfg.CacheBackend == cache.BackendRedis {
				store, closeStore, err := cache.Open(ctx, cfg.CacheBackend, cfg.RedisURL, cfg.CacheTTL)
				if err != nil {
					return err
				}
				defer func() { _ = closeStore() }()
				inval := cache.NewInvalidator(store)
				for _, k := range selected {
					if err := inval.Invalidate(ctx, k); err != nil {
						return fmt.Errorf("purge %s: %w", k, err)
					}
				}
				logrus.WithField("kinds", selected).Print("redis views purged")
			}

			if !cfg.EventsEnabled() {
				if cfg.CacheBackend == cache.BackendMemory {
					logrus.Warn("KAFKA_BROKERS empty: in-process caches of running replicas were not reached")
				}
				return nil
			}
			pub := kafka.NewPublisher(cfg.KafkaBrokersSlice(), cfg.KafkaTopic)
			defer func() {
				if perr := pub.Close(); perr != nil {
					logrus.Errorf("publisher close: %v", perr)
				}
			}()
			return announce(ctx, pub, selected, time.Now().UTC())
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "entity kind to purge (repeatable, default all)")
	return cmd
}

func parseKinds(raw []string) ([]models.Kind, error) {
	if len(raw) == 0 {
		out := make([]models.Kind, 0, len(cache.Namespaces))
		for k := range cache.Namespaces {
			out = append(out, k)
		}
		return out, nil
	}
	out := make([]models.Kind, 0, len(raw))
	for _, r := range raw {
		k := models.Kind(r)
		if _, ok := cache.Namespaces[k]; !ok {
			return nil, fmt.Errorf("unknown kind %q", r)
		}
		out = append(out, k)
	}
	return out, nil
}

// announce publishes one mutation event per kind. The origin never matches
// a replica, so every replica purges.
func announce(ctx context.Context, pub service.EventPublisher, kinds []models.Kind, at time.Time) error {
	for _, k := range kinds {
		payload, err := json.Marshal(service.MutationEvent{
			Kind:   k,
			ID:     uuid.Nil,
			Action: service.ActionUpdated,
			Origin: "manage",
			At:     at,
		})
		if err != nil {
			return err
		}
		if err := pub.Publish(ctx, string(k), payload); err != nil {
			return fmt.Errorf("publish %s: %w", k, err)
		}
	}
	logrus.WithField("kinds", kinds).Print("purge announced to replicas")
	return nil
}
