package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"airport-service/internal/models"
	"airport-service/internal/repository/cache"
	"airport-service/internal/service"
)

type recordingPublisher struct {
	keys     []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.payloads = append(p.payloads, payload)
	return nil
}

func TestParseKinds(t *testing.T) {
	all, err := parseKinds(nil)
	require.NoError(t, err)
	require.Len(t, all, len(cache.Namespaces))

	got, err := parseKinds([]string{"flight", "ticket"})
	require.NoError(t, err)
	require.Equal(t, []models.Kind{models.KindFlight, models.KindTicket}, got)

	_, err = parseKinds([]string{"user"})
	require.Error(t, err)
	_, err = parseKinds([]string{"plane"})
	require.Error(t, err)
}

func TestAnnounce(t *testing.T) {
	at := time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)
	pub := &recordingPublisher{}

	require.NoError(t, announce(context.Background(), pub, []models.Kind{models.KindRoute, models.KindCrew}, at))
	require.Equal(t, []string{"route", "crew"}, pub.keys)

	var ev service.MutationEvent
	require.NoError(t, json.Unmarshal(pub.payloads[0], &ev))
	require.Equal(t, models.KindRoute, ev.Kind)
	require.Equal(t, "manage", ev.Origin)
	require.True(t, at.Equal(ev.At))
}

func TestAnnounce_PublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	err := announce(context.Background(), pub, []models.Kind{models.KindOrder}, time.Now())
	require.ErrorContains(t, err, "broker down")
}
