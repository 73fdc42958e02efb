package cache

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"airport-service/internal/models"
)

// Namespaces lists, per mutated entity kind, the view namespaces whose
// entries may embed data of that kind. Kinds missing here are never cached.
var Namespaces = map[models.Kind][]string{
	models.KindAirport:      {"airport", "route", "flight", "ticket"},
	models.KindAirplaneType: {"airplane_type", "flight", "airplane"},
	models.KindAirplane:     {"airplane", "flight"},
	models.KindCrew:         {"crew", "flight"},
	models.KindRoute:        {"route", "flight", "ticket"},
	models.KindFlight:       {"flight", "crew"},
	models.KindOrder:        {"order", "ticket"},
	models.KindTicket:       {"ticket", "flight", "order"},
}

var purgedKeys = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "airport_cache_purged_keys_total",
		Help: "Cached views removed by mutation fan-out",
	},
	[]string{"namespace"},
)

// Pattern matches every key stored under namespace ns.
func Pattern(ns string) string {
	return "*" + ns + "_view*"
}

// Key builds "<ns>_view:<scope>:<digest>" where digest identifies the
// request (resource id, filters, paging).
func Key(ns, scope string, parts ...any) string {
	h := fnv.New64a()
	for _, p := range parts {
		fmt.Fprintf(h, "%v|", p)
	}
	return fmt.Sprintf("%s_view:%s:%x", ns, scope, h.Sum64())
}

const PublicScope = "public"

func UserScope(id fmt.Stringer) string {
	return "user:" + id.String()
}

type Invalidator struct {
	store Store
}

func NewInvalidator(store Store) *Invalidator {
	return &Invalidator{store: store}
}

// Invalidate purges every namespace mapped to kind. Every namespace is
// attempted even when one fails; the failures are joined into one error.
func (i *Invalidator) Invalidate(ctx context.Context, kind models.Kind) error {
	var failed []string
	for _, ns := range Namespaces[kind] {
		n, err := i.store.DeletePattern(ctx, Pattern(ns))
		if err != nil {
			logrus.WithError(err).WithField("namespace", ns).Error("cache purge failed")
			failed = append(failed, ns)
			continue
		}
		purgedKeys.WithLabelValues(ns).Add(float64(n))
		logrus.WithFields(logrus.Fields{"kind": kind, "namespace": ns, "keys": n}).Debug("cache purged")
	}
	if len(failed) > 0 {
		return fmt.Errorf("purge %s namespaces: %s", kind, strings.Join(failed, ", "))
	}
	return nil
}
