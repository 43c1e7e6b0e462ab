package monitor

import (
	"context"
	"sort"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/platform"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/sirupsen/logrus"
)

// incidentResponder purges credentials and sends the document to the login
// page. It works on the undecorated storage so the purge is not recorded as
// storage access. Failures are logged and never retried.
type incidentResponder struct {
	logger    *logrus.Logger
	cfg       Config
	storage   platform.Storage
	navigator platform.Navigator
	markers   []string
}

func newIncidentResponder(
	logger *logrus.Logger,
	cfg Config,
	storage platform.Storage,
	navigator platform.Navigator,
) *incidentResponder {
	return &incidentResponder{
		logger:    logger,
		cfg:       cfg,
		storage:   storage,
		navigator: navigator,
		markers:   normalizeMarkers(cfg.SensitiveMarkers),
	}
}

func (r *incidentResponder) respond(ctx context.Context, evt security.Event, blockedAttempts int64) {
	log := r.logger.WithFields(logrus.Fields{
		"eventID":         evt.ID().String(),
		"type":            evt.Type(),
		"kind":            evt.Details().Kind(),
		"blockedAttempts": blockedAttempts,
	})
	log.Warn("blocking access")

	for _, key := range r.purgeKeys(ctx) {
		if err := r.storage.Remove(ctx, key); err != nil {
			log.WithError(err).WithField("key", key).Error("failed to purge session artifact")
		}
	}

	if r.navigator == nil {
		log.Error("cannot redirect to login, navigator is unavailable")
		return
	}
	if err := r.navigator.Navigate(r.cfg.loginTarget()); err != nil {
		log.WithError(err).Error("failed to redirect to login")
	}
}

// purgeKeys is the configured artifact keys plus every enumerable key that
// matches a sensitive marker.
func (r *incidentResponder) purgeKeys(ctx context.Context) []string {
	seen := make(map[string]struct{})
	var keys []string
	add := func(key string) {
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	for _, key := range r.cfg.artifactKeys() {
		add(key)
	}

	lister, ok := r.storage.(platform.KeyLister)
	if !ok {
		return keys
	}
	all, err := lister.Keys(ctx)
	if err != nil {
		r.logger.WithError(err).Warn("failed to enumerate storage keys for purge")
		return keys
	}
	sort.Strings(all)
	for _, key := range all {
		if isSensitiveKey(key, r.markers) {
			add(key)
		}
	}
	return keys
}
