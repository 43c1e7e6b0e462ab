package monitor

import (
	"net/http"
	"strings"

	"github.com/NeuralTrust/TrustGuard/pkg/domain"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/platform"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/sirupsen/logrus"
)

var _ platform.Requester = (*guardedRequester)(nil)

// guardedRequester rejects state-changing requests issued from a document
// reached through a foreign referrer.
type guardedRequester struct {
	monitor *SecurityMonitor
	next    platform.Requester
}

func (g *guardedRequester) Do(req *http.Request) (*http.Response, error) {
	// malformed requests are left for the next requester to reject
	if req == nil || req.URL == nil || !g.monitor.isActive() || isSafeMethod(req.Method) {
		return g.next.Do(req)
	}

	nav := g.monitor.navigator
	referrer := nav.Referrer()
	origin := nav.Origin()
	if referrer == "" || strings.HasPrefix(referrer, origin) {
		return g.next.Do(req)
	}

	target := req.URL.String()
	g.monitor.logger.WithFields(logrus.Fields{
		"method":   req.Method,
		"url":      target,
		"referrer": referrer,
		"origin":   origin,
	}).Warn("outbound request rejected")

	g.monitor.record(req.Context(), security.PartialEvent{
		Severity: security.High,
		Details: security.CSRFAttemptDetails{
			Method:   req.Method,
			URL:      target,
			Referrer: referrer,
			Origin:   origin,
		},
	})
	return nil, domain.NewProtectionError(security.ReasonCSRFAttempt, req.Method, target, referrer)
}

func isSafeMethod(method string) bool {
	switch strings.ToUpper(method) {
	case "", http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
