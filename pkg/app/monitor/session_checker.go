package monitor

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/platform"
	"github.com/NeuralTrust/TrustGuard/pkg/domain/security"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

var requiredUserFields = []string{"id", "username", "role"}

type artifact struct {
	value   string
	present bool
}

type sessionSnapshot struct {
	authToken artifact
	token     artifact
	user      artifact
}

// sessionChecker compares the redundant session artifacts. Every check runs
// against one snapshot so that remediation triggered by an earlier finding
// cannot change what later checks see.
type sessionChecker struct {
	logger  *logrus.Logger
	cfg     Config
	storage platform.Storage
}

func newSessionChecker(logger *logrus.Logger, cfg Config, storage platform.Storage) *sessionChecker {
	return &sessionChecker{logger: logger, cfg: cfg, storage: storage}
}

func (c *sessionChecker) snapshot(ctx context.Context) (sessionSnapshot, error) {
	var snap sessionSnapshot
	for _, target := range []struct {
		key string
		dst *artifact
	}{
		{c.cfg.AuthTokenKey, &snap.authToken},
		{c.cfg.TokenKey, &snap.token},
		{c.cfg.UserKey, &snap.user},
	} {
		value, ok, err := c.storage.Get(ctx, target.key)
		if err != nil {
			return sessionSnapshot{}, fmt.Errorf("failed to read session artifact %s: %w", target.key, err)
		}
		*target.dst = artifact{value: value, present: ok}
	}
	return snap, nil
}

func (c *sessionChecker) check(ctx context.Context) ([]security.PartialEvent, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return evaluateSession(snap), nil
}

func evaluateSession(snap sessionSnapshot) []security.PartialEvent {
	var findings []security.PartialEvent

	if snap.authToken.present && snap.token.present && snap.authToken.value != snap.token.value {
		findings = append(findings, security.PartialEvent{
			Severity: security.Critical,
			Details:  security.SessionTamperDetails{Reason: security.ReasonTokenMismatch},
		})
	}

	if !snap.user.present {
		return findings
	}

	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.Parse(snap.user.value)
	if err != nil {
		return append(findings, security.PartialEvent{
			Severity: security.Critical,
			Details: security.SessionTamperDetails{
				Reason:     security.ReasonCorruptedUserData,
				ParseError: err.Error(),
			},
		})
	}

	var missing []string
	for _, field := range requiredUserFields {
		if isBlank(v.Get(field)) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		findings = append(findings, security.PartialEvent{
			Severity: security.High,
			Details: security.SessionTamperDetails{
				Reason:        security.ReasonInvalidUserData,
				MissingFields: missing,
			},
		})
	}
	return findings
}

// isBlank treats absent, null and empty string fields as missing.
func isBlank(v *fastjson.Value) bool {
	if v == nil {
		return true
	}
	switch v.Type() {
	case fastjson.TypeNull:
		return true
	case fastjson.TypeString:
		return len(v.GetStringBytes()) == 0
	default:
		return false
	}
}
