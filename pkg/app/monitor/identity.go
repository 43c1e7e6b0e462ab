package monitor

import (
	"context"

	"github.com/NeuralTrust/TrustGuard/pkg/domain/platform"
	"github.com/NeuralTrust/TrustGuard/pkg/infra/jwt"
	"github.com/valyala/fastjson"
)

var parserPool fastjson.ParserPool

// resolveUserID returns the best-effort identity of the current session: the
// user artifact's id, else the subject of a stored token. Any read or parse
// failure yields "".
func resolveUserID(ctx context.Context, storage platform.Storage, cfg Config) string {
	if raw, ok, err := storage.Get(ctx, cfg.UserKey); err == nil && ok {
		if id := userIDFromArtifact(raw); id != "" {
			return id
		}
	}
	for _, key := range []string{cfg.AuthTokenKey, cfg.TokenKey} {
		token, ok, err := storage.Get(ctx, key)
		if err != nil || !ok {
			continue
		}
		if subject, err := jwt.SubjectFromToken(token); err == nil {
			return subject
		}
	}
	return ""
}

func userIDFromArtifact(raw string) string {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.Parse(raw)
	if err != nil {
		return ""
	}
	id := v.Get("id")
	if id == nil {
		return ""
	}
	switch id.Type() {
	case fastjson.TypeString:
		return string(id.GetStringBytes())
	case fastjson.TypeNumber:
		return id.String()
	default:
		return ""
	}
}
