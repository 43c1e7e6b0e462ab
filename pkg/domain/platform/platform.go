package platform

import (
	"context"
	"net/http"
)

// Storage is the persistent key-value primitive the host application must
// use for session artifacts. Get reports whether the key exists.
//
//go:generate mockery --name=Storage --dir=. --output=./mocks --filename=storage_mock.go --case=underscore --with-expecter
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// KeyLister is implemented by storages that can enumerate their keys.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Requester is the network-dispatch primitive. *http.Client satisfies it.
type Requester interface {
	Do(req *http.Request) (*http.Response, error)
}

type RequesterFunc func(req *http.Request) (*http.Response, error)

func (f RequesterFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Navigator exposes the current navigation target and lets the monitor
// force a redirect. Listener registrations return an unsubscribe func.
type Navigator interface {
	CurrentURL() string
	Referrer() string
	Origin() string
	UserAgent() string
	Navigate(target string) error
	OnNavigate(fn func(url string)) func()
}

type Viewport struct {
	OuterWidth  int
	OuterHeight int
	InnerWidth  int
	InnerHeight int
}

// Window delivers visibility, focus and resize notifications.
type Window interface {
	OnVisibilityChange(fn func(visible bool)) func()
	OnFocusChange(fn func(focused bool)) func()
	OnResize(fn func(v Viewport)) func()
}
