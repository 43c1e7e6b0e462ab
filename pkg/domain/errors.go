package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCapabilityCheckFailed = errors.New("platform capability check failed")
	ErrStorageUnavailable    = errors.New("storage is unavailable")
	ErrNavigatorUnavailable  = errors.New("navigator is unavailable")
	ErrKeyNotFound           = errors.New("key not found")
)

// ProtectionError is returned instead of dispatching an outbound request the
// origin guard rejected.
type ProtectionError struct {
	Reason   string
	Method   string
	URL      string
	Referrer string
}

func (e *ProtectionError) Error() string {
	return fmt.Sprintf("request blocked by security protection (%s): %s %s", e.Reason, e.Method, e.URL)
}

func NewProtectionError(reason, method, url, referrer string) error {
	return &ProtectionError{
		Reason:   reason,
		Method:   method,
		URL:      url,
		Referrer: referrer,
	}
}

func IsProtectionError(err error) bool {
	if err == nil {
		return false
	}
	var protectionError *ProtectionError
	return errors.As(err, &protectionError)
}
