package security

import (
	"fmt"
	"slices"

	"github.com/mitchellh/mapstructure"
)

// Details is the payload of a SecurityEvent. The set of implementations is
// closed; use a type switch over the concrete payloads below.
type Details interface {
	EventType() EventType
	Kind() string
	Fields() map[string]interface{}
	details()
}

type StorageAction string

const (
	ActionRead   StorageAction = "read"
	ActionWrite  StorageAction = "write"
	ActionDelete StorageAction = "delete"
)

type TamperReason string

const (
	ReasonTokenMismatch     TamperReason = "token_mismatch"
	ReasonCorruptedUserData TamperReason = "corrupted_user_data"
	ReasonInvalidUserData   TamperReason = "invalid_user_data"
)

const (
	ReasonXSSAttempt  = "xss_attempt"
	ReasonCSRFAttempt = "csrf_attempt"
)

const (
	KindStorageAccess         = "storage_access"
	KindSessionTamper         = "session_tamper"
	KindInjectionAttempt      = "injection_attempt"
	KindCSRFAttempt           = "csrf_attempt"
	KindDevtoolsOpened        = "devtools_opened"
	KindAccessViolation       = "access_violation"
	KindAuthenticationFailure = "authentication_failure"
)

type StorageAccessDetails struct {
	Action StorageAction `mapstructure:"action"`
	Key    string        `mapstructure:"key"`
}

func (d StorageAccessDetails) EventType() EventType { return SuspiciousActivity }
func (d StorageAccessDetails) Kind() string         { return KindStorageAccess }
func (d StorageAccessDetails) details()             {}
func (d StorageAccessDetails) Fields() map[string]interface{} {
	return map[string]interface{}{
		"action": string(d.Action),
		"key":    d.Key,
	}
}

type SessionTamperDetails struct {
	Reason        TamperReason `mapstructure:"reason"`
	MissingFields []string     `mapstructure:"missing_fields"`
	ParseError    string       `mapstructure:"parse_error"`
}

func (d SessionTamperDetails) EventType() EventType { return SessionTamper }
func (d SessionTamperDetails) Kind() string         { return KindSessionTamper }
func (d SessionTamperDetails) details()             {}
func (d SessionTamperDetails) Fields() map[string]interface{} {
	fields := map[string]interface{}{"reason": string(d.Reason)}
	if len(d.MissingFields) > 0 {
		fields["missing_fields"] = append([]string(nil), d.MissingFields...)
	}
	if d.ParseError != "" {
		fields["parse_error"] = d.ParseError
	}
	return fields
}

type InjectionAttemptDetails struct {
	Pattern    string `mapstructure:"pattern"`
	Expression string `mapstructure:"expression"`
	URL        string `mapstructure:"url"`
}

func (d InjectionAttemptDetails) EventType() EventType { return SuspiciousActivity }
func (d InjectionAttemptDetails) Kind() string         { return KindInjectionAttempt }
func (d InjectionAttemptDetails) details()             {}
func (d InjectionAttemptDetails) Fields() map[string]interface{} {
	return map[string]interface{}{
		"reason":     ReasonXSSAttempt,
		"pattern":    d.Pattern,
		"expression": d.Expression,
		"url":        d.URL,
	}
}

type CSRFAttemptDetails struct {
	Method   string `mapstructure:"method"`
	URL      string `mapstructure:"url"`
	Referrer string `mapstructure:"referrer"`
	Origin   string `mapstructure:"origin"`
}

func (d CSRFAttemptDetails) EventType() EventType { return SuspiciousActivity }
func (d CSRFAttemptDetails) Kind() string         { return KindCSRFAttempt }
func (d CSRFAttemptDetails) details()             {}
func (d CSRFAttemptDetails) Fields() map[string]interface{} {
	return map[string]interface{}{
		"reason":   ReasonCSRFAttempt,
		"method":   d.Method,
		"url":      d.URL,
		"referrer": d.Referrer,
		"origin":   d.Origin,
	}
}

type DevtoolsOpenedDetails struct {
	WidthDelta  int `mapstructure:"width_delta"`
	HeightDelta int `mapstructure:"height_delta"`
}

func (d DevtoolsOpenedDetails) EventType() EventType { return DevtoolsDetected }
func (d DevtoolsOpenedDetails) Kind() string         { return KindDevtoolsOpened }
func (d DevtoolsOpenedDetails) details()             {}
func (d DevtoolsOpenedDetails) Fields() map[string]interface{} {
	return map[string]interface{}{
		"width_delta":  d.WidthDelta,
		"height_delta": d.HeightDelta,
	}
}

type AccessViolationDetails struct {
	Resource string `mapstructure:"resource"`
	Reason   string `mapstructure:"reason"`
}

func (d AccessViolationDetails) EventType() EventType { return AccessViolation }
func (d AccessViolationDetails) Kind() string         { return KindAccessViolation }
func (d AccessViolationDetails) details()             {}
func (d AccessViolationDetails) Fields() map[string]interface{} {
	return map[string]interface{}{
		"resource": d.Resource,
		"reason":   d.Reason,
	}
}

type AuthenticationFailureDetails struct {
	Username string `mapstructure:"username"`
	Reason   string `mapstructure:"reason"`
}

func (d AuthenticationFailureDetails) EventType() EventType { return AuthenticationFailure }
func (d AuthenticationFailureDetails) Kind() string         { return KindAuthenticationFailure }
func (d AuthenticationFailureDetails) details()             {}
func (d AuthenticationFailureDetails) Fields() map[string]interface{} {
	return map[string]interface{}{
		"username": d.Username,
		"reason":   d.Reason,
	}
}

// cloneDetails copies the slices a payload carries so a stored event never
// shares backing arrays with its callers.
func cloneDetails(d Details) Details {
	switch v := d.(type) {
	case SessionTamperDetails:
		v.MissingFields = slices.Clone(v.MissingFields)
		return v
	}
	return d
}

// DecodeDetails rebuilds a typed payload from its kind and free-form fields.
func DecodeDetails(kind string, fields map[string]interface{}) (Details, error) {
	switch kind {
	case KindStorageAccess:
		var d StorageAccessDetails
		return decodeInto(fields, &d)
	case KindSessionTamper:
		var d SessionTamperDetails
		return decodeInto(fields, &d)
	case KindInjectionAttempt:
		var d InjectionAttemptDetails
		return decodeInto(fields, &d)
	case KindCSRFAttempt:
		var d CSRFAttemptDetails
		return decodeInto(fields, &d)
	case KindDevtoolsOpened:
		var d DevtoolsOpenedDetails
		return decodeInto(fields, &d)
	case KindAccessViolation:
		var d AccessViolationDetails
		return decodeInto(fields, &d)
	case KindAuthenticationFailure:
		var d AuthenticationFailureDetails
		return decodeInto(fields, &d)
	default:
		return nil, fmt.Errorf("unknown details kind %q", kind)
	}
}

func decodeInto[T Details](fields map[string]interface{}, out *T) (Details, error) {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, fmt.Errorf("failed to decode details: %w", err)
	}
	return *out, nil
}
