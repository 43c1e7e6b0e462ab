package security

import (
	"fmt"
	"strings"
)

type EventType string

const (
	AccessViolation       EventType = "access_violation"
	SessionTamper         EventType = "session_tamper"
	DevtoolsDetected      EventType = "devtools_detected"
	SuspiciousActivity    EventType = "suspicious_activity"
	AuthenticationFailure EventType = "authentication_failure"
)

func (t EventType) Valid() bool {
	switch t {
	case AccessViolation, SessionTamper, DevtoolsDetected, SuspiciousActivity, AuthenticationFailure:
		return true
	}
	return false
}

// Severity is ordered: Low < Medium < High < Critical.
type Severity int

const (
	Low Severity = iota + 1
	Medium
	High
	Critical
)

var severityNames = map[Severity]string{
	Low:      "low",
	Medium:   "medium",
	High:     "high",
	Critical: "critical",
}

func ParseSeverity(s string) (Severity, error) {
	for sev, name := range severityNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

func (s Severity) Valid() bool {
	_, ok := severityNames[s]
	return ok
}

func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// State of a monitor instance. Blocked is terminal for the monitor's lifetime.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateMonitoring    State = "monitoring"
	StateBlocked       State = "blocked"
)
