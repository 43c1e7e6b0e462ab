package security

// ThreatReport is derived on demand from the event log and the blocked
// attempts counter. It is never stored.
type ThreatReport struct {
	TotalEvents     int    `json:"totalEvents"`
	CriticalEvents  int    `json:"criticalEvents"`
	LastEvent       *Event `json:"lastEvent"`
	BlockedAttempts int64  `json:"blockedAttempts"`
}

func BuildThreatReport(events []Event, blockedAttempts int64) ThreatReport {
	report := ThreatReport{
		TotalEvents:     len(events),
		BlockedAttempts: blockedAttempts,
	}
	for _, e := range events {
		if e.Severity() == Critical {
			report.CriticalEvents++
		}
	}
	if len(events) > 0 {
		last := events[len(events)-1]
		report.LastEvent = &last
	}
	return report
}
