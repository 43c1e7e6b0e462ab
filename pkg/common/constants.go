package common

import "time"

const (
	DefaultEnvFile   = ".env"
	DefaultConfigDir = "./config"

	// AdminSubjectKey holds the authenticated admin token subject in fiber locals.
	AdminSubjectKey = "admin_subject"

	ShutdownTimeout = 10 * time.Second
)
