package authcore

import "time"

// SecurityReport summarizes the security-relevant configuration the
// Engine is running with. It exposes settings, never secrets, and is
// meant for operator diagnostics.
type SecurityReport struct {
	SigningAlgorithm string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	IssuerEnforced   bool

	PasswordAlgorithm PasswordAlgorithm
	MinPasswordLength int

	RefreshRotationEnabled       bool
	RefreshReuseDetectionEnabled bool

	AuditEnabled   bool
	MetricsEnabled bool
}

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		SigningAlgorithm: "HS256",
		AccessTTL:        e.config.JWT.AccessTTL,
		RefreshTTL:       e.config.JWT.RefreshTTL,
		IssuerEnforced:   e.config.JWT.Issuer != "",

		PasswordAlgorithm: e.config.Password.Algorithm,
		MinPasswordLength: e.config.Password.MinLength,

		// Rotation and reuse detection are structural here, not
		// toggles: every Refresh rotates, and reuse of a rotated token
		// always fails.
		RefreshRotationEnabled:       true,
		RefreshReuseDetectionEnabled: true,

		AuditEnabled:   e.config.Audit.Enabled,
		MetricsEnabled: e.config.Metrics.Enabled,
	}
}
