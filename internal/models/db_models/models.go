package db_models

// All lists every table for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Session{},
		&Payment{},
		&ProcessedWebhook{},
		&Referral{},
		&SuspiciousActivity{},
		&MultiAccountLink{},
		&DeviceFingerprint{},
		&ActivityLog{},
		&SearchHistory{},
		&AdminAuditLog{},
		&ApiConfig{},
		&UserBadge{},
	}
}
