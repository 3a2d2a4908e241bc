package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Identity.Salt) < 16 {
		return fmt.Errorf("identity.salt must be at least 16 characters (got %d)", len(c.Identity.Salt))
	}

	if c.AI.Enabled && c.AI.APIKey == "" {
		return fmt.Errorf("ai.api_key is required when ai.enabled is true")
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be > 0 (got %v)", c.AI.Timeout)
	}
	if c.AI.MaxInputLen <= 0 {
		return fmt.Errorf("ai.max_input_len must be > 0 (got %d)", c.AI.MaxInputLen)
	}

	if c.RateLimit.PerUser < 0 {
		return fmt.Errorf("rate_limit.per_user must be >= 0 (got %d)", c.RateLimit.PerUser)
	}
	if c.RateLimit.Global < 0 {
		return fmt.Errorf("rate_limit.global must be >= 0 (got %d)", c.RateLimit.Global)
	}

	if c.Webhook.VerifyToken == "" {
		return fmt.Errorf("webhook.verify_token is required")
	}

	if c.Privacy.RetentionDays <= 0 {
		return fmt.Errorf("privacy.retention_days must be > 0 (got %d)", c.Privacy.RetentionDays)
	}

	if c.Router.MaxReplyLen <= 0 {
		return fmt.Errorf("router.max_reply_len must be > 0 (got %d)", c.Router.MaxReplyLen)
	}

	return nil
}
