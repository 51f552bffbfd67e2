package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validate checks the configuration for values that would break the pipeline.
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	if c.DatabasePath == "" {
		errors = append(errors, "database path is required")
	}
	if c.MaxOpenConns < 1 {
		errors = append(errors, "max open connections must be at least 1")
	}
	if c.MaxIdleConns < 1 {
		errors = append(errors, "max idle connections must be at least 1")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		errors = append(errors, "max idle connections cannot be greater than max open connections")
	}
	if c.ConnMaxLifetime < time.Second {
		errors = append(errors, "connection max lifetime must be at least 1 second")
	}

	if c.DetectionPrefixLen < 1 {
		errors = append(errors, "detection prefix length must be at least 1")
	}

	if c.MathTolerance <= 0 {
		errors = append(errors, "math tolerance must be positive")
	}
	if c.SignificantDifference <= c.MathTolerance {
		errors = append(errors, "significant difference must exceed the math tolerance")
	}
	if c.MaxDiscountShare <= 0 || c.MaxDiscountShare > 1 {
		errors = append(errors, "max discount share must be in (0, 1]")
	}

	for name, v := range map[string]float64{
		"alias similarity threshold": c.AliasSimilarityThreshold,
		"auto persist threshold":     c.AutoPersistThreshold,
		"min acceptable confidence":  c.MinAcceptableConfidence,
		"model confidence":           c.ModelConfidence,
	} {
		if v < 0 || v > 1 {
			errors = append(errors, fmt.Sprintf("%s must be in [0, 1], got %v", name, v))
		}
	}
	if c.ConfirmationTimeout < time.Second {
		errors = append(errors, "confirmation timeout must be at least 1 second")
	}

	if c.Gateway == nil {
		errors = append(errors, "gateway config is required")
	} else if gwErrors := c.Gateway.validate(); len(gwErrors) > 0 {
		errors = append(errors, gwErrors...)
	}

	if len(errors) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

func (g *GatewayConfig) validate() []string {
	var errors []string

	switch g.Provider {
	case "ollama", "openrouter", "gemini", "disabled":
	default:
		errors = append(errors, fmt.Sprintf("unknown model provider: %s", g.Provider))
	}

	if g.ModelTimeout < time.Second {
		errors = append(errors, "model timeout must be at least 1 second")
	}
	if g.SubBatchSize < 1 {
		errors = append(errors, "sub-batch size must be at least 1")
	}
	if g.Workers < 1 {
		errors = append(errors, "gateway workers must be at least 1")
	}
	if g.ExactCacheSize < 1 {
		errors = append(errors, "exact cache size must be at least 1")
	}
	if g.ApproxCacheSize < 1 {
		errors = append(errors, "approximate cache size must be at least 1")
	}
	if g.ApproxSimThreshold <= 0 || g.ApproxSimThreshold > 1 {
		errors = append(errors, "approximate similarity threshold must be in (0, 1]")
	}
	if g.MaxRetries < 0 {
		errors = append(errors, "max retries cannot be negative")
	}

	return errors
}
