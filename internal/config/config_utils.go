package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv loads .env files into the process environment.
// Variables that are already set win over file values.
func loadDotEnv() {
	paths := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".hrintake", ".env"))
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Printf("[CONFIG] Failed to load %s: %v", path, err)
			continue
		}
		log.Printf("[CONFIG] Loaded environment file: %s", path)
	}
}

// applyFallbacks applies environment variable fallbacks and derived defaults
func (c *Config) applyFallbacks() {
	c.applyListFallbacks()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyListFallbacks reads comma separated lists that viper cannot bind on its own
func (c *Config) applyListFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		c.Server.APIKeys = splitEnvList("HRINTAKE_SERVER_APIKEYS")
	}
	c.Server.APIKeys = trimList(c.Server.APIKeys)
	c.Wizard.Steps = trimList(c.Wizard.Steps)
	c.App.SupportedFormats = trimList(c.App.SupportedFormats)
}

func splitEnvList(name string) []string {
	value := os.Getenv(name)
	if value == "" {
		return nil
	}
	return strings.Split(value, ",")
}

func trimList(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// applyTLSDefaults applies default TLS configuration values
func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID generates a unique service instance ID
func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}

// sensitiveEnv reports whether an environment variable holds a secret
func sensitiveEnv(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range []string{"key", "password", "secret", "token"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// logConfigurationSources logs a summary of configuration sources being used
func (c *Config) logConfigurationSources(configFileUsed string) {
	log.Println("[CONFIG] === Configuration Sources Summary ===")

	if configFileUsed != "" {
		log.Printf("[CONFIG] Config file: %s", configFileUsed)
	} else {
		log.Println("[CONFIG] Config file: None (using defaults)")
	}

	envVars := []string{
		"HRINTAKE_API_BASEURL",
		"HRINTAKE_API_EMAILPATH",
		"HRINTAKE_WIZARD_STEPS",
		"HRINTAKE_ADMIN_USERNAME",
		"HRINTAKE_ADMIN_PASSWORD",
		"HRINTAKE_ADMIN_PASSWORDHASH",
		"HRINTAKE_ADMIN_JWTSECRET",
		"HRINTAKE_SERVER_PORT",
		"HRINTAKE_SERVER_HOST",
		"HRINTAKE_SERVER_APIKEYS",
		"HRINTAKE_APP_LOGLEVEL",
		"HRINTAKE_VAULT_ENABLED",
		"HRINTAKE_VAULT_TOKEN",
	}

	log.Println("[CONFIG] Environment variables:")
	hasEnvVars := false
	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			if sensitiveEnv(envVar) {
				log.Printf("[CONFIG]   %s=***MASKED***", envVar)
			} else {
				log.Printf("[CONFIG]   %s=%s", envVar, value)
			}
			hasEnvVars = true
		}
	}
	if !hasEnvVars {
		log.Println("[CONFIG]   None set")
	}

	log.Println("[CONFIG] === Key Configuration Values ===")
	log.Printf("[CONFIG] API Base URL: %s", c.API.BaseURL)
	log.Printf("[CONFIG] Email Path: %s", c.API.EmailPath)
	log.Printf("[CONFIG] Wizard Steps: %s", strings.Join(c.Wizard.Steps, ","))
	if c.Admin.Configured() {
		log.Println("[CONFIG] Admin Credentials: ***CONFIGURED***")
	} else {
		log.Println("[CONFIG] Admin Credentials: ***NOT SET***")
	}
	log.Printf("[CONFIG] Server Host: %s", c.Server.Host)
	log.Printf("[CONFIG] Server Port: %s", c.Server.Port)
	log.Printf("[CONFIG] Log Level: %s", c.App.LogLevel)
	log.Printf("[CONFIG] TLS Mode: %s", c.Server.TLS.Mode)
	log.Printf("[CONFIG] Vault Enabled: %t", c.Vault.Enabled)
	log.Printf("[CONFIG] Observability Enabled: %t", c.Observability.Enabled)
	log.Println("[CONFIG] =====================================")
}
