package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Remote intake API
	v.SetDefault("api.baseURL", "http://localhost:8000")
	v.SetDefault("api.submitPath", "/api/addApplication")
	v.SetDefault("api.countPath", "/api/get/count")
	v.SetDefault("api.listPath", "/api/getApplications")
	v.SetDefault("api.pdfPath", "/api/application")
	v.SetDefault("api.emailPath", "/api/sendemail")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.userAgent", "hrintake")

	v.SetDefault("api.circuitBreaker.enabled", true)
	v.SetDefault("api.circuitBreaker.maxRequests", 3)
	v.SetDefault("api.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("api.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("api.circuitBreaker.minRequests", 3)
	v.SetDefault("api.circuitBreaker.failureThreshold", 0.6)

	// Intake wizard
	v.SetDefault("wizard.steps", []string{
		"type", "personal", "family", "education", "work", "references", "uploads", "social", "review",
	})
	v.SetDefault("wizard.uppercaseFullName", true)
	v.SetDefault("wizard.notificationTTL", 4*time.Second)
	v.SetDefault("wizard.maxAttachmentSize", 5*1024*1024)

	// Review dashboard
	v.SetDefault("dashboard.pageSize", 10)
	v.SetDefault("dashboard.pageSizes", []int{5, 10, 20})
	v.SetDefault("dashboard.downloadDir", ".")
	v.SetDefault("dashboard.defaultEmailStatus", "Interview")
	v.SetDefault("dashboard.emailSubjectTemplate", "Application update - %s")

	// Admin gate. No credentials ship with the binary.
	v.SetDefault("admin.username", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.passwordHash", "")
	v.SetDefault("admin.jwtSecret", "")
	v.SetDefault("admin.tokenTTL", 12*time.Hour)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.tls.mode", "disabled")
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.sessionTTL", 2*time.Hour)
	v.SetDefault("server.maxRequestSize", 12*1024*1024)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "table")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown", "table"})

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.admin", "")
	v.SetDefault("vault.secrets.tlsCerts", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "hrintake")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	v.SetDefault("observability.customMetrics.apiCalls.enabled", true)
	v.SetDefault("observability.customMetrics.apiCalls.trackDuration", true)
	v.SetDefault("observability.customMetrics.apiCalls.trackPayload", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackSessions", true)

	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	v.SetDefault("observability.healthCheck.timeout", 5*time.Second)
}
