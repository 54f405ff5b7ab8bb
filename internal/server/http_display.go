package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo() {
	scheme := "http"
	if s.TLSConfig.Mode == "server" {
		scheme = "https"
	}
	fmt.Printf("Starting server on %s://%s:%s\n", scheme, s.Host, s.Port)

	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) displayEndpoints() {
	fmt.Println("Available endpoints:")
	fmt.Println("  GET    /health                              - Health check")
	fmt.Println("  GET    /stats                               - Server statistics")
	fmt.Println("  POST   /api/admin/login                     - Dashboard login")
	fmt.Println("  GET    /api/options/{details,salary,steps}  - Form options")
	fmt.Println("  POST   /api/wizard/sessions                 - Start an application (API key)")
	fmt.Println("  *      /api/wizard/sessions/{id}/...        - Edit, review and submit (API key)")
	fmt.Println("  GET    /api/dashboard/...                   - Review dashboard (admin token)")
}

func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Printf("API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
	} else {
		fmt.Println("API authentication: DISABLED (no API keys configured)")
		fmt.Println("WARNING: wizard endpoints are publicly accessible!")
	}
	if !s.Gate.Configured() {
		fmt.Println("WARNING: admin credentials are not configured, dashboard login is disabled")
	}
}

func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Printf("Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Println("Request size limit: DISABLED")
	}
}

func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Printf("Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Println("  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Println("  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Println("Rate limiting: DISABLED")
	}
}
