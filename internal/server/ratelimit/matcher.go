package ratelimit

import "strings"

// MatchEndpoint resolves the configuration for a request path and method.
// Exact path matches win over prefix patterns (paths ending in "/", so
// "/auto-apply/" covers every auto-apply operation). Returns nil when no
// configuration applies and the caller should use the default budget.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	// Load balancers poll /health; metering it would only trip their checks.
	// Limit 0 means unmetered.
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method == method && strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) {
			return cfg
		}
	}
	return nil
}
