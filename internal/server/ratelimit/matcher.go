package ratelimit

import "strings"

// MatchEndpoint resolves the config that governs a request. Exact path+method
// entries win over prefix entries; prefix entries are those whose Path ends
// in "/" (so "/api/admin/" covers every admin route). The health check is
// always unmetered regardless of configuration.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	var prefixMatch *EndpointConfig
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != method {
			continue
		}
		if cfg.Path == path {
			return cfg
		}
		if prefixMatch == nil && strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) {
			prefixMatch = cfg
		}
	}
	return prefixMatch
}
