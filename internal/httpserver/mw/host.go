package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// hostRules holds exact hosts and "*.example.com" suffixes, lower-cased.
type hostRules struct {
	exact    map[string]bool
	suffixes []string
}

func newHostRules(allowed []string) hostRules {
	rules := hostRules{exact: make(map[string]bool, len(allowed))}
	for _, h := range allowed {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case h == "":
		case strings.HasPrefix(h, "*."):
			rules.suffixes = append(rules.suffixes, h[1:])
		default:
			rules.exact[h] = true
		}
	}
	return rules
}

func (hr hostRules) empty() bool { return len(hr.exact) == 0 && len(hr.suffixes) == 0 }

// match ignores the port and the case of host. A wildcard does not match
// the bare domain.
func (hr hostRules) match(host string) bool {
	host = strings.ToLower(utils.ParseHostNoPort(host))
	if hr.exact[host] {
		return true
	}
	for _, s := range hr.suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}

// EnforceHost only serves requests whose Host header is allowed.
// Patterns may be exact ("shelf.lan") or wildcards ("*.example.com").
// An empty list disables the check.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	rules := newHostRules(allowedHosts)
	if rules.empty() {
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debug("host allow-list enabled", logger.Any("hosts", allowedHosts))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rules.match(r.Host) {
				log.Warn("host rejected",
					logger.String("host", r.Host),
					logger.String("path", r.URL.Path))
				reject(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
