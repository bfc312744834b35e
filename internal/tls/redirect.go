package tls

import (
	"net"
	"net/http"
	"strings"

	"futuristic-todo-api/internal/logging"

	"github.com/sirupsen/logrus"
)

// HTTPSRedirectHandler redirects every request to the same URL on httpsPort.
// 308 keeps the method and body, so a PUT reorder is replayed as a PUT.
func HTTPSRedirectHandler(httpsPort string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")

		authority := net.JoinHostPort(host, httpsPort)
		if httpsPort == "443" {
			authority = strings.TrimSuffix(authority, ":443")
		}
		target := "https://" + authority + r.URL.RequestURI()

		logging.Logger.WithFields(logrus.Fields{
			"client_ip": r.RemoteAddr,
			"http_url":  r.URL.String(),
			"https_url": target,
			"method":    r.Method,
		}).Debug("HTTP to HTTPS redirect")

		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}
