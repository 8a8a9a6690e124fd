package middleware

import (
	"net"
	"net/http"
	"strings"
)

const hstsValue = "max-age=31536000; includeSubDomains"

// HSTS tells browsers to use HTTPS for a year, subdomains included.
func HSTS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Strict-Transport-Security", hstsValue)
		next.ServeHTTP(w, r)
	})
}

// SecureCookies marks every cookie the handler sets as Secure and HttpOnly.
// Cookies without a SameSite attribute get SameSite=Strict.
func SecureCookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&secureCookieWriter{ResponseWriter: w}, r)
	})
}

type secureCookieWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *secureCookieWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *secureCookieWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.ResponseWriter.Header()
	if raw := h.Values("Set-Cookie"); len(raw) > 0 {
		h.Del("Set-Cookie")
		for _, line := range raw {
			h.Add("Set-Cookie", hardenCookie(line))
		}
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

// hardenCookie rewrites one Set-Cookie line. Lines that do not parse are
// passed through unchanged.
func hardenCookie(line string) string {
	c, err := http.ParseSetCookie(line)
	if err != nil {
		return line
	}
	c.Secure = true
	c.HttpOnly = true
	if c.SameSite == 0 {
		c.SameSite = http.SameSiteStrictMode
	}
	if s := c.String(); s != "" {
		return s
	}
	return line
}

// RedirectToHTTPS answers every request with a permanent redirect to the
// same path over HTTPS on the default port. Hosts outside allowedHosts get
// 400 so a forged Host header cannot steer the redirect.
func RedirectToHTTPS(allowedHosts []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Forwarded-Host")
		if host == "" {
			host = r.Host
		}
		if !IsHostAllowed(host, allowedHosts) {
			http.Error(w, "Invalid host", http.StatusBadRequest)
			return
		}

		name := hostname(host)
		if strings.Contains(name, ":") {
			name = "[" + name + "]"
		}
		http.Redirect(w, r, "https://"+name+r.RequestURI, http.StatusMovedPermanently)
	})
}

// IsHostAllowed reports whether host names one of allowedHosts. Ports are
// ignored on both sides. An empty list allows every host.
func IsHostAllowed(host string, allowedHosts []string) bool {
	if len(allowedHosts) == 0 {
		return true
	}

	name := hostname(host)
	for _, allowed := range allowedHosts {
		if name == hostname(allowed) {
			return true
		}
	}
	return false
}

// hostname lowercases host and strips any port and IPv6 brackets.
func hostname(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
}
