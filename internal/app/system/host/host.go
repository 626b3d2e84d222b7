// Package host derives the public origin and tenant slug from request
// headers, and builds tenant-specific URLs.
//
// A proxy may put comma-separated lists in the forwarded headers; only the
// first value is used. All functions are pure.
package host

import (
	"net"
	"net/http"
	"regexp"
	"strings"
)

const (
	defaultHost   = "localhost:3000"
	defaultScheme = "http"
)

var (
	trailingPort = regexp.MustCompile(`:\d+$`)
	slugStrip    = regexp.MustCompile(`[^a-z0-9-]`)
)

// Origin is the scheme and host a browser used to reach us.
type Origin struct {
	Scheme string
	Host   string // may include a port on dev hosts
}

// String renders the origin as scheme://host.
func (o Origin) String() string {
	return o.Scheme + "://" + o.Host
}

// PublicOrigin resolves the externally visible origin. The host comes from
// X-Forwarded-Host, then Host, then a local default; the scheme from
// X-Forwarded-Proto, then http. Ports are kept only on dev hosts.
func PublicOrigin(h http.Header) Origin {
	hostname := firstValue(h.Get("X-Forwarded-Host"))
	if hostname == "" {
		hostname = firstValue(h.Get("Host"))
	}
	if hostname == "" {
		hostname = defaultHost
	}
	hostname = strings.ToLower(hostname)
	if !IsDevHost(hostname) {
		hostname = StripPort(hostname)
	}

	scheme := strings.ToLower(firstValue(h.Get("X-Forwarded-Proto")))
	if scheme == "" {
		scheme = defaultScheme
	}
	return Origin{Scheme: scheme, Host: hostname}
}

// FromRequest is PublicOrigin with r.Host filled in, since net/http moves
// the Host header out of r.Header.
func FromRequest(r *http.Request) Origin {
	return PublicOrigin(Headers(r))
}

// IsDevHost reports whether host is a local development host.
func IsDevHost(host string) bool {
	host = strings.ToLower(host)
	if strings.Contains(host, "localhost") || strings.Contains(host, "127.0.0.1") {
		return true
	}
	return strings.HasSuffix(StripPort(host), ".local")
}

// StripPort removes a trailing :port.
func StripPort(host string) string {
	return trailingPort.ReplaceAllString(host, "")
}

// BaseDomain returns the configured base domain when set. Otherwise it falls
// back to the last two labels of the public host, which is wrong for
// multi-part public suffixes such as .co.uk; operators should configure it.
// localhost and *.localhost map to localhost. The result never has a port.
func BaseDomain(h http.Header, configured string) string {
	if b := strings.ToLower(strings.TrimSpace(configured)); b != "" {
		return b
	}
	hostname := StripPort(PublicOrigin(h).Host)
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return "localhost"
	}
	if net.ParseIP(hostname) != nil {
		return hostname
	}
	labels := strings.Split(hostname, ".")
	if len(labels) <= 2 {
		return hostname
	}
	return strings.Join(labels[len(labels)-2:], ".")
}

// TenantSlug extracts the tenant slug from the request host. It reports
// false for the bare base domain, a www host, or a host outside the base
// domain. Without a configured base, hosts with fewer than three labels
// (including localhost and name.localhost) have no slug.
func TenantSlug(h http.Header, configuredBase string) (string, bool) {
	hostname := StripPort(PublicOrigin(h).Host)

	var prefix string
	if base := strings.ToLower(strings.TrimSpace(configuredBase)); base != "" {
		if hostname == base || !strings.HasSuffix(hostname, "."+base) {
			return "", false
		}
		prefix = strings.TrimSuffix(hostname, "."+base)
	} else {
		labels := strings.Split(hostname, ".")
		if len(labels) < 3 {
			return "", false
		}
		prefix = strings.Join(labels[:len(labels)-2], ".")
	}

	slug := prefix
	if i := strings.Index(prefix, "."); i >= 0 {
		slug = prefix[:i]
	}
	if slug == "" || slug == "www" {
		return "", false
	}
	return slug, true
}

// CleanSlug lowercases s and drops every character outside [a-z0-9-].
func CleanSlug(s string) string {
	return slugStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

// TenantURL builds scheme://slug.base[:port]/path for the given tenant. The
// base comes from BaseDomain, so the current tenant's label is never carried
// over; a base that already starts with the slug is not prefixed again.
func TenantURL(h http.Header, configuredBase, slug, path string) string {
	o := PublicOrigin(h)
	slug = CleanSlug(slug)
	base := BaseDomain(h, configuredBase)

	port := ""
	if IsDevHost(o.Host) {
		port = trailingPort.FindString(o.Host)
	}

	target := base
	if slug != "" && !strings.HasPrefix(base, slug+".") {
		target = slug + "." + base
	}
	return o.Scheme + "://" + target + port + normalizePath(path)
}

// RootURL builds the base-domain URL, used for the workspace chooser.
func RootURL(h http.Header, configuredBase, path string) string {
	o := PublicOrigin(h)
	base := BaseDomain(h, configuredBase)
	port := ""
	if IsDevHost(o.Host) {
		port = trailingPort.FindString(o.Host)
	}
	return o.Scheme + "://" + base + port + normalizePath(path)
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

func firstValue(v string) string {
	if i := strings.Index(v, ","); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// Headers returns r's headers with Host restored from r.Host.
func Headers(r *http.Request) http.Header {
	if r.Header.Get("Host") != "" || r.Host == "" {
		return r.Header
	}
	h := r.Header.Clone()
	h.Set("Host", r.Host)
	return h
}
