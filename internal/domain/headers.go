package domain

import (
	"net/url"
)

// DefaultUserAgent mirrors a current desktop Chrome so origin servers treat
// playlist requests like a browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// BaseHeaders returns the outbound header template shared by every job.
// Referer and Origin are filled in per job by NewHeaderProfile.
func BaseHeaders(userAgent string) map[string]string {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return map[string]string{
		"Accept":          "*/*",
		"User-Agent":      userAgent,
		"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
		"Connection":      "keep-alive",
		"Accept-Encoding": "gzip, deflate, br",
	}
}

// HeaderProfile is an immutable snapshot of the outbound headers for one job.
// Each job builds its own profile from the base template plus Referer/Origin
// derived from its source URL, so concurrent jobs never share header state.
type HeaderProfile struct {
	headers map[string]string
}

// NewHeaderProfile copies base and derives Referer/Origin from the scheme and
// host of src. The input map is never retained or mutated.
func NewHeaderProfile(base map[string]string, src *url.URL) HeaderProfile {
	h := make(map[string]string, len(base)+2)
	for k, v := range base {
		h[k] = v
	}
	h["Referer"] = src.Scheme + "://" + src.Host + "/"
	h["Origin"] = src.Scheme + "://" + src.Host
	return HeaderProfile{headers: h}
}

// Get returns the value for a header name, or "" when unset.
func (p HeaderProfile) Get(name string) string {
	return p.headers[name]
}

// UserAgent is a convenience for the forwarded -user_agent flag.
func (p HeaderProfile) UserAgent() string {
	return p.headers["User-Agent"]
}

// Map returns a copy of the headers. Callers may mutate the copy freely.
func (p HeaderProfile) Map() map[string]string {
	m := make(map[string]string, len(p.headers))
	for k, v := range p.headers {
		m[k] = v
	}
	return m
}

// Len reports the number of headers in the profile.
func (p HeaderProfile) Len() int {
	return len(p.headers)
}
