package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"gorm.io/gorm"
)

// HTTPMethod is the closed set of request methods a WebRequest may record.
type HTTPMethod string

const (
	MethodGet     HTTPMethod = "GET"
	MethodHead    HTTPMethod = "HEAD"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodPatch   HTTPMethod = "PATCH"
	MethodDelete  HTTPMethod = "DELETE"
	MethodOptions HTTPMethod = "OPTIONS"
	MethodTrace   HTTPMethod = "TRACE"
)

var httpMethods = map[HTTPMethod]struct{}{
	MethodGet: {}, MethodHead: {}, MethodPost: {}, MethodPut: {},
	MethodPatch: {}, MethodDelete: {}, MethodOptions: {}, MethodTrace: {},
}

// ParseHTTPMethod normalizes case and validates membership in the closed set.
func ParseHTTPMethod(s string) (HTTPMethod, error) {
	m := HTTPMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("domain: unknown http method %q", s)
	}
	return m, nil
}

func (m HTTPMethod) Valid() bool {
	_, ok := httpMethods[m]
	return ok
}

func (m HTTPMethod) String() string { return string(m) }

// WebRequest records an HTTP request observed or issued during
// reconnaissance. Host and RegistrableDomain are derived from URL on save so
// lookups by site never re-parse the URL column.
type WebRequest struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Method HTTPMethod `gorm:"size:8;not null"`
	URL    string     `gorm:"size:2048;not null"`

	Host              string `gorm:"size:255;index"`
	RegistrableDomain string `gorm:"size:255;index"`

	Headers HeaderMap `gorm:"type:jsonb"`
	Body    string    `gorm:"type:text"`

	RequestedAt time.Time

	Response *WebResponse `gorm:"foreignKey:WebRequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// BeforeSave rederives the host columns from the URL. A URL whose host is an
// IP address or a bare TLD has no registrable domain; that is not an error.
func (r *WebRequest) BeforeSave(_ *gorm.DB) error {
	parsed, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("domain: parse request url: %w", err)
	}

	r.Host = parsed.Hostname()
	r.RegistrableDomain = ""
	if r.Host != "" {
		if domain, err := publicsuffix.EffectiveTLDPlusOne(r.Host); err == nil {
			r.RegistrableDomain = domain
		}
	}
	return nil
}

func (r *WebRequest) Validate() ValidationErrors {
	var errs ValidationErrors

	if !r.Method.Valid() {
		errs.Add("method", "must be one of GET, HEAD, POST, PUT, PATCH, DELETE, OPTIONS, TRACE")
	}

	if r.URL == "" {
		errs.Add("url", "is required")
	} else if parsed, err := url.Parse(r.URL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		errs.Add("url", "must be an absolute URL")
	}

	return errs
}
