// Package geolite fills in owner and locale metadata for address ranges from
// local GeoLite2 databases. Everything here is optional: without the mmdb
// files the enricher simply reports no data.
package geolite

import (
	"net"
	"net/netip"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/oschwald/geoip2-golang"
	"golang.org/x/sync/singleflight"

	"shrike/internal/support"
)

type ownerInfo struct {
	owner  string
	locale string
}

// Enricher answers owner/locale lookups for single addresses. The zero value
// is usable and reports no data for every address.
type Enricher struct {
	asnDB     *geoip2.Reader
	countryDB *geoip2.Reader

	group singleflight.Group
	cache sync.Map // addr string -> ownerInfo
}

// Open builds an Enricher from the mmdb paths in ASN_MMDB_PATH and
// COUNTRY_MMDB_PATH. Missing or unreadable databases are logged and skipped.
func Open() *Enricher {
	e := &Enricher{}

	if path := support.GetEnv("ASN_MMDB_PATH", ""); path != "" {
		reader, err := geoip2.Open(path)
		if err != nil {
			log.Warn("Could not open ASN database", "path", path, "error", err)
		} else {
			e.asnDB = reader
		}
	}

	if path := support.GetEnv("COUNTRY_MMDB_PATH", ""); path != "" {
		reader, err := geoip2.Open(path)
		if err != nil {
			log.Warn("Could not open country database", "path", path, "error", err)
		} else {
			e.countryDB = reader
		}
	}

	return e
}

// OwnerFor returns the owning organization and ISO country code for addr.
// ok is false when neither database knows the address.
func (e *Enricher) OwnerFor(addr netip.Addr) (owner, locale string, ok bool) {
	if e == nil || (e.asnDB == nil && e.countryDB == nil) {
		return "", "", false
	}

	key := addr.String()
	if cached, hit := e.cache.Load(key); hit {
		info := cached.(ownerInfo)
		return info.owner, info.locale, info.owner != "" || info.locale != ""
	}

	result, _, _ := e.group.Do(key, func() (any, error) {
		return e.lookup(addr), nil
	})

	info := result.(ownerInfo)
	e.cache.Store(key, info)
	return info.owner, info.locale, info.owner != "" || info.locale != ""
}

func (e *Enricher) lookup(addr netip.Addr) ownerInfo {
	var info ownerInfo
	ip := net.IP(addr.AsSlice())

	if e.asnDB != nil {
		if record, err := e.asnDB.ASN(ip); err == nil {
			info.owner = record.AutonomousSystemOrganization
		}
	}
	if e.countryDB != nil {
		if record, err := e.countryDB.Country(ip); err == nil {
			info.locale = record.Country.IsoCode
		}
	}

	return info
}

func (e *Enricher) Close() {
	if e == nil {
		return
	}
	if e.asnDB != nil {
		_ = e.asnDB.Close()
	}
	if e.countryDB != nil {
		_ = e.countryDB.Close()
	}
}
