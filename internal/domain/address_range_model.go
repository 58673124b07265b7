package domain

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"go4.org/netipx"
	"gorm.io/gorm"

	"shrike/internal/ipcodec"
)

// ErrMalformedRange reports bounds that cannot form a range: inverted order
// or mixed address families.
var ErrMalformedRange = errors.New("domain: range bounds do not form a valid range")

// IPVersion identifies the address family of a range.
type IPVersion uint8

const (
	IPv4 IPVersion = 4
	IPv6 IPVersion = 6
)

// IPVersionOf returns the family of a parsed address.
func IPVersionOf(addr netip.Addr) IPVersion {
	if addr.Is4() {
		return IPv4
	}
	return IPv6
}

// ParseIPVersion maps the stable string form back to the enum.
func ParseIPVersion(s string) (IPVersion, error) {
	switch s {
	case "4":
		return IPv4, nil
	case "6":
		return IPv6, nil
	default:
		return 0, fmt.Errorf("domain: unknown ip version %q", s)
	}
}

func (v IPVersion) Valid() bool {
	return v == IPv4 || v == IPv6
}

func (v IPVersion) String() string {
	switch v {
	case IPv4:
		return "4"
	case IPv6:
		return "6"
	default:
		return fmt.Sprintf("IPVersion(%d)", uint8(v))
	}
}

// AddressRange is an ASN-style ownership record: a contiguous span of
// addresses with the autonomous system number and descriptive metadata of
// whoever announces it.
//
// RangeStartKey and RangeEndKey hold the codec's order-preserving byte form
// of the textual bounds. They exist only so containment lookups can run as an
// ordered comparison inside the database; callers never set them directly,
// BeforeSave rederives both on every insert and update.
type AddressRange struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Version IPVersion `gorm:"not null;index:idx_range_start,priority:1;index:idx_range_end,priority:1"`

	RangeStart string `gorm:"size:45;not null;uniqueIndex:idx_range_identity,priority:2"`
	RangeEnd   string `gorm:"size:45;not null;uniqueIndex:idx_range_identity,priority:3"`

	RangeStartKey []byte `gorm:"type:bytea;index:idx_range_start,priority:2"`
	RangeEndKey   []byte `gorm:"type:bytea;index:idx_range_end,priority:2"`

	// Number is the autonomous system number announcing the range.
	Number uint32 `gorm:"not null;uniqueIndex:idx_range_identity,priority:1"`

	OwnerLabel string `gorm:"size:512;not null;default:''"`
	LocaleCode string `gorm:"size:8;not null;default:''"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// BeforeSave rederives the binary keys from the textual bounds so the two can
// never diverge in storage. Unparsable or malformed bounds abort the write
// before any row is touched.
func (r *AddressRange) BeforeSave(_ *gorm.DB) error {
	ipr, err := r.IPRange()
	if err != nil {
		return err
	}

	startKey, err := ipcodec.Encode(ipr.From())
	if err != nil {
		return err
	}
	endKey, err := ipcodec.Encode(ipr.To())
	if err != nil {
		return err
	}

	r.RangeStartKey = startKey
	r.RangeEndKey = endKey
	r.Version = IPVersionOf(ipr.From())
	return nil
}

// IPRange parses the textual bounds into a netipx.IPRange. It fails with the
// codec's format error on bad text and ErrMalformedRange on inverted or
// mixed-family bounds.
func (r *AddressRange) IPRange() (netipx.IPRange, error) {
	start, err := ipcodec.Parse(r.RangeStart)
	if err != nil {
		return netipx.IPRange{}, err
	}
	end, err := ipcodec.Parse(r.RangeEnd)
	if err != nil {
		return netipx.IPRange{}, err
	}

	ipr := netipx.IPRangeFrom(start, end)
	if !ipr.IsValid() {
		return netipx.IPRange{}, fmt.Errorf("%w: %s - %s", ErrMalformedRange, r.RangeStart, r.RangeEnd)
	}
	return ipr, nil
}

// Contains reports whether addr falls inside the textual bounds. Malformed
// records contain nothing.
func (r *AddressRange) Contains(addr netip.Addr) bool {
	ipr, err := r.IPRange()
	if err != nil {
		return false
	}
	return ipr.Contains(addr)
}

// Validate collects every violation on the record. Uniqueness against
// existing rows is checked by the repository, which appends to the same list.
func (r *AddressRange) Validate() ValidationErrors {
	var errs ValidationErrors

	if r.Number == 0 {
		errs.Add("number", "is required")
	}

	var start, end netip.Addr
	if r.RangeStart == "" {
		errs.Add("range_start", "is required")
	} else if addr, err := ipcodec.Parse(r.RangeStart); err != nil {
		errs.Add("range_start", "is not a valid IP address")
	} else {
		start = addr
	}

	if r.RangeEnd == "" {
		errs.Add("range_end", "is required")
	} else if addr, err := ipcodec.Parse(r.RangeEnd); err != nil {
		errs.Add("range_end", "is not a valid IP address")
	} else {
		end = addr
	}

	if start.IsValid() && end.IsValid() {
		switch {
		case IPVersionOf(start) != IPVersionOf(end):
			errs.Add("range_end", "address family does not match range_start")
		case end.Less(start):
			errs.Add("range_end", "must not order below range_start")
		}
	}

	if r.Version != 0 && !r.Version.Valid() {
		errs.Add("version", "must be 4 or 6")
	}
	if r.Version.Valid() && start.IsValid() && IPVersionOf(start) != r.Version {
		errs.Add("version", "does not match the address family of the bounds")
	}

	return errs
}
