package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// PhoneKind is the closed set of phone number categories.
type PhoneKind string

const (
	PhoneMobile   PhoneKind = "mobile"
	PhoneLandline PhoneKind = "landline"
	PhoneFax      PhoneKind = "fax"
	PhoneVoIP     PhoneKind = "voip"
	PhoneTollFree PhoneKind = "tollfree"
)

var phoneKinds = map[PhoneKind]struct{}{
	PhoneMobile: {}, PhoneLandline: {}, PhoneFax: {}, PhoneVoIP: {}, PhoneTollFree: {},
}

// ParsePhoneKind validates membership in the closed set.
func ParsePhoneKind(s string) (PhoneKind, error) {
	k := PhoneKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("domain: unknown phone kind %q", s)
	}
	return k, nil
}

func (k PhoneKind) Valid() bool {
	_, ok := phoneKinds[k]
	return ok
}

func (k PhoneKind) String() string { return string(k) }

// PhoneNumber is a contact number attributed to a target. Number keeps the
// form it was collected in; Digits is the derived digits-only form used for
// deduplication and is recomputed on every save.
type PhoneNumber struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Number string    `gorm:"size:32;not null"`
	Digits string    `gorm:"size:16;not null;uniqueIndex:idx_phone_identity,priority:1"`
	Kind   PhoneKind `gorm:"size:16;not null;uniqueIndex:idx_phone_identity,priority:2"`

	OwnerLabel string `gorm:"size:512;not null;default:''"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (p *PhoneNumber) BeforeSave(_ *gorm.DB) error {
	p.Digits = p.NormalizedDigits()
	return nil
}

// NormalizedDigits is the digits-only form of Number, the value the derived
// Digits column holds after a save.
func (p *PhoneNumber) NormalizedDigits() string {
	return digitsOf(p.Number)
}

// Collected numbers carry digits plus the usual separators; anything else
// (letters included) is a collection error, not something to strip.
var phoneNumberPattern = regexp.MustCompile(`^\+?[0-9()./\- ]+$`)

func (p *PhoneNumber) Validate() ValidationErrors {
	var errs ValidationErrors

	if p.Number == "" {
		errs.Add("number", "is required")
	} else if !phoneNumberPattern.MatchString(p.Number) {
		errs.Add("number", "may only contain digits, punctuation and spaces")
	} else if n := len(digitsOf(p.Number)); n < 7 || n > 15 {
		errs.Add("number", "must contain between 7 and 15 digits")
	}

	if !p.Kind.Valid() {
		errs.Add("kind", "must be one of mobile, landline, fax, voip, tollfree")
	}

	return errs
}

func digitsOf(number string) string {
	var b strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
