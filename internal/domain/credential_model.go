package domain

import "time"

// Credential is a captured secret attributed to a Username. The secret is
// evidence collected during reconnaissance and is stored exactly as found.
type Credential struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	UsernameID uint64 `gorm:"not null;index"`

	Secret string `gorm:"size:1024;not null"`
	Origin string `gorm:"size:512;not null;default:''"`

	CapturedAt time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (c *Credential) Validate() ValidationErrors {
	var errs ValidationErrors

	if c.UsernameID == 0 {
		errs.Add("username_id", "is required")
	}
	if c.Secret == "" {
		errs.Add("secret", "is required")
	}

	return errs
}
