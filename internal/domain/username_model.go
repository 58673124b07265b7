package domain

import "time"

// Username is an account handle discovered on some platform.
type Username struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Name     string `gorm:"size:255;not null;uniqueIndex:idx_username_identity,priority:1"`
	Platform string `gorm:"size:255;not null;uniqueIndex:idx_username_identity,priority:2"`

	ProfileURL string `gorm:"size:2048;not null;default:''"`

	Credentials []Credential `gorm:"foreignKey:UsernameID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (u *Username) Validate() ValidationErrors {
	var errs ValidationErrors

	if u.Name == "" {
		errs.Add("name", "is required")
	}
	if u.Platform == "" {
		errs.Add("platform", "is required")
	}

	return errs
}
