package domain

import "time"

// WebResponse is the answer recorded for a single WebRequest.
type WebResponse struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	// One response per request; re-fetches create a new request row.
	WebRequestID uint64 `gorm:"not null;uniqueIndex"`

	StatusCode int       `gorm:"not null"`
	Headers    HeaderMap `gorm:"type:jsonb"`
	Body       string    `gorm:"type:text"`

	ReceivedAt time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (r *WebResponse) Validate() ValidationErrors {
	var errs ValidationErrors

	if r.WebRequestID == 0 {
		errs.Add("web_request_id", "is required")
	}
	if r.StatusCode < 100 || r.StatusCode > 599 {
		errs.Add("status_code", "must be between 100 and 599")
	}

	return errs
}
