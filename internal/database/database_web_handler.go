package database

import (
	"context"

	"gorm.io/gorm"

	"shrike/internal/domain"
)

// WebRequestRepo persists observed HTTP requests.
type WebRequestRepo struct {
	db *gorm.DB
}

func NewWebRequestRepo(db *gorm.DB) *WebRequestRepo {
	return &WebRequestRepo{db: db}
}

func (r *WebRequestRepo) Insert(ctx context.Context, rec *domain.WebRequest) error {
	if err := rec.Validate().OrNil(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *WebRequestRepo) Update(ctx context.Context, rec *domain.WebRequest) error {
	if rec.ID == 0 {
		return ErrNotFound
	}
	if err := rec.Validate().OrNil(); err != nil {
		return err
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.WebRequest{}).
		Where("id = ?", rec.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *WebRequestRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.WebRequest{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *WebRequestRepo) ByID(ctx context.Context, id uint64) (*domain.WebRequest, error) {
	var rec domain.WebRequest
	if err := r.db.WithContext(ctx).Preload("Response").First(&rec, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

// ByRegistrableDomain lists requests against a site, matched on the derived
// column rather than by re-parsing URLs.
func (r *WebRequestRepo) ByRegistrableDomain(ctx context.Context, domainName string) ([]domain.WebRequest, error) {
	var recs []domain.WebRequest
	if err := r.db.WithContext(ctx).
		Where("registrable_domain = ?", domainName).
		Order("id").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// WebResponseRepo persists the answers recorded for requests.
type WebResponseRepo struct {
	db *gorm.DB
}

func NewWebResponseRepo(db *gorm.DB) *WebResponseRepo {
	return &WebResponseRepo{db: db}
}

func (r *WebResponseRepo) Insert(ctx context.Context, rec *domain.WebResponse) error {
	errs := rec.Validate()
	if err := r.checkRequestReference(ctx, rec, &errs); err != nil {
		return err
	}
	if err := errs.OrNil(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *WebResponseRepo) Update(ctx context.Context, rec *domain.WebResponse) error {
	if rec.ID == 0 {
		return ErrNotFound
	}

	errs := rec.Validate()
	if err := r.checkRequestReference(ctx, rec, &errs); err != nil {
		return err
	}
	if err := errs.OrNil(); err != nil {
		return err
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.WebResponse{}).
		Where("id = ?", rec.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *WebResponseRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.WebResponse{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *WebResponseRepo) ByID(ctx context.Context, id uint64) (*domain.WebResponse, error) {
	var rec domain.WebResponse
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

func (r *WebResponseRepo) ByRequestID(ctx context.Context, requestID uint64) (*domain.WebResponse, error) {
	var rec domain.WebResponse
	if err := r.db.WithContext(ctx).
		Where("web_request_id = ?", requestID).
		First(&rec).Error; err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

// checkRequestReference folds the belongs-to constraints into the violation
// list: the request must exist and may only carry one response. On update
// the record's own row is excluded from the one-response check.
func (r *WebResponseRepo) checkRequestReference(ctx context.Context, rec *domain.WebResponse, errs *domain.ValidationErrors) error {
	if errs.HasField("web_request_id") {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.WebRequest{}).
		Where("id = ?", rec.WebRequestID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		errs.Add("web_request_id", "does not reference a stored request")
		return nil
	}

	q := r.db.WithContext(ctx).Model(&domain.WebResponse{}).
		Where("web_request_id = ?", rec.WebRequestID)
	if rec.ID != 0 {
		q = q.Where("id <> ?", rec.ID)
	}
	var existing int64
	if err := q.Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		errs.Add("web_request_id", "already has a response recorded")
	}
	return nil
}
