package database

import (
	"context"

	"gorm.io/gorm"

	"shrike/internal/domain"
)

// PhoneRepo persists phone numbers keyed by their normalized digit form.
type PhoneRepo struct {
	db *gorm.DB
}

func NewPhoneRepo(db *gorm.DB) *PhoneRepo {
	return &PhoneRepo{db: db}
}

func (r *PhoneRepo) Insert(ctx context.Context, rec *domain.PhoneNumber) error {
	errs := rec.Validate()
	if err := r.checkUniqueness(ctx, rec, &errs); err != nil {
		return err
	}
	if err := errs.OrNil(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

// Update saves every field of an existing record; the save hook rederives
// the Digits column from whatever Number now says.
func (r *PhoneRepo) Update(ctx context.Context, rec *domain.PhoneNumber) error {
	if rec.ID == 0 {
		return ErrNotFound
	}

	errs := rec.Validate()
	if err := r.checkUniqueness(ctx, rec, &errs); err != nil {
		return err
	}
	if err := errs.OrNil(); err != nil {
		return err
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.PhoneNumber{}).
		Where("id = ?", rec.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *PhoneRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.PhoneNumber{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PhoneRepo) ByID(ctx context.Context, id uint64) (*domain.PhoneNumber, error) {
	var rec domain.PhoneNumber
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

func (r *PhoneRepo) checkUniqueness(ctx context.Context, rec *domain.PhoneNumber, errs *domain.ValidationErrors) error {
	if errs.HasField("number") || errs.HasField("kind") {
		return nil
	}

	q := r.db.WithContext(ctx).Model(&domain.PhoneNumber{}).
		Where("digits = ? AND kind = ?", rec.NormalizedDigits(), rec.Kind)
	if rec.ID != 0 {
		q = q.Where("id <> ?", rec.ID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		errs.Add("number", "is already recorded for this kind")
	}
	return nil
}

// UsernameRepo persists account handles.
type UsernameRepo struct {
	db *gorm.DB
}

func NewUsernameRepo(db *gorm.DB) *UsernameRepo {
	return &UsernameRepo{db: db}
}

func (r *UsernameRepo) Insert(ctx context.Context, rec *domain.Username) error {
	errs := rec.Validate()
	if err := r.checkUniqueness(ctx, rec, &errs); err != nil {
		return err
	}
	if err := errs.OrNil(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *UsernameRepo) Update(ctx context.Context, rec *domain.Username) error {
	if rec.ID == 0 {
		return ErrNotFound
	}

	errs := rec.Validate()
	if err := r.checkUniqueness(ctx, rec, &errs); err != nil {
		return err
	}
	if err := errs.OrNil(); err != nil {
		return err
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Username{}).
		Where("id = ?", rec.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *UsernameRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Username{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ByID loads a username with its captured credentials.
func (r *UsernameRepo) ByID(ctx context.Context, id uint64) (*domain.Username, error) {
	var rec domain.Username
	if err := r.db.WithContext(ctx).Preload("Credentials").First(&rec, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

func (r *UsernameRepo) ByPlatform(ctx context.Context, platform string) ([]domain.Username, error) {
	var recs []domain.Username
	if err := r.db.WithContext(ctx).
		Where("platform = ?", platform).
		Order("id").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *UsernameRepo) checkUniqueness(ctx context.Context, rec *domain.Username, errs *domain.ValidationErrors) error {
	if errs.HasField("name") || errs.HasField("platform") {
		return nil
	}

	q := r.db.WithContext(ctx).Model(&domain.Username{}).
		Where("name = ? AND platform = ?", rec.Name, rec.Platform)
	if rec.ID != 0 {
		q = q.Where("id <> ?", rec.ID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		errs.Add("name", "is already recorded for this platform")
	}
	return nil
}

// CredentialRepo persists captured secrets.
type CredentialRepo struct {
	db *gorm.DB
}

func NewCredentialRepo(db *gorm.DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

func (r *CredentialRepo) Insert(ctx context.Context, rec *domain.Credential) error {
	errs := rec.Validate()
	if err := r.checkReference(ctx, rec, &errs); err != nil {
		return err
	}
	if err := errs.OrNil(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *CredentialRepo) Update(ctx context.Context, rec *domain.Credential) error {
	if rec.ID == 0 {
		return ErrNotFound
	}

	errs := rec.Validate()
	if err := r.checkReference(ctx, rec, &errs); err != nil {
		return err
	}
	if err := errs.OrNil(); err != nil {
		return err
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Credential{}).
		Where("id = ?", rec.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *CredentialRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Credential{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CredentialRepo) ByID(ctx context.Context, id uint64) (*domain.Credential, error) {
	var rec domain.Credential
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

func (r *CredentialRepo) ByUsernameID(ctx context.Context, usernameID uint64) ([]domain.Credential, error) {
	var recs []domain.Credential
	if err := r.db.WithContext(ctx).
		Where("username_id = ?", usernameID).
		Order("id").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *CredentialRepo) checkReference(ctx context.Context, rec *domain.Credential, errs *domain.ValidationErrors) error {
	if errs.HasField("username_id") {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Username{}).
		Where("id = ?", rec.UsernameID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		errs.Add("username_id", "does not reference a stored username")
	}
	return nil
}
