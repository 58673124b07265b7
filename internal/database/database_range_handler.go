package database

import (
	"context"

	"gorm.io/gorm"

	"shrike/internal/domain"
	"shrike/internal/ipcodec"
)

// RangeRepo persists AddressRange records and answers containment lookups.
type RangeRepo struct {
	db *gorm.DB
}

func NewRangeRepo(db *gorm.DB) *RangeRepo {
	return &RangeRepo{db: db}
}

// Insert validates the record, folds the uniqueness check into the same
// violation list, and creates the row. Nothing reaches storage when any
// violation exists.
func (r *RangeRepo) Insert(ctx context.Context, rec *domain.AddressRange) error {
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
// the binary keys from whatever the textual bounds now say.
func (r *RangeRepo) Update(ctx context.Context, rec *domain.AddressRange) error {
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
	if err := r.db.WithContext(ctx).Model(&domain.AddressRange{}).
		Where("id = ?", rec.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *RangeRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&domain.AddressRange{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RangeRepo) ByID(ctx context.Context, id uint64) (*domain.AddressRange, error) {
	var rec domain.AddressRange
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

// ByNumber lists every range announced by the given autonomous system,
// in insertion order.
func (r *RangeRepo) ByNumber(ctx context.Context, asn uint32) ([]domain.AddressRange, error) {
	var recs []domain.AddressRange
	if err := r.db.WithContext(ctx).
		Where("number = ?", asn).
		Order("id").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// FindContaining returns a range whose bounds enclose the given address, or
// ErrNotFound. The query compares the codec's binary keys, so the storage
// engine answers from the ordered key indexes without parsing any addresses.
// Filtering on version keeps IPv4 and IPv6 keys from ever being compared.
// When ranges overlap, the lowest-id match wins; no specificity ordering is
// promised.
func (r *RangeRepo) FindContaining(ctx context.Context, ipText string) (*domain.AddressRange, error) {
	addr, err := ipcodec.Parse(ipText)
	if err != nil {
		return nil, err
	}
	key, err := ipcodec.Encode(addr)
	if err != nil {
		return nil, err
	}

	var rec domain.AddressRange
	err = r.db.WithContext(ctx).
		Where("version = ? AND range_start_key <= ? AND range_end_key >= ?",
			domain.IPVersionOf(addr), key, key).
		Order("id").
		First(&rec).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

// checkUniqueness appends a violation when another row already claims the
// same (number, range_start, range_end) identity. Skipped while those fields
// carry violations of their own; half-validated values would only produce a
// misleading duplicate message.
func (r *RangeRepo) checkUniqueness(ctx context.Context, rec *domain.AddressRange, errs *domain.ValidationErrors) error {
	if errs.HasField("number") || errs.HasField("range_start") || errs.HasField("range_end") {
		return nil
	}

	q := r.db.WithContext(ctx).Model(&domain.AddressRange{}).
		Where("number = ? AND range_start = ? AND range_end = ?", rec.Number, rec.RangeStart, rec.RangeEnd)
	if rec.ID != 0 {
		q = q.Where("id <> ?", rec.ID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		errs.Add("number", "is already recorded for these bounds")
	}
	return nil
}
