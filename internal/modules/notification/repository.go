package notification

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the durable notification store and the single source of
// truth for read/unread state.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create appends a record and fills in the assigned id and timestamp.
func (r *Repository) Create(ctx context.Context, n *Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return storageError("create", err)
	}
	return nil
}

// ListByUser returns one page over the canonical ordering
// (created_at DESC, id DESC). Same-instant inserts stay deterministic via
// the id tie-break. Paging bounds are the caller's job.
func (r *Repository) ListByUser(ctx context.Context, userID int64, onlyUnread bool, limit, offset int) ([]Notification, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")

	if onlyUnread {
		q = q.Where("is_read = ?", false)
	}

	var out []Notification
	if err := q.Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, storageError("list", err)
	}
	return out, nil
}

func (r *Repository) CountTotal(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, storageError("count total", err)
	}
	return count, nil
}

func (r *Repository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, storageError("count unread", err)
	}
	return count, nil
}

// Counts fetches total and unread in a single round trip.
func (r *Repository) Counts(ctx context.Context, userID int64) (Counts, error) {
	var c Counts
	err := r.db.WithContext(ctx).
		Model(&Notification{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_read THEN 0 ELSE 1 END), 0) AS unread").
		Where("user_id = ?", userID).
		Scan(&c).Error
	if err != nil {
		return Counts{}, storageError("counts", err)
	}
	return c, nil
}

// MarkRead flips a single record to read. found reports whether the record
// exists and belongs to the user; flipped reports whether this call changed
// it. A record owned by another user is never touched and reports found=false.
func (r *Repository) MarkRead(ctx context.Context, userID, id int64) (found, flipped bool, err error) {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Update("is_read", true)

	if res.Error != nil {
		return false, false, storageError("mark read", res.Error)
	}
	if res.RowsAffected > 0 {
		return true, true, nil
	}

	// Nothing flipped: either already read (success) or absent/foreign.
	var count int64
	err = r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Count(&count).Error
	if err != nil {
		return false, false, storageError("mark read", err)
	}
	return count > 0, false, nil
}

// MarkAllRead flips every unread record for the user and returns how many
// were flipped.
func (r *Repository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)

	if res.Error != nil {
		return 0, storageError("mark all read", res.Error)
	}
	return res.RowsAffected, nil
}
