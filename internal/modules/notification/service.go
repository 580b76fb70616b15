package notification

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// Push event names; clients treat both as hints to re-poll, not as the
// authoritative delta.
const (
	EventNotify       = "notify"
	EventNotifyCounts = "notifyCounts"
)

// Pusher delivers fire-and-forget events to a user's live connections.
// A failed delivery must never affect the durable write that triggered it.
type Pusher interface {
	Send(userID int64, event string, payload any) error
}

type Service struct {
	repo   *Repository
	pusher Pusher
	log    logrus.FieldLogger
}

func NewService(repo *Repository, pusher Pusher, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, pusher: pusher, log: log}
}

// Create appends a notification and then attempts a best-effort push of the
// new record plus fresh counts to the user's group. The returned DTO comes
// from the durable write alone; the push outcome is invisible to the caller.
func (s *Service) Create(ctx context.Context, req CreateNotificationRequest) (*NotificationResponse, error) {
	if req.UserID <= 0 {
		return nil, validationError("userId")
	}
	if strings.TrimSpace(req.Type) == "" {
		return nil, validationError("type")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, validationError("title")
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, validationError("message")
	}

	n := &Notification{
		UserID:   req.UserID,
		Type:     req.Type,
		Title:    req.Title,
		Message:  req.Message,
		DataJSON: req.DataJSON,
		IsRead:   false,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	dto := ResponseFromEntity(n)
	s.pushNotify(ctx, req.UserID, dto)
	return dto, nil
}

// List normalizes paging bounds and returns one page of DTOs. Pure read,
// no push side effect.
func (s *Service) List(ctx context.Context, userID int64, onlyUnread bool, page, pageSize int) ([]*NotificationResponse, error) {
	page, pageSize = normalizePaging(page, pageSize)

	items, err := s.repo.ListByUser(ctx, userID, onlyUnread, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	out := make([]*NotificationResponse, len(items))
	for i := range items {
		out[i] = ResponseFromEntity(&items[i])
	}
	return out, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *Service) TotalCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountTotal(ctx, userID)
}

func (s *Service) Counts(ctx context.Context, userID int64) (Counts, error) {
	return s.repo.Counts(ctx, userID)
}

// MarkRead reports true when the record exists and belongs to the user,
// whether or not this call flipped it. Counts are pushed only on an actual
// flip, so other live sessions can update their badge.
func (s *Service) MarkRead(ctx context.Context, userID, id int64) (bool, error) {
	found, flipped, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return false, err
	}
	if flipped {
		s.pushCounts(ctx, userID)
	}
	return found, nil
}

// MarkAllRead returns the number of records flipped, zero included.
func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.pushCounts(ctx, userID)
	}
	return n, nil
}

func (s *Service) pushNotify(ctx context.Context, userID int64, dto *NotificationResponse) {
	counts, err := s.repo.Counts(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("notify push skipped: counts query failed")
		return
	}
	if err := s.pusher.Send(userID, EventNotify, notifyPayload{Notification: dto, Counts: counts}); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("notify push failed")
	}
}

func (s *Service) pushCounts(ctx context.Context, userID int64) {
	counts, err := s.repo.Counts(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("counts push skipped: counts query failed")
		return
	}
	if err := s.pusher.Send(userID, EventNotifyCounts, counts); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("counts push failed")
	}
}

func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
