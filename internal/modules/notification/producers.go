package notification

import (
	"context"
	"fmt"
)

// Sink is the narrow contract producer flows (fine issuance, report
// replies, cancellations) depend on. They never hold the concrete Service.
type Sink interface {
	Create(ctx context.Context, req CreateNotificationRequest) (*NotificationResponse, error)
}

var _ Sink = (*Service)(nil)

// NotifyFineIssued raises the notification for a newly issued fine.
func NotifyFineIssued(ctx context.Context, sink Sink, userID, fineID int64, plate string) error {
	data := fmt.Sprintf(`{"fineId":%d}`, fineID)
	_, err := sink.Create(ctx, CreateNotificationRequest{
		UserID:   userID,
		Type:     TypeFine,
		Title:    "Phiếu phạt mới",
		Message:  fmt.Sprintf("Bạn có phiếu phạt mới cho xe %s.", plate),
		DataJSON: &data,
	})
	return err
}

// NotifyFineCancelled raises the notification for a cancelled fine.
func NotifyFineCancelled(ctx context.Context, sink Sink, userID, fineID int64, plate string) error {
	data := fmt.Sprintf(`{"fineId":%d}`, fineID)
	_, err := sink.Create(ctx, CreateNotificationRequest{
		UserID:   userID,
		Type:     TypeFine,
		Title:    "Phiếu phạt đã hủy",
		Message:  fmt.Sprintf("Phiếu phạt cho xe %s đã bị hủy.", plate),
		DataJSON: &data,
	})
	return err
}

// NotifyReportReplied raises the notification for a reply to a citizen report.
func NotifyReportReplied(ctx context.Context, sink Sink, userID, reportID int64) error {
	data := fmt.Sprintf(`{"reportId":%d}`, reportID)
	_, err := sink.Create(ctx, CreateNotificationRequest{
		UserID:   userID,
		Type:     TypeReport,
		Title:    "Phản hồi báo cáo",
		Message:  fmt.Sprintf("Báo cáo số %d của bạn đã được phản hồi.", reportID),
		DataJSON: &data,
	})
	return err
}
