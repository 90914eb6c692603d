package enums

import "fmt"

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotificationTypeFinalPriceReady  NotificationType = "final_price_ready"
	NotificationTypeRequestApproved  NotificationType = "request_approved"
	NotificationTypeRequestCancelled NotificationType = "request_cancelled"
	NotificationTypePickupScheduled  NotificationType = "pickup_scheduled"
	NotificationTypePayoutSettled    NotificationType = "payout_settled"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeFinalPriceReady,
	NotificationTypeRequestApproved,
	NotificationTypeRequestCancelled,
	NotificationTypePickupScheduled,
	NotificationTypePayoutSettled,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
