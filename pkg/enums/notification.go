package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeAssignmentOffer    NotificationType = "assignment_offer"
	NotificationTypeAssignmentUpdate   NotificationType = "assignment_update"
	NotificationTypeSwapRequest        NotificationType = "swap_request"
	NotificationTypeTripAlert          NotificationType = "trip_alert"
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeAssignmentOffer,
	NotificationTypeAssignmentUpdate,
	NotificationTypeSwapRequest,
	NotificationTypeTripAlert,
	NotificationTypeSystemAnnouncement,
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
