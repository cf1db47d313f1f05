package dto

// ExpiryRunResponse is the report returned by the subscription-expiry job
// trigger endpoint.
type ExpiryRunResponse struct {
	Success              bool   `json:"success"`
	Message              string `json:"message,omitempty"`
	Error                string `json:"error,omitempty"`
	NotificationsSent    int    `json:"notificationsSent"`
	SubscriptionsChecked int    `json:"subscriptionsChecked"`
}
