package registration

import "time"

// Record is a submitted registration as listed on the participant's profile.
// Verified flips once the organisers confirm the payment.
type Record struct {
	ID                   string    `json:"_id"`
	TeamName             string    `json:"teamName"`
	TeamNumber           string    `json:"teamNumber"`
	EventName            string    `json:"eventName"`
	PaymentScreenshotURL string    `json:"paymentScreenshotUrl"`
	CreatedAt            time.Time `json:"createdAt"`
	Verified             bool      `json:"verified"`
}
