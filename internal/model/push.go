package model

import "time"

// PushSubscription is a browser registered to receive alert notifications
// for the user with Email.
type PushSubscription struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}
