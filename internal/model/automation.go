package model

// Automation links a device to an action. DeviceID is a weak reference and
// may point at a device that no longer exists.
type Automation struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	DeviceID string `json:"devId"`
	Action   string `json:"action"`
}
