package model

type DeviceType string

const (
	DeviceLight DeviceType = "light"
	DeviceAC    DeviceType = "ac"
	DeviceFan   DeviceType = "fan"
)

// DeviceTypes lists the recognised device types in display order.
var DeviceTypes = []DeviceType{DeviceLight, DeviceAC, DeviceFan}

// Valid reports whether t is one of DeviceTypes.
func (t DeviceType) Valid() bool {
	switch t {
	case DeviceLight, DeviceAC, DeviceFan:
		return true
	}
	return false
}

// Device is a virtual appliance. Energy is a wattage fixed at creation.
type Device struct {
	ID     int64      `json:"id"`
	Name   string     `json:"name"`
	Type   DeviceType `json:"type"`
	Status bool       `json:"status"`
	Energy int        `json:"energy"`
}

// StatusLabel returns "ON" or "OFF".
func (d Device) StatusLabel() string {
	if d.Status {
		return "ON"
	}
	return "OFF"
}
