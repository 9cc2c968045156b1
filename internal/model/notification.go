package model

type Category string

const (
	CategorySystem     Category = "system"
	CategorySecurity   Category = "security"
	CategoryAutomation Category = "automation"
	CategoryDoor       Category = "door"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

var severityIcons = map[Severity]string{
	SeverityInfo:    "ℹ️",
	SeverityWarning: "⚠️",
	SeverityDanger:  "⛔",
}

// Icon returns the glyph shown next to alerts of this severity.
func (s Severity) Icon() string {
	return severityIcons[s]
}

// MaxNotifications is the number of alerts kept; older ones are dropped.
const MaxNotifications = 25

// TimestampLayout is the human readable capture time stored on each alert.
const TimestampLayout = "Jan 2, 2006, 3:04:05 PM"

type Notification struct {
	ID        string   `json:"id"`
	Message   string   `json:"message"`
	Category  Category `json:"category"`
	Severity  Severity `json:"severity"`
	Icon      string   `json:"icon"`
	Timestamp string   `json:"timestamp"`
	Read      bool     `json:"read"`
}
