// Package entity defines the core business entities for the domain layer.
package entity

// TimeFrame selects the window used by reports.
type TimeFrame string

const (
	TimeFrameThisWeek   TimeFrame = "this-week"
	TimeFrameThisMonth  TimeFrame = "this-month"
	TimeFrameLast30Days TimeFrame = "last-30-days"
	TimeFrameLast90Days TimeFrame = "last-90-days"
)

// DefaultTimeFrame is selected when a report session starts.
const DefaultTimeFrame = TimeFrameThisMonth

var timeFrameLabels = map[TimeFrame]string{
	TimeFrameThisWeek:   "This Week",
	TimeFrameThisMonth:  "This Month",
	TimeFrameLast30Days: "Last 30 Days",
	TimeFrameLast90Days: "Last 90 Days",
}

// TimeFrames returns every time frame in display order.
func TimeFrames() []TimeFrame {
	return []TimeFrame{TimeFrameThisWeek, TimeFrameThisMonth, TimeFrameLast30Days, TimeFrameLast90Days}
}

// IsValid reports whether tf is a known time frame.
func (tf TimeFrame) IsValid() bool {
	_, ok := timeFrameLabels[tf]
	return ok
}

// Label returns the display label, or an empty string for unknown frames.
func (tf TimeFrame) Label() string {
	return timeFrameLabels[tf]
}

// ParseTimeFrame accepts the slug form ("last-30-days").
func ParseTimeFrame(s string) (TimeFrame, bool) {
	tf := TimeFrame(s)
	if !tf.IsValid() {
		return "", false
	}
	return tf, true
}
