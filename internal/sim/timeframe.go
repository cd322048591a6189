// SPDX-License-Identifier: MIT

package sim

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeFrame is the unit of one simulation step. Named units serialize as
// their bare string ("Day"); a custom frame serializes as {"Custom": days}.
type TimeFrame struct {
	Unit       string
	CustomDays float64 // calendar days per step, Unit == "Custom" only
}

// Named time frame units.
const (
	UnitMicrosecond = "Microsecond"
	UnitMillisecond = "Millisecond"
	UnitSecond      = "Second"
	UnitMinute      = "Minute"
	UnitFiveMin     = "FiveMin"
	UnitFifteenMin  = "FifteenMin"
	UnitThirtyMin   = "ThirtyMin"
	UnitHour        = "Hour"
	UnitDay         = "Day"
	UnitWeek        = "Week"
	UnitMonth       = "Month"
	UnitQuarter     = "Quarter"
	UnitYear        = "Year"
	UnitCustom      = "Custom"
)

var unitDays = map[string]float64{
	UnitMicrosecond: 1.0 / 86_400_000_000,
	UnitMillisecond: 1.0 / 86_400_000,
	UnitSecond:      1.0 / 86_400,
	UnitMinute:      1.0 / 1440,
	UnitFiveMin:     5.0 / 1440,
	UnitFifteenMin:  15.0 / 1440,
	UnitThirtyMin:   30.0 / 1440,
	UnitHour:        1.0 / 24,
	UnitDay:         1,
	UnitWeek:        7,
	UnitMonth:       30,
	UnitQuarter:     91,
	UnitYear:        365,
}

// Frame returns the named time frame for a unit.
func Frame(unit string) TimeFrame { return TimeFrame{Unit: unit} }

// CustomFrame returns a custom time frame spanning the given calendar days.
func CustomFrame(days float64) TimeFrame {
	return TimeFrame{Unit: UnitCustom, CustomDays: days}
}

// Days returns the calendar days one step of this frame spans.
func (tf TimeFrame) Days() float64 {
	if tf.Unit == UnitCustom {
		return tf.CustomDays
	}
	return unitDays[tf.Unit]
}

// Interval returns the frame as a duration, used for historical bucketing.
func (tf TimeFrame) Interval() time.Duration {
	return time.Duration(tf.Days() * 24 * float64(time.Hour))
}

// Valid reports whether the frame names a known unit.
func (tf TimeFrame) Valid() bool {
	if tf.Unit == UnitCustom {
		return tf.CustomDays > 0
	}
	_, ok := unitDays[tf.Unit]
	return ok
}

func (tf TimeFrame) String() string {
	if tf.Unit == UnitCustom {
		return fmt.Sprintf("Custom(%g)", tf.CustomDays)
	}
	return tf.Unit
}

// MarshalJSON implements the externally tagged wire encoding.
func (tf TimeFrame) MarshalJSON() ([]byte, error) {
	if tf.Unit == UnitCustom {
		return json.Marshal(map[string]float64{UnitCustom: tf.CustomDays})
	}
	return json.Marshal(tf.Unit)
}

// UnmarshalJSON accepts "Day" style strings and {"Custom": days} objects.
func (tf *TimeFrame) UnmarshalJSON(data []byte) error {
	var unit string
	if err := json.Unmarshal(data, &unit); err == nil {
		tf.Unit = unit
		tf.CustomDays = 0
		if !tf.Valid() {
			return fmt.Errorf("unknown time frame %q", unit)
		}
		return nil
	}
	var custom map[string]float64
	if err := json.Unmarshal(data, &custom); err != nil {
		return fmt.Errorf("invalid time frame: %s", data)
	}
	days, ok := custom[UnitCustom]
	if !ok || len(custom) != 1 || days <= 0 {
		return fmt.Errorf("invalid custom time frame: %s", data)
	}
	tf.Unit = UnitCustom
	tf.CustomDays = days
	return nil
}
