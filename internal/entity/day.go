package entity

import (
	"strconv"
	"time"
)

// Day counts whole days since the Unix epoch. It is the only time unit the
// scheduler understands.
type Day uint64

const secondsPerDay = 24 * 60 * 60

// DayOf converts a wall-clock instant into a Day. The offset moves the day
// boundary, so an offset of -4h keeps late-night practice on the previous day.
func DayOf(t time.Time, offset time.Duration) Day {
	shifted := t.Unix() + int64(offset/time.Second)
	if shifted < 0 {
		return 0
	}
	return Day(shifted / secondsPerDay)
}

// DaysSince reports how many days passed from earlier to d. ok is false when
// earlier lies in the future.
func (d Day) DaysSince(earlier Day) (days uint64, ok bool) {
	if d < earlier {
		return 0, false
	}
	return uint64(d - earlier), true
}

// Time returns midnight UTC of the day.
func (d Day) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

func (d Day) String() string {
	return d.Time().Format(time.DateOnly) + " (#" + strconv.FormatUint(uint64(d), 10) + ")"
}
