// progression/streak.go
package progression

import "time"

// RecordActivity feeds "activity happened now" into the day-granularity
// streak machine:
//
//	no prior activity        -> streak = 1
//	same calendar day        -> streak unchanged, timestamp refreshed
//	exactly one day later    -> streak + 1
//	two or more days later   -> streak = 1
//
// A negative day difference (backward clock skew) is treated as same-day so
// a streak never regresses from skew alone.
func (s *State) RecordActivity(now time.Time) {
	if s.LastActivityAt == nil {
		s.Streak = 1
		s.touchActivity(now)
		return
	}

	switch d := calendarDaysBetween(*s.LastActivityAt, now); {
	case d <= 0:
		// Same day repeat (or skew): count unchanged, timestamp refreshed
		// so last-activity-of-day queries stay accurate.
	case d == 1:
		s.Streak++
	default:
		s.Streak = 1
	}
	s.touchActivity(now)
}

// ResetStreak forces the streak to zero. This is an explicit operation
// (admin action, streak freeze expiry), distinct from natural lapse
// handling in RecordActivity.
func (s *State) ResetStreak() {
	s.Streak = 0
	s.LastActivityAt = nil
}

func (s *State) touchActivity(now time.Time) {
	t := now
	s.LastActivityAt = &t
}

// calendarDaysBetween compares calendar days, not timestamps: 23:59 to
// 00:01 the next day is one day apart. The date components are re-anchored
// in UTC so DST-shortened or -lengthened days still count as exactly one.
func calendarDaysBetween(from, to time.Time) int {
	local := to.In(from.Location())
	ay, am, ad := from.Date()
	by, bm, bd := local.Date()
	a := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	b := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}
