package service

import (
	"math"
	"sort"
	"time"

	"habitboard/internal/clock"
	"habitboard/internal/domain/entity"
	"habitboard/internal/domain/service"
	"habitboard/internal/session"
)

type statsService struct {
	clock clock.Clock
}

// NewStatsService creates the aggregation engine.
func NewStatsService(clk clock.Clock) service.StatsService {
	return &statsService{clock: clk}
}

// rate is the single rounding convention: round(100*completed/total), and
// exactly 0 when total is 0. Division by zero never happens anywhere in
// the engine.
func rate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

func (s *statsService) DailyStats(sess *session.Session, date string) service.DayStats {
	sess.Lock()
	defer sess.Unlock()
	return s.dailyStatsLocked(sess, date)
}

func (s *statsService) dailyStatsLocked(sess *session.Session, date string) service.DayStats {
	ds := service.DayStats{Date: date}

	if date == s.clock.Today() {
		// Today is not yet in history; read the live store filtered to
		// today's weekday.
		for _, h := range sess.ForWeekday(s.clock.Now().Weekday()) {
			ds.Total++
			if h.Completed {
				ds.Completed++
			}
		}
	} else if rec, ok := sess.History(date); ok {
		ds.Total = len(rec.Entries)
		ds.Completed = rec.CompletedCount()
	}

	ds.Rate = rate(ds.Completed, ds.Total)
	return ds
}

func (s *statsService) RangeStats(sess *session.Session, dates []string) service.RangeStats {
	sess.Lock()
	defer sess.Unlock()
	return s.rangeStatsLocked(sess, dates)
}

func (s *statsService) rangeStatsLocked(sess *session.Session, dates []string) service.RangeStats {
	var rs service.RangeStats

	for _, date := range dates {
		ds := s.dailyStatsLocked(sess, date)
		if ds.Total == 0 {
			continue
		}

		rs.DaysWithData++
		rs.TotalTasks += ds.Total
		rs.TotalCompleted += ds.Completed

		d := date
		if rs.BestDay.Date == nil || ds.Rate > rs.BestDay.Rate {
			rs.BestDay = service.DayRef{Date: &d, Rate: ds.Rate}
		}
		if rs.WorstDay.Date == nil || ds.Rate < rs.WorstDay.Rate {
			rs.WorstDay = service.DayRef{Date: &d, Rate: ds.Rate}
		}
	}

	rs.OverallRate = rate(rs.TotalCompleted, rs.TotalTasks)
	// AvgRate intentionally duplicates OverallRate instead of averaging
	// per-day rates; callers depend on the historical values.
	rs.AvgRate = rs.OverallRate
	return rs
}

func (s *statsService) WeekComparison(sess *session.Session) service.WeekComparison {
	sess.Lock()
	defer sess.Unlock()

	thisWeek := s.rangeStatsLocked(sess, clock.LastNDates(s.clock, 7))
	lastWeek := s.rangeStatsLocked(sess, clock.DatesBack(s.clock, 7, 7))

	return service.WeekComparison{
		ThisWeek:   thisWeek,
		LastWeek:   lastWeek,
		Difference: thisWeek.OverallRate - lastWeek.OverallRate,
	}
}

func (s *statsService) GroupBreakdown(sess *session.Session, dates []string) []service.GroupStats {
	sess.Lock()
	defer sess.Unlock()

	today := s.clock.Today()
	groups := sess.Groups()

	out := make([]service.GroupStats, 0, len(groups))
	for _, g := range groups {
		gs := service.GroupStats{
			Name:          g.Name,
			ScheduledDays: g.DayNames(),
			IsGrouped:     g.IsGrouped(),
		}

		for _, date := range dates {
			weekday, err := clock.WeekdayOf(date)
			if err != nil {
				continue
			}
			inst, scheduled := g.Members[weekday]
			if !scheduled {
				continue
			}

			gs.TotalCount++

			var completed bool
			if date == today {
				completed = inst.Completed
			} else if rec, ok := sess.History(date); ok {
				completed = historyCompletion(rec, inst)
			}
			if completed {
				gs.CompletedCount++
			}
		}

		gs.Rate = rate(gs.CompletedCount, gs.TotalCount)
		out = append(out, gs)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Rate > out[j].Rate })
	return out
}

// historyCompletion finds the archived completion of one instance: by
// habit ID first, falling back to a group ID match so rows survive an
// instance being deleted and recreated under a new ID.
func historyCompletion(rec *entity.HistoryRecord, inst *entity.Habit) bool {
	for _, e := range rec.Entries {
		if e.HabitID == inst.ID {
			return e.Completed
		}
	}
	if inst.GroupID != nil {
		for _, e := range rec.Entries {
			if e.GroupID != nil && *e.GroupID == *inst.GroupID {
				return e.Completed
			}
		}
	}
	return false
}

func (s *statsService) DailySeries(sess *session.Session, dates []string) []service.DayPoint {
	sess.Lock()
	defer sess.Unlock()

	points := make([]service.DayPoint, 0, len(dates))
	for _, date := range dates {
		ds := s.dailyStatsLocked(sess, date)
		label := ""
		if weekday, err := clock.WeekdayOf(date); err == nil {
			label = weekday.String()[:3]
		}
		points = append(points, service.DayPoint{
			Date:      date,
			Label:     label,
			Total:     ds.Total,
			Completed: ds.Completed,
			Rate:      ds.Rate,
		})
	}
	return points
}

func (s *statsService) CalendarMonth(sess *session.Session, year int, month time.Month) service.MonthStats {
	sess.Lock()
	defer sess.Unlock()

	dates := clock.MonthDates(year, month)
	ms := service.MonthStats{
		Year:  year,
		Month: month,
		Days:  make([]service.CalendarDay, 0, len(dates)),
	}

	for i, date := range dates {
		ds := s.dailyStatsLocked(sess, date)
		ms.Days = append(ms.Days, service.CalendarDay{
			Date:      date,
			Day:       i + 1,
			Total:     ds.Total,
			Completed: ds.Completed,
			Rate:      ds.Rate,
			HasData:   ds.Total > 0,
		})
	}

	ms.Summary = s.rangeStatsLocked(sess, dates)
	return ms
}
