package services_test

import (
	"testing"
	"time"

	"linear-gamification/services"

	. "github.com/smartystreets/goconvey/convey"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func days(values ...string) []time.Time {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		out = append(out, day(v))
	}
	return out
}

func TestWorkweekStreaks(t *testing.T) {
	Convey("Given a Friday/Saturday weekend", t, func() {
		w := services.NewWorkweek(services.DefaultRestDays...)

		Convey("Then Friday and Saturday are rest days", func() {
			So(w.IsWorkday(day("2026-10-16")), ShouldBeFalse)
			So(w.IsWorkday(day("2026-10-17")), ShouldBeFalse)
			So(w.IsWorkday(day("2026-10-18")), ShouldBeTrue)
		})

		Convey("When tasks are completed on five consecutive workdays", func() {
			dates := days("2026-10-11", "2026-10-12", "2026-10-13", "2026-10-14", "2026-10-15")

			Convey("Then both streaks are 5", func() {
				So(w.CurrentStreak(dates, day("2026-10-15")), ShouldEqual, 5)
				So(w.MaxStreak(dates), ShouldEqual, 5)
			})
		})

		Convey("When the weekend falls between completions", func() {
			dates := days("2026-10-14", "2026-10-15", "2026-10-18")

			Convey("Then the rest days do not break the streak", func() {
				So(w.CurrentStreak(dates, day("2026-10-18")), ShouldEqual, 3)
				So(w.MaxStreak(dates), ShouldEqual, 3)
			})
		})

		Convey("When a task is completed on a rest day", func() {
			dates := days("2026-10-15", "2026-10-16", "2026-10-18")

			Convey("Then the rest day counts toward the streak", func() {
				So(w.CurrentStreak(dates, day("2026-10-18")), ShouldEqual, 3)
				So(w.MaxStreak(dates), ShouldEqual, 3)
			})
		})

		Convey("When a workday is skipped", func() {
			dates := days("2026-10-12", "2026-10-14")

			Convey("Then the streak restarts", func() {
				So(w.CurrentStreak(dates, day("2026-10-14")), ShouldEqual, 1)
				So(w.MaxStreak(dates), ShouldEqual, 1)
			})
		})

		Convey("When today is a workday without a completion", func() {
			dates := days("2026-10-13", "2026-10-14")
			So(w.CurrentStreak(dates, day("2026-10-15")), ShouldEqual, 0)
			So(w.MaxStreak(dates), ShouldEqual, 2)
		})

		Convey("When today is a rest day without a completion", func() {
			dates := days("2026-10-14", "2026-10-15")
			So(w.CurrentStreak(dates, day("2026-10-17")), ShouldEqual, 2)
		})

		Convey("When several tasks land on the same day", func() {
			dates := days("2026-10-12", "2026-10-12", "2026-10-13")
			So(w.CurrentStreak(dates, day("2026-10-13")), ShouldEqual, 2)
			So(w.MaxStreak(dates), ShouldEqual, 2)
		})

		Convey("When the history is out of order", func() {
			dates := days("2026-10-13", "2026-10-11", "2026-10-12")
			So(w.MaxStreak(dates), ShouldEqual, 3)
		})

		Convey("When there is no history", func() {
			So(w.CurrentStreak(nil, day("2026-10-18")), ShouldEqual, 0)
			So(w.MaxStreak(nil), ShouldEqual, 0)
		})

		Convey("Then the current streak never exceeds the max streak", func() {
			start := day("2026-09-28")
			today := start.AddDate(0, 0, 13)
			for mask := 1; mask < 1<<14; mask++ {
				var dates []time.Time
				for i := 0; i < 14; i++ {
					if mask&(1<<i) != 0 {
						dates = append(dates, start.AddDate(0, 0, i))
					}
				}
				cur, best := w.CurrentStreak(dates, today), w.MaxStreak(dates)
				if cur > best {
					So(cur, ShouldBeLessThanOrEqualTo, best)
				}
			}
		})
	})

	Convey("Given a week with only rest days", t, func() {
		all := []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday}
		w := services.NewWorkweek(all...)

		Convey("Then the current streak walk still terminates", func() {
			So(w.HasWorkdays(), ShouldBeFalse)
			So(w.CurrentStreak(days("2026-10-10", "2026-10-14"), day("2026-10-18")), ShouldEqual, 2)
		})
	})

	Convey("Given a week without rest days", t, func() {
		w := services.NewWorkweek()

		Convey("Then every missing day breaks the streak", func() {
			dates := days("2026-10-14", "2026-10-15", "2026-10-18")
			So(w.CurrentStreak(dates, day("2026-10-18")), ShouldEqual, 1)
			So(w.MaxStreak(dates), ShouldEqual, 2)
		})
	})
}

func TestParseWeekdays(t *testing.T) {
	Convey("Given weekday names", t, func() {
		Convey("When full and short names are mixed", func() {
			got, err := services.ParseWeekdays([]string{"Friday", " sat ", ""})
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []time.Weekday{time.Friday, time.Saturday})
		})

		Convey("When a name is unknown", func() {
			_, err := services.ParseWeekdays([]string{"funday"})
			So(err, ShouldNotBeNil)
		})
	})
}
