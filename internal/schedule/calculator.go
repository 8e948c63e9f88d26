package schedule

import "time"

type dailyCalculator struct{}

func (dailyCalculator) NextOccurrence(after time.Time, interval int) time.Time {
	return after.AddDate(0, 0, normalizeInterval(interval))
}

type weeklyCalculator struct{}

func (weeklyCalculator) NextOccurrence(after time.Time, interval int) time.Time {
	return after.AddDate(0, 0, 7*normalizeInterval(interval))
}

type biweeklyCalculator struct{}

func (biweeklyCalculator) NextOccurrence(after time.Time, _ int) time.Time {
	return after.AddDate(0, 0, 14)
}

type monthlyCalculator struct{}

func (monthlyCalculator) NextOccurrence(after time.Time, interval int) time.Time {
	return after.AddDate(0, normalizeInterval(interval), 0)
}

type quarterlyCalculator struct{}

func (quarterlyCalculator) NextOccurrence(after time.Time, _ int) time.Time {
	return after.AddDate(0, 3, 0)
}

type yearlyCalculator struct{}

func (yearlyCalculator) NextOccurrence(after time.Time, _ int) time.Time {
	return after.AddDate(1, 0, 0)
}

type weekdaysCalculator struct{}

func (weekdaysCalculator) NextOccurrence(after time.Time, _ int) time.Time {
	next := after.AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
