package timeutil

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_DaySlots(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("48 slots, 30 minutes apart, starting at UTC midnight", prop.ForAll(
		func(ms int64) bool {
			selected := time.UnixMilli(ms)
			slots := GenerateDaySlots(selected)
			if len(slots) != SlotsPerDay {
				return false
			}
			u := selected.UTC()
			anchor := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
			for i, s := range slots {
				if !s.Equal(anchor.Add(time.Duration(i) * 30 * time.Minute)) {
					return false
				}
			}
			return true
		},
		gen.Int64Range(946684800000, 4102444800000), // 2000-01-01 .. 2100-01-01
	))

	properties.TestingRun(t)
}

func TestProperty_DateKeyStableWithinDay(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	seoul, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatal(err)
	}

	properties.Property("dateKey ignores time of day", prop.ForAll(
		func(dayOffset int, secA, secB int) bool {
			day := time.Date(2020, 1, 1, 0, 0, 0, 0, seoul).AddDate(0, 0, dayOffset)
			a := day.Add(time.Duration(secA) * time.Second)
			b := day.Add(time.Duration(secB) * time.Second)
			return DateKey(a) == DateKey(b) && IsSameCivilDay(a, b)
		},
		gen.IntRange(0, 3650),
		gen.IntRange(0, 86399),
		gen.IntRange(0, 86399),
	))

	properties.TestingRun(t)
}
