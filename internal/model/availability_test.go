package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(570), got)
	assert.Equal(t, "09:30", got.String())

	for _, bad := range []string{"", "9:30", "09:3", "24:00", "09-30", "ab:cd", "09:30:00"} {
		_, err := ParseTimeOfDay(bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

func TestTimeOfDayOn(t *testing.T) {
	date := time.Date(2026, time.October, 19, 13, 45, 0, 0, time.Local)
	assert.Equal(t, time.Date(2026, time.October, 19, 9, 30, 0, 0, time.Local), MustTimeOfDay("09:30").On(date))
	assert.Equal(t, MustTimeOfDay("13:45"), TimeOfDayOf(date))
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, Monday, WeekdayOf(time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Sunday, WeekdayOf(time.Date(2026, time.October, 25, 0, 0, 0, 0, time.UTC)))

	w, err := ParseWeekday(" Friday ")
	require.NoError(t, err)
	assert.Equal(t, Friday, w)

	_, err = ParseWeekday("funday")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAvailabilityTemplateValidate(t *testing.T) {
	var tpl AvailabilityTemplate
	tpl.Set(Monday, DaySchedule{Active: true, Start: "09:00", End: "12:00"})
	require.NoError(t, tpl.Validate())

	tpl.Set(Tuesday, DaySchedule{Active: false, Start: "09:00", End: "12:00"})
	assert.ErrorIs(t, tpl.Validate(), ErrValidation)

	tpl.Set(Tuesday, DaySchedule{Active: true, Start: "12:00", End: "09:00"})
	assert.ErrorIs(t, tpl.Validate(), ErrValidation)

	tpl.Set(Tuesday, DaySchedule{Active: true, Start: "12:00"})
	assert.ErrorIs(t, tpl.Validate(), ErrValidation)
}

func TestSlotOverlaps(t *testing.T) {
	a := Slot{Start: MustTimeOfDay("10:00"), End: MustTimeOfDay("11:00")}

	assert.True(t, a.Overlaps(Slot{Start: MustTimeOfDay("10:30"), End: MustTimeOfDay("11:30")}))
	assert.False(t, a.Overlaps(Slot{Start: MustTimeOfDay("11:00"), End: MustTimeOfDay("12:00")}))
	assert.False(t, a.Overlaps(Slot{Start: MustTimeOfDay("09:00"), End: MustTimeOfDay("10:00")}))
}
