package services

import (
	"errors"
	"fmt"
	"time"

	"dwelling-dashboard/internal/models"
)

// ErrSliderOutOfRange is returned when a slider pair does not satisfy 0 <= low < high <= length
var ErrSliderOutOfRange = errors.New("slider positions out of range")

// ValidateSlider checks a slider pair against the number of positions it spans.
// high is exclusive.
func ValidateSlider(low, high, length int) error {
	if low < 0 || low >= high || high > length {
		return fmt.Errorf("%w: [%d, %d) over %d positions", ErrSliderOutOfRange, low, high, length)
	}
	return nil
}

// TranslateRange maps slider positions onto the timestamps of a series index.
// The window spans index[low] through index[high-1].
func TranslateRange(low, high int, index []time.Time) (models.Window, error) {
	if err := ValidateSlider(low, high, len(index)); err != nil {
		return models.Window{}, err
	}

	return models.Window{
		StartIndex: low,
		EndIndex:   high - 1,
		Start:      index[low],
		End:        index[high-1],
	}, nil
}

// DayIndices converts hourly slider positions into day positions: low/24 and (high-1)/24
func DayIndices(low, high int) (int, int) {
	return low / models.HoursPerDay, (high - 1) / models.HoursPerDay
}

// TranslateDayRange maps hourly slider positions onto the day keys of a matrix
func TranslateDayRange(low, high int, days []string) (models.DayWindow, error) {
	if low < 0 || low >= high {
		return models.DayWindow{}, fmt.Errorf("%w: [%d, %d)", ErrSliderOutOfRange, low, high)
	}

	dayLow, dayHigh := DayIndices(low, high)
	if dayHigh >= len(days) {
		return models.DayWindow{}, fmt.Errorf("%w: day %d over %d days", ErrSliderOutOfRange, dayHigh, len(days))
	}

	return models.DayWindow{
		StartIndex: dayLow,
		EndIndex:   dayHigh,
		Start:      days[dayLow],
		End:        days[dayHigh],
	}, nil
}
