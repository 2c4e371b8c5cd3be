package services

import (
	"context"
	"time"

	"dwelling-dashboard/internal/models"
	"dwelling-dashboard/pkg/logging"
	"dwelling-dashboard/pkg/metrics"
)

// sliderMarkLayout labels the slider ends, e.g. Dec 31, 2018
const sliderMarkLayout = "Jan 2, 2006"

// WindowService answers slider events with the visible window of every panel.
// The slider spans the electricity series, as do the electricity and heatmap
// panels; temperature and humidity follow the indoor series.
type WindowService struct {
	dataset *models.Dataset
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewWindowService creates a new window service over a built dataset
func NewWindowService(dataset *models.Dataset, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *WindowService {
	return &WindowService{
		dataset: dataset,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Domain returns the number of slider positions
func (s *WindowService) Domain() int {
	return s.dataset.Electricity.Len()
}

// Slider returns the initial slider state: the whole domain selected and its
// two ends labelled with the first and last electricity timestamps.
func (s *WindowService) Slider() models.Slider {
	n := s.Domain()

	slider := models.Slider{
		Min:   0,
		Max:   n,
		Step:  1,
		Value: [2]int{0, n},
		Marks: map[int]string{},
	}
	if n > 0 {
		index := s.dataset.Electricity.Index
		slider.Marks[0] = index[0].Format(sliderMarkLayout)
		slider.Marks[n] = index[n-1].Format(sliderMarkLayout)
	}

	return slider
}

// Resolve validates a slider pair against the domain and returns a fresh ViewState
func (s *WindowService) Resolve(ctx context.Context, low, high int) (models.ViewState, error) {
	if err := ValidateSlider(low, high, s.Domain()); err != nil {
		return models.ViewState{}, err
	}

	state := models.ViewState{
		Low:         low,
		High:        high,
		Electricity: lineWindow(low, high, s.dataset.Electricity.Index),
		Temperature: lineWindow(low, high, s.dataset.Indoor.Index),
		Humidity:    lineWindow(low, high, s.dataset.Indoor.Index),
		Heatmap:     dayWindow(low, high, s.dataset.Heatmap.Keys()),
	}

	s.metrics.SliderEventsTotal.Inc()
	s.logger.Debug(ctx, "[WINDOW_RESOLVE] Slider event resolved", logging.Fields{
		"low":  low,
		"high": high,
	})

	return state, nil
}

// clampSlider fits a valid slider pair into a panel with n positions
func clampSlider(low, high, n int) (int, int) {
	if low > n-1 {
		low = n - 1
	}
	if high > n {
		high = n
	}
	if high <= low {
		high = low + 1
	}
	return low, high
}

func lineWindow(low, high int, index []time.Time) *models.Window {
	if len(index) == 0 {
		return nil
	}

	low, high = clampSlider(low, high, len(index))
	w, err := TranslateRange(low, high, index)
	if err != nil {
		return nil
	}
	return &w
}

func dayWindow(low, high int, days []string) *models.DayWindow {
	if len(days) == 0 {
		return nil
	}

	low, high = clampSlider(low, high, len(days)*models.HoursPerDay)
	w, err := TranslateDayRange(low, high, days)
	if err != nil {
		return nil
	}
	return &w
}
