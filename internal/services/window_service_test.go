package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwelling-dashboard/internal/models"
)

func sampleDataset(t *testing.T) *models.Dataset {
	t.Helper()
	logger, m := testDeps(t)
	ds, err := NewDatasetService(sampleSource(), DefaultSpecs("indoor.csv", "outdoor.csv", "electricity.csv"), true, logger, m).
		Build(context.Background())
	require.NoError(t, err)
	return ds
}

func TestWindowService_Slider(t *testing.T) {
	logger, m := testDeps(t)
	svc := NewWindowService(sampleDataset(t), logger, m)

	slider := svc.Slider()

	assert.Equal(t, 0, slider.Min)
	assert.Equal(t, 26, slider.Max)
	assert.Equal(t, 1, slider.Step)
	assert.Equal(t, [2]int{0, 26}, slider.Value)
	assert.Equal(t, map[int]string{0: "Jan 1, 2019", 26: "Jan 2, 2019"}, slider.Marks)
}

func TestWindowService_SliderEmpty(t *testing.T) {
	logger, m := testDeps(t)
	svc := NewWindowService(&models.Dataset{}, logger, m)

	slider := svc.Slider()

	assert.Equal(t, 0, slider.Max)
	assert.Empty(t, slider.Marks)
}

func TestWindowService_Resolve(t *testing.T) {
	logger, m := testDeps(t)
	ds := sampleDataset(t)
	svc := NewWindowService(ds, logger, m)

	state, err := svc.Resolve(context.Background(), 1, 25)
	require.NoError(t, err)

	assert.Equal(t, 1, state.Low)
	assert.Equal(t, 25, state.High)

	require.NotNil(t, state.Electricity)
	assert.Equal(t, ds.Electricity.Index[1], state.Electricity.Start)
	assert.Equal(t, ds.Electricity.Index[24], state.Electricity.End)

	// indoor holds 3 hours, the window is clamped to it
	require.NotNil(t, state.Temperature)
	assert.Equal(t, 1, state.Temperature.StartIndex)
	assert.Equal(t, 2, state.Temperature.EndIndex)
	assert.Equal(t, state.Temperature, state.Humidity)

	require.NotNil(t, state.Heatmap)
	assert.Equal(t, "2019-1-1", state.Heatmap.Start)
	assert.Equal(t, "2019-1-2", state.Heatmap.End)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SliderEventsTotal))
}

func TestWindowService_ResolveIsStateless(t *testing.T) {
	logger, m := testDeps(t)
	svc := NewWindowService(sampleDataset(t), logger, m)

	first, err := svc.Resolve(context.Background(), 0, 26)
	require.NoError(t, err)
	_, err = svc.Resolve(context.Background(), 3, 4)
	require.NoError(t, err)
	again, err := svc.Resolve(context.Background(), 0, 26)
	require.NoError(t, err)

	assert.Equal(t, first, again)
}

func TestWindowService_ResolveOutOfRange(t *testing.T) {
	logger, m := testDeps(t)
	svc := NewWindowService(sampleDataset(t), logger, m)

	for _, pair := range [][2]int{{-1, 3}, {4, 4}, {0, 27}} {
		_, err := svc.Resolve(context.Background(), pair[0], pair[1])
		assert.ErrorIs(t, err, ErrSliderOutOfRange)
	}
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SliderEventsTotal))
}

func TestWindowService_EmptyPanels(t *testing.T) {
	logger, m := testDeps(t)
	ds := &models.Dataset{Electricity: hourly(jan1, 1, 2, 3)}
	svc := NewWindowService(ds, logger, m)

	state, err := svc.Resolve(context.Background(), 0, 3)
	require.NoError(t, err)

	assert.NotNil(t, state.Electricity)
	assert.Nil(t, state.Temperature)
	assert.Nil(t, state.Humidity)
	assert.Nil(t, state.Heatmap)
}

func TestClampSlider(t *testing.T) {
	tests := []struct {
		low, high, n int
		l, h         int
	}{
		{0, 10, 20, 0, 10},
		{5, 30, 20, 5, 20},
		{25, 30, 20, 19, 20},
		{0, 1, 1, 0, 1},
	}

	for _, tt := range tests {
		l, h := clampSlider(tt.low, tt.high, tt.n)
		assert.Equal(t, tt.l, l)
		assert.Equal(t, tt.h, h)
	}
}
