package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleRatioAndDiff(t *testing.T) {
	s := Sample{Path: "a.bin", Before: 100, After: 60}
	assert.InDelta(t, 0.6, s.Ratio(), 1e-9)
	assert.Equal(t, -40, s.Diff())
}

func TestSummarizeAveragesAcrossSamples(t *testing.T) {
	samples := []Sample{
		{Path: "a", Before: 100, After: 50},
		{Path: "b", Before: 200, After: 150},
	}
	summary := Summarize(samples)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 0.625, summary.AvgRatio, 1e-9)
	assert.InDelta(t, -50, summary.AvgDiff, 1e-9)
	assert.InDelta(t, 150, summary.AvgBefore, 1e-9)
	assert.InDelta(t, 100, summary.AvgAfter, 1e-9)
}

func TestSummarizeSkipsNonPositiveBefore(t *testing.T) {
	samples := []Sample{
		{Path: "a", Before: 0, After: 50},
		{Path: "b", Before: 100, After: 80},
	}
	summary := Summarize(samples)
	assert.Equal(t, 1, summary.Count)
	assert.InDelta(t, 0.8, summary.AvgRatio, 1e-9)
}

func TestSummarizeEmptyIsZeroValued(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, 0, summary.Count)
	assert.Equal(t, 0.0, summary.AvgRatio)
}

func TestSummaryStringIsNonEmpty(t *testing.T) {
	summary := Summarize([]Sample{{Path: "a", Before: 100, After: 50}})
	assert.NotEmpty(t, summary.String())
}
