package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorePM25(t *testing.T) {
	g := DefaultGuidelines()

	tests := []struct {
		name     string
		features Features
		want     int
	}{
		{
			name: "guideline-level day",
			features: Features{
				PM25Present: true,
				PM25Mean:    5.0,  // exactly the annual guideline: 60 points
				PM25P95:     15.0, // exactly the 24h guideline: 30 points
			},
			want: 90,
		},
		{
			name: "clean day",
			features: Features{
				PM25Present: true,
				PM25Mean:    1.0,
				PM25P95:     2.0,
			},
			want: 16, // 60*(1/5) + 30*(2/15)
		},
		{
			name: "peak-frequency term saturates at 8 hours",
			features: Features{
				PM25Present:       true,
				PM25HoursAbove24h: 20,
			},
			want: 10,
		},
		{
			name: "severe episode clamps to 100",
			features: Features{
				PM25Present: true,
				PM25Mean:    50.0,
				PM25P95:     120.0,
			},
			want: 100,
		},
		{
			name:     "absent factor scores zero",
			features: Features{},
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scorePM25(tt.features, g))
		})
	}
}

func TestScoreO3(t *testing.T) {
	g := DefaultGuidelines()

	// Peak at the AQI-100 level with a saturated duration term: the raw
	// 0-150 range maps back onto 0-100.
	f := Features{O3Present: true, O3Max8h: 70.0, O3HoursAboveHealth: 4}
	assert.Equal(t, 67, scoreO3(f, g)) // (80+20) * 100/150

	f = Features{O3Present: true, O3Max8h: 35.0}
	assert.Equal(t, 27, scoreO3(f, g)) // 40 * 100/150

	assert.Equal(t, 0, scoreO3(Features{}, g))
}

func TestScoreRatio(t *testing.T) {
	assert.Equal(t, 100, scoreRatio(true, 10.0, 10.0))
	assert.Equal(t, 50, scoreRatio(true, 5.0, 10.0))
	assert.Equal(t, 100, scoreRatio(true, 25.0, 10.0), "clamped")
	assert.Equal(t, 0, scoreRatio(false, 99.0, 10.0))
}

func TestScoreUV(t *testing.T) {
	g := DefaultGuidelines()

	// Six dose-hours with a very-high peak: 30 + 10.
	f := Features{UVPresent: true, UVDoseHours: 6, UVMax: 9.0}
	assert.Equal(t, 40, scoreUV(f, g))

	// Same dose without the very-high peak.
	f = Features{UVPresent: true, UVDoseHours: 6, UVMax: 6.0}
	assert.Equal(t, 30, scoreUV(f, g))

	// The dose term saturates before the peak bonus, so 100 + 10 clamps.
	f = Features{UVPresent: true, UVDoseHours: 30, UVMax: 11.0}
	assert.Equal(t, 100, scoreUV(f, g))
}

func TestScoreTemp(t *testing.T) {
	g := DefaultGuidelines()

	tests := []struct {
		name     string
		features Features
		want     int
	}{
		{
			name:     "comfortable day",
			features: Features{TempPresent: true, TempMean: 21.0},
			want:     0,
		},
		{
			name:     "warm mean only",
			features: Features{TempPresent: true, TempMean: 27.0},
			want:     6, // 2 per °C above 24
		},
		{
			name:     "cold mean only",
			features: Features{TempPresent: true, TempMean: 13.0},
			want:     10, // 2 per °C below 18
		},
		{
			name:     "heat hours dominate",
			features: Features{TempPresent: true, TempMean: 30.0, HeatHours: 6},
			want:     36, // 6*4 + 2*(30-24)
		},
		{
			name:     "cold hours",
			features: Features{TempPresent: true, TempMean: 18.0, ColdHours: 5},
			want:     15,
		},
		{
			name:     "absent",
			features: Features{},
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scoreTemp(tt.features, g))
		})
	}
}

func TestScoreHumidityDew(t *testing.T) {
	f := Features{LowRHHours: 3, HighRHHours: 2, OppressiveDewHours: 4}
	assert.Equal(t, 22, scoreHumidityDew(f)) // 6 + 4 + 12
	assert.Equal(t, 0, scoreHumidityDew(Features{}))
}

func TestScoreWind(t *testing.T) {
	f := Features{WindyHours: 10, HazardousWindHours: 3}
	assert.Equal(t, 25, scoreWind(f)) // 10 + 15
}

func TestScorePrecip(t *testing.T) {
	g := DefaultGuidelines()

	// Dry spells within the one-week grace period cost nothing.
	assert.Equal(t, 0, scorePrecip(Features{DrySpellDays: 7}, g))

	// Past the grace period: 5 points per extra day.
	assert.Equal(t, 5, scorePrecip(Features{DrySpellDays: 8}, g))
	assert.Equal(t, 25, scorePrecip(Features{DrySpellDays: 12}, g))

	// Heavy rain days: 20 points each.
	assert.Equal(t, 40, scorePrecip(Features{HeavyRainDays: 2}, g))
}

func TestScoreFeatures_AllInRange(t *testing.T) {
	f := Features{
		Hours:       24,
		PM25Present: true, PM25Mean: 80, PM25P95: 200, PM25HoursAbove24h: 24,
		O3Present: true, O3Max8h: 300, O3HoursAboveHealth: 24,
		NO2Present: true, NO2Mean: 500,
		SO2Present: true, SO2Mean: 500,
		COPresent: true, COMean: 50,
		UVPresent: true, UVDoseHours: 24, UVMax: 12,
		TempPresent: true, TempMean: 45, HeatHours: 24,
		LowRHHours: 24, HighRHHours: 24, OppressiveDewHours: 24,
		WindyHours: 24, HazardousWindHours: 24,
		HeavyRainDays: 7, DrySpellDays: 60,
	}

	s := ScoreFeatures(f, DefaultGuidelines())
	for _, factor := range Factors {
		v := s.Get(factor)
		assert.GreaterOrEqual(t, v, 0, "factor %s", factor)
		assert.LessOrEqual(t, v, 100, "factor %s", factor)
	}
}

func TestCompositeScore_WeightedMean(t *testing.T) {
	// All sub-scores equal: the composite equals that value for any valid
	// weighting.
	s := Subscores{PM25: 50, O3: 50, NO2: 50, SO2: 50, CO: 50,
		UV: 50, Temp: 50, HumidityDew: 50, Wind: 50, Precip: 50}

	assert.InDelta(t, 50.0, CompositeScore(s, DefaultWeights()), 1e-9)
}

func TestCompositeScore_SeverityKicker(t *testing.T) {
	// One spiking factor must not be averaged away: 0.2 points per point
	// above 80.
	s := Subscores{PM25: 100}
	got := CompositeScore(s, DefaultWeights())
	assert.InDelta(t, 0.30*100+0.2*20, got, 1e-9)

	// At exactly 80 the kicker adds nothing.
	s = Subscores{PM25: 80}
	assert.InDelta(t, 24.0, CompositeScore(s, DefaultWeights()), 1e-9)

	// Just below the threshold, no kicker.
	s = Subscores{PM25: 79}
	assert.InDelta(t, 23.7, CompositeScore(s, DefaultWeights()), 1e-9)
}

func TestCompositeScore_Caps(t *testing.T) {
	s := Subscores{PM25: 100, O3: 100, NO2: 100, SO2: 100, CO: 100,
		UV: 100, Temp: 100, HumidityDew: 100, Wind: 100, Precip: 100}

	assert.Equal(t, 100.0, CompositeScore(s, DefaultWeights()))
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
}

func TestWeightsValidate_RejectsBadSum(t *testing.T) {
	w := DefaultWeights()
	w.PM25 += 0.1

	err := w.Validate()
	require.Error(t, err)

	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestSubscoresMax(t *testing.T) {
	s := Subscores{O3: 40, Wind: 75, Precip: 12}
	assert.Equal(t, 75, s.Max())
	assert.Equal(t, 0, Subscores{}.Max())
}
