package domain

import "time"

// Provenance tags how a data class in a reading was obtained.
type Provenance string

const (
	// ProvenanceHourly marks values taken from a true hourly series.
	ProvenanceHourly Provenance = "hourly"
	// ProvenanceSnapshot marks a single current-conditions value broadcast
	// across every hour of the series.
	ProvenanceSnapshot Provenance = "snapshot"
)

// EnvironmentalReading is one hour of environmental conditions at a
// location. Every measurement field is a pointer: nil means the upstream
// source did not report it, and zero is a valid physical reading.
type EnvironmentalReading struct {
	Timestamp time.Time `json:"timestamp"` // local, timezone-resolved
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`

	// Pollutant concentrations. PM/NO2/SO2 in µg/m³, O3 in ppb, CO in ppm.
	PM25 *float64 `json:"pm25,omitempty"`
	PM10 *float64 `json:"pm10,omitempty"`
	O3   *float64 `json:"o3,omitempty"`
	NO2  *float64 `json:"no2,omitempty"`
	SO2  *float64 `json:"so2,omitempty"`
	CO   *float64 `json:"co,omitempty"`

	UVIndex          *float64 `json:"uv_index,omitempty"`
	TemperatureC     *float64 `json:"temperature_c,omitempty"`
	RelativeHumidity *float64 `json:"relative_humidity,omitempty"` // %
	DewPointC        *float64 `json:"dew_point_c,omitempty"`
	WindSpeedKmh     *float64 `json:"wind_speed_kmh,omitempty"`
	PrecipitationMm  *float64 `json:"precipitation_mm,omitempty"`
	CloudCoverPct    *float64 `json:"cloud_cover_pct,omitempty"`

	// Per-data-class provenance. PollutantSource is empty when no pollutant
	// data was available for the hour at all.
	PollutantSource Provenance `json:"pollutant_source,omitempty"`
	WeatherSource   string     `json:"weather_source,omitempty"`
}

// PollutantSnapshot holds current-conditions pollutant concentrations, the
// shape the air quality API returns when no hourly history is requested.
type PollutantSnapshot struct {
	PM25 *float64 `json:"pm25,omitempty"`
	PM10 *float64 `json:"pm10,omitempty"`
	O3   *float64 `json:"o3,omitempty"`
	NO2  *float64 `json:"no2,omitempty"`
	SO2  *float64 `json:"so2,omitempty"`
	CO   *float64 `json:"co,omitempty"`
}

// PollutantSeries holds per-hour pollutant concentrations. Each non-nil
// slice must match the weather series length; individual entries stay nil
// for unreported hours.
type PollutantSeries struct {
	PM25 []*float64 `json:"pm25,omitempty"`
	PM10 []*float64 `json:"pm10,omitempty"`
	O3   []*float64 `json:"o3,omitempty"`
	NO2  []*float64 `json:"no2,omitempty"`
	SO2  []*float64 `json:"so2,omitempty"`
	CO   []*float64 `json:"co,omitempty"`
}

// HourlyWeather mirrors the Open-Meteo hourly block: a time axis plus
// equal-length value arrays. Timestamps are local-naive ISO strings
// ("2006-01-02T15:04") interpreted in the payload's timezone.
type HourlyWeather struct {
	Time             []string   `json:"time"`
	Temperature      []*float64 `json:"temperature_2m"`
	RelativeHumidity []*float64 `json:"relative_humidity_2m"`
	DewPoint         []*float64 `json:"dew_point_2m"`
	Precipitation    []*float64 `json:"precipitation"`
	CloudCover       []*float64 `json:"cloudcover"`
	WindSpeed        []*float64 `json:"wind_speed_10m"`
	UVIndex          []*float64 `json:"uv_index"`
}

// SourceURLs records where each data class came from, for display only.
type SourceURLs struct {
	AirQuality string `json:"air_quality,omitempty"`
	Weather    string `json:"weather,omitempty"`
	UV         string `json:"uv,omitempty"`
}

// ResolvedPayload is the engine's input: one user/location/period of
// already-fetched environmental data, assembled by the upstream resolver.
// Pollutants may be a snapshot, a true hourly series, or both; when both
// are present the hourly series wins.
type ResolvedPayload struct {
	UserID    string  `json:"user_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// Timezone is an IANA zone name. Empty defaults to UTC; an
	// unresolvable name is a DataError.
	Timezone string `json:"timezone,omitempty"`

	Pollutants      *PollutantSnapshot `json:"pollutants,omitempty"`
	PollutantSeries *PollutantSeries   `json:"pollutant_series,omitempty"`
	Weather         HourlyWeather      `json:"weather"`
	Sources         SourceURLs         `json:"sources,omitempty"`
}
