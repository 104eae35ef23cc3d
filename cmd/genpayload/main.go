// Command genpayload generates a synthetic resolved payload fixture for
// local testing. The output exercises every factor: elevated PM2.5 on the
// final day, an afternoon ozone ramp, a heat spike, and a dry spell long
// enough to trip the precipitation penalty.
//
// Usage:
//
//	go run ./cmd/genpayload -days 14 -user demo-user -out payload.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"time"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	days := flag.Int("days", 14, "number of days of hourly data")
	userID := flag.String("user", "demo-user", "user ID stamped on the payload")
	outPath := flag.String("out", "payload.json", "output file path")
	seed := flag.Int64("seed", 42, "random seed for reproducible fixtures")
	flag.Parse()

	payload := generate(*days, *userID, rand.New(rand.NewSource(*seed)))

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %d days (%d hours) to %s\n", *days, *days*24, *outPath)
	return nil
}

// payload mirrors the resolver's output shape without importing internal
// packages, so the fixture documents the wire format explicitly.
type payload struct {
	UserID          string          `json:"user_id"`
	Latitude        float64         `json:"latitude"`
	Longitude       float64         `json:"longitude"`
	Timezone        string          `json:"timezone"`
	PollutantSeries pollutantSeries `json:"pollutant_series"`
	Weather         hourlyWeather   `json:"weather"`
}

type pollutantSeries struct {
	PM25 []*float64 `json:"pm25"`
	O3   []*float64 `json:"o3"`
	NO2  []*float64 `json:"no2"`
	SO2  []*float64 `json:"so2"`
	CO   []*float64 `json:"co"`
}

type hourlyWeather struct {
	Time             []string   `json:"time"`
	Temperature      []*float64 `json:"temperature_2m"`
	RelativeHumidity []*float64 `json:"relative_humidity_2m"`
	DewPoint         []*float64 `json:"dew_point_2m"`
	Precipitation    []*float64 `json:"precipitation"`
	CloudCover       []*float64 `json:"cloudcover"`
	WindSpeed        []*float64 `json:"wind_speed_10m"`
	UVIndex          []*float64 `json:"uv_index"`
}

func generate(days int, userID string, rng *rand.Rand) payload {
	hours := days * 24
	start := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

	p := payload{
		UserID:    userID,
		Latitude:  40.4168,
		Longitude: -3.7038,
		Timezone:  "Europe/Madrid",
		PollutantSeries: pollutantSeries{
			PM25: make([]*float64, hours),
			O3:   make([]*float64, hours),
			NO2:  make([]*float64, hours),
			SO2:  make([]*float64, hours),
			CO:   make([]*float64, hours),
		},
		Weather: hourlyWeather{
			Time:             make([]string, hours),
			Temperature:      make([]*float64, hours),
			RelativeHumidity: make([]*float64, hours),
			DewPoint:         make([]*float64, hours),
			Precipitation:    make([]*float64, hours),
			CloudCover:       make([]*float64, hours),
			WindSpeed:        make([]*float64, hours),
			UVIndex:          make([]*float64, hours),
		},
	}

	for i := 0; i < hours; i++ {
		t := start.Add(time.Duration(i) * time.Hour)
		day := i / 24
		hour := i % 24
		lastDay := day == days-1

		p.Weather.Time[i] = t.Format("2006-01-02T15:04")

		// Diurnal temperature curve, with a heat spike on the last day.
		temp := 16.0 + 8.0*math.Sin(float64(hour-6)/24.0*2*math.Pi) + rng.Float64()*2
		if lastDay {
			temp += 14.0
		}
		p.Weather.Temperature[i] = ptr(round1(temp))
		p.Weather.RelativeHumidity[i] = ptr(round1(40 + 25*math.Cos(float64(hour)/24.0*2*math.Pi) + rng.Float64()*5))
		p.Weather.DewPoint[i] = ptr(round1(temp - 10 + rng.Float64()*3))
		p.Weather.CloudCover[i] = ptr(round1(rng.Float64() * 60))
		p.Weather.WindSpeed[i] = ptr(round1(8 + rng.Float64()*12))
		p.Weather.Precipitation[i] = ptr(0.0) // persistent dry spell

		uv := 0.0
		if hour >= 8 && hour <= 18 {
			uv = 7.0 * math.Sin(float64(hour-8)/10.0*math.Pi)
		}
		p.Weather.UVIndex[i] = ptr(round1(uv))

		pm := 6.0 + rng.Float64()*4
		if lastDay {
			pm += 20.0 // pollution episode
		}
		p.PollutantSeries.PM25[i] = ptr(round1(pm))

		o3 := 25.0 + rng.Float64()*10
		if hour >= 12 && hour <= 18 {
			o3 += 30.0 // afternoon photochemical ramp
		}
		p.PollutantSeries.O3[i] = ptr(round1(o3))
		p.PollutantSeries.NO2[i] = ptr(round1(8 + rng.Float64()*6))
		p.PollutantSeries.SO2[i] = ptr(round1(5 + rng.Float64()*5))
		p.PollutantSeries.CO[i] = ptr(round1(0.2 + rng.Float64()*0.4))
	}

	return p
}

func ptr(v float64) *float64 { return &v }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
