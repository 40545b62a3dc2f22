package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"golang.org/x/time/rate"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	introReport = "I can answer your questions about the time and weather in a city."
)

// Result is what every weather/time tool hands back to the model.
type Result struct {
	Status       string `json:"status"`
	Report       string `json:"report,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func success(report string) Result { return Result{Status: StatusSuccess, Report: report} }

func failure(format string, args ...any) Result {
	return Result{Status: StatusError, ErrorMessage: fmt.Sprintf(format, args...)}
}

// WeatherConfig configures a WeatherClient.
type WeatherConfig struct {
	BaseURL string // e.g. "http://api.weatherapi.com/v1"
	APIKey  string
	// Timeout bounds each lookup; zero leaves it unbounded. The binaries set
	// it from WEATHER_TIMEOUT, which defaults to 10s instead of unbounded.
	Timeout time.Duration

	// RatePerSecond <= 0 disables client-side rate limiting.
	RatePerSecond float64
	Burst         int

	Cities     CityTable
	HTTPClient *http.Client
}

// WeatherClient looks up current conditions from weatherapi.com.
type WeatherClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	cities  CityTable
}

// NewWeatherClient creates a weather client.
func NewWeatherClient(cfg WeatherConfig) *WeatherClient {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	cities := cfg.Cities
	if cities == nil {
		cities = DefaultCityTable()
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &WeatherClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		cities:  cities,
	}
}

// currentResponse holds the fields of /current.json we consume. Every
// field is a pointer so a missing one is told apart from a zero value.
type currentResponse struct {
	Location *struct {
		Country   *string `json:"country"`
		TzID      *string `json:"tz_id"`
		Localtime *string `json:"localtime"`
	} `json:"location"`
	Current *struct {
		TempC     *float64 `json:"temp_c"`
		TempF     *float64 `json:"temp_f"`
		Humidity  *int     `json:"humidity"`
		WindKph   *float64 `json:"wind_kph"`
		Condition *struct {
			Text *string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

type weatherReport struct {
	country, condition    string
	tempC, tempF, windKph float64
	humidity              int
}

func missing(field string) error {
	return fmt.Errorf("malformed response: missing %s", field)
}

// weather extracts what get_weather reports.
func (d *currentResponse) weather() (weatherReport, error) {
	var r weatherReport
	if d.Location == nil {
		return r, missing("location")
	}
	if d.Location.Country == nil {
		return r, missing("location.country")
	}
	c := d.Current
	if c == nil {
		return r, missing("current")
	}
	switch {
	case c.Condition == nil || c.Condition.Text == nil:
		return r, missing("current.condition.text")
	case c.TempC == nil:
		return r, missing("current.temp_c")
	case c.TempF == nil:
		return r, missing("current.temp_f")
	case c.Humidity == nil:
		return r, missing("current.humidity")
	case c.WindKph == nil:
		return r, missing("current.wind_kph")
	}
	return weatherReport{
		country:   *d.Location.Country,
		condition: *c.Condition.Text,
		tempC:     *c.TempC,
		tempF:     *c.TempF,
		humidity:  *c.Humidity,
		windKph:   *c.WindKph,
	}, nil
}

// localTime extracts what get_current_time reports.
func (d *currentResponse) localTime() (localtime, tzID string, err error) {
	switch {
	case d.Location == nil:
		return "", "", missing("location")
	case d.Location.Localtime == nil:
		return "", "", missing("location.localtime")
	case d.Location.TzID == nil:
		return "", "", missing("location.tz_id")
	}
	return *d.Location.Localtime, *d.Location.TzID, nil
}

// statusError is a completed request that did not return HTTP 200.
type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("HTTP %d", e.code) }

// Weather reports the current weather for city.
func (w *WeatherClient) Weather(ctx context.Context, city string) Result {
	start := time.Now()
	var r weatherReport
	data, err := w.current(ctx, city)
	if err == nil {
		r, err = data.weather()
	}

	var res Result
	var se *statusError
	switch {
	case errors.As(err, &se):
		res = failure("Unable to get weather information for '%s'. API response code: %d. Please check that the city name is correct.", city, se.code)
	case err != nil:
		res = failure("Error getting weather information for '%s': %v", city, err)
	default:
		res = success(fmt.Sprintf(
			"The current weather in %s (%s) is %s, temperature %.1f°C (%.1f°F), humidity %d%%, wind speed %.1f km/h.",
			city, r.country, r.condition, r.tempC, r.tempF, r.humidity, r.windKph,
		))
	}
	observe(ctx, "get_weather", res, start)
	return res
}

// CurrentTime reports the local time and time zone of city.
func (w *WeatherClient) CurrentTime(ctx context.Context, city string) Result {
	start := time.Now()
	var localtime, tzID string
	data, err := w.current(ctx, city)
	if err == nil {
		localtime, tzID, err = data.localTime()
	}

	var res Result
	var se *statusError
	switch {
	case errors.As(err, &se):
		res = failure("Unable to get time zone information for '%s'. API response code: %d. Please check that the city name is correct.", city, se.code)
	case err != nil:
		res = failure("Error getting time information for '%s': %v", city, err)
	default:
		res = success(fmt.Sprintf("The current time in %s is %s (%s time zone)", city, localtime, tzID))
	}
	observe(ctx, "get_current_time", res, start)
	return res
}

// Intro describes what the assistant can do.
func Intro() Result {
	return success(introReport)
}

// current issues exactly one GET /current.json for city. No retries.
func (w *WeatherClient) current(ctx context.Context, city string) (*currentResponse, error) {
	if w.apiKey == "" {
		return nil, errors.New("weather API key is not configured")
	}
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	query := w.cities.Resolve(city)
	params := url.Values{}
	params.Set("key", w.apiKey)
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/current.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	clog.FromContext(ctx).With("city", city).With("query", query).Debug("weather lookup")

	resp, err := w.client.Do(req)
	if err != nil {
		// url.Error carries the full request URL, API key included.
		var ue *url.Error
		if errors.As(err, &ue) {
			return nil, ue.Err
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	var data currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &data, nil
}
