// Package weather implements the weather tool backed by the OpenWeather
// current weather API.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ourstudio-se/ai-agent-backend/tools"
)

const (
	// DefaultBaseURL is the OpenWeather 2.5 API root.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// DefaultTimeout bounds a provider call when none is configured.
	DefaultTimeout = 30 * time.Second

	// ArgLocation is the argument carrying a pre-extracted location.
	ArgLocation = "location"

	maxBodyBytes = 1 << 20
)

// Config for the weather tool.
type Config struct {
	APIKey string

	// BaseURL of the provider API. Default: DefaultBaseURL.
	BaseURL string

	// DefaultLocation is used when the query names no place.
	DefaultLocation string

	// Timeout bounds the single provider call.
	Timeout time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Tool looks up the current weather for the place named in a query.
type Tool struct {
	cfg Config
}

var _ tools.Tool = (*Tool)(nil)

// New creates the weather tool. A missing API key is not an error here;
// every call then fails with tools.ErrNotConfigured.
func New(cfg Config) *Tool {
	return &Tool{cfg: cfg.withDefaults()}
}

// Kind returns tools.KindWeather.
func (t *Tool) Kind() tools.Kind {
	return tools.KindWeather
}

// Location resolves the place to query: the pre-extracted argument, the
// place named in the query, or the configured default.
func (t *Tool) Location(req tools.Request) string {
	if loc := req.Args.String(ArgLocation); loc != "" {
		return loc
	}
	if loc, ok := ExtractLocation(req.Query); ok {
		return loc
	}
	return t.cfg.DefaultLocation
}

// Execute performs exactly one provider call, without retry or caching.
func (t *Tool) Execute(ctx context.Context, req tools.Request) (string, error) {
	if t.cfg.APIKey == "" {
		return "", tools.NewWeatherError(tools.ErrNotConfigured, nil)
	}

	location := t.Location(req)
	if location == "" {
		return "", tools.NewWeatherError(tools.ErrLocationNotFound, errors.New("no location given"))
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	t.cfg.Logger.Debug("weather request", "location", location)

	status, body, err := t.fetch(ctx, location)
	if err != nil {
		return "", tools.NewWeatherError(tools.ErrUpstream, err)
	}

	switch {
	case status == http.StatusNotFound:
		return "", tools.NewWeatherError(tools.ErrLocationNotFound, fmt.Errorf("%q", location))
	case status == http.StatusUnauthorized:
		return "", tools.NewWeatherError(tools.ErrUnauthorized, nil)
	case status < 200 || status > 299:
		cause := fmt.Errorf("unexpected status %d", status)
		if msg := gjson.GetBytes(body, "message").String(); msg != "" {
			cause = fmt.Errorf("unexpected status %d: %s", status, msg)
		}
		return "", tools.NewWeatherError(tools.ErrUpstream, cause)
	}

	report, err := parseReport(body)
	if err != nil {
		return "", tools.NewWeatherError(tools.ErrMalformedResponse, err)
	}
	if report.City == "" {
		report.City = location
	}

	return report.String(), nil
}

func (t *Tool) fetch(ctx context.Context, location string) (int, []byte, error) {
	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", t.cfg.APIKey)
	q.Set("units", "metric")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, t.cfg.BaseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return 0, nil, redactKey(err, t.cfg.APIKey)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// redactKey removes the API key from transport errors, which quote the
// request URL.
func redactKey(err error, key string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{
			Op:  urlErr.Op,
			URL: strings.ReplaceAll(urlErr.URL, url.QueryEscape(key), "REDACTED"),
			Err: urlErr.Err,
		}
	}
	return err
}

// Report is the subset of a current weather payload the tool renders.
type Report struct {
	City       string
	Country    string
	Temp       float64
	FeelsLike  float64
	Humidity   int64
	Condition  string
	WindSpeed  float64
	hasDetails bool
}

func parseReport(body []byte) (Report, error) {
	if !gjson.ValidBytes(body) {
		return Report{}, errors.New("invalid JSON")
	}

	res := gjson.ParseBytes(body)
	temp := res.Get("main.temp")
	if temp.Type != gjson.Number {
		return Report{}, errors.New("missing main.temp")
	}
	cond := res.Get("weather.0.description")
	if cond.String() == "" {
		return Report{}, errors.New("missing weather description")
	}

	r := Report{
		City:      res.Get("name").String(),
		Country:   res.Get("sys.country").String(),
		Temp:      temp.Float(),
		Condition: cond.String(),
	}
	feels, hum, wind := res.Get("main.feels_like"), res.Get("main.humidity"), res.Get("wind.speed")
	if feels.Exists() && hum.Exists() && wind.Exists() {
		r.FeelsLike = feels.Float()
		r.Humidity = hum.Int()
		r.WindSpeed = wind.Float()
		r.hasDetails = true
	}
	return r, nil
}

// String renders the report, e.g.
// "Weather in Paris, FR: 18.5°C, light rain (feels like 17.9°C, humidity 72%, wind 4.1 m/s)."
func (r Report) String() string {
	var b strings.Builder
	b.WriteString("Weather in ")
	b.WriteString(r.City)
	if r.Country != "" {
		b.WriteString(", ")
		b.WriteString(r.Country)
	}
	fmt.Fprintf(&b, ": %.1f°C, %s", r.Temp, r.Condition)
	if r.hasDetails {
		fmt.Fprintf(&b, " (feels like %.1f°C, humidity %d%%, wind %.1f m/s)", r.FeelsLike, r.Humidity, r.WindSpeed)
	}
	b.WriteString(".")
	return b.String()
}
