package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrTransport covers failures before a response arrives (DNS, refused, timeout).
	ErrTransport = errors.New("weather provider unreachable")
	// ErrUpstream means the provider answered with a non-2xx status.
	ErrUpstream = errors.New("weather provider error")
	// ErrMalformed means the body did not match the expected schema.
	ErrMalformed = errors.New("malformed weather response")
)

const DefaultBaseURL = "https://api.openweathermap.org"

// maxResponseSize caps how much of a provider response is read.
const maxResponseSize = 1 << 20

// Client handles OpenWeatherMap API interactions
type Client struct {
	BaseURL    string
	APIKey     string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a new OpenWeatherMap client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		UserAgent: "skycast/1.0",
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, appid included. Keep only the cause.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if len(data) > maxResponseSize {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrMalformed, maxResponseSize)
	}
	return data, nil
}

// CurrentResponse represents the /data/2.5/weather response. Pointer fields
// distinguish a missing value from a zero one.
type CurrentResponse struct {
	Name string `json:"name"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity *int     `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

// CurrentURL builds the request URL for city in metric units.
func (c *Client) CurrentURL(city string) string {
	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.APIKey)
	params.Set("units", "metric")
	return c.BaseURL + "/data/2.5/weather?" + params.Encode()
}

// Current fetches the current weather for city
func (c *Client) Current(ctx context.Context, city string) (*Snapshot, error) {
	data, err := c.get(ctx, c.CurrentURL(city))
	if err != nil {
		return nil, err
	}

	var resp CurrentResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return resp.snapshot(city)
}

func (r *CurrentResponse) snapshot(city string) (*Snapshot, error) {
	switch {
	case r.Main == nil || r.Main.Temp == nil:
		return nil, fmt.Errorf("%w: missing main.temp", ErrMalformed)
	case r.Main.Humidity == nil:
		return nil, fmt.Errorf("%w: missing main.humidity", ErrMalformed)
	case r.Wind == nil || r.Wind.Speed == nil:
		return nil, fmt.Errorf("%w: missing wind.speed", ErrMalformed)
	case len(r.Weather) == 0:
		return nil, fmt.Errorf("%w: empty weather list", ErrMalformed)
	}

	name := r.Name
	if name == "" {
		name = city
	}

	return &Snapshot{
		City:      name,
		TempC:     *r.Main.Temp,
		Humidity:  *r.Main.Humidity,
		WindSpeed: *r.Wind.Speed,
		Condition: r.Weather[0].Main,
	}, nil
}
