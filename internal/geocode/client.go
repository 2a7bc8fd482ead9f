// Package geocode proxies reverse-geocoding lookups to OpenStreetMap
// Nominatim so browser clients never talk to Nominatim directly.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/walkguardian/guardian-server-go/internal/errors"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	userAgent      = "WalkGuardian/1.0"
	requestTimeout = 10 * time.Second
)

type Client struct {
	client  *http.Client
	baseURL string
}

func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL: baseURL,
	}
}

// Reverse resolves coordinates to an address via Nominatim and returns the
// raw JSON document.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("format", "jsonv2")
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lng))
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return nil, apperrors.External("nominatim", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("nominatim request failed")
		return nil, apperrors.External("nominatim", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.External("nominatim", fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.External("nominatim", err)
	}

	if !json.Valid(body) {
		return nil, apperrors.External("nominatim", fmt.Errorf("invalid JSON response"))
	}

	return json.RawMessage(body), nil
}
