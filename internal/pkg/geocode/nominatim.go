package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a reverse-geocoding client speaking the Nominatim wire
// format. Failures are expected and must be cheap: the caller treats
// any error as "no place name", never as a punch failure.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// Address is the provider's reverse-geocoding result: structured
// components when available, plus the free-text display name.
type Address struct {
	DisplayName string            `json:"display_name"`
	Components  AddressComponents `json:"address"`
}

type AddressComponents struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Suburb        string `json:"suburb"`
	Neighbourhood string `json:"neighbourhood"`
	Quarter       string `json:"quarter"`
	City          string `json:"city"`
	Town          string `json:"town"`
	CityDistrict  string `json:"city_district"`
	State         string `json:"state"`
}

func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
	}
}

// Reverse resolves a coordinate pair to an address.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (*Address, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build reverse geocoding request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reverse geocoding provider returned status %d", resp.StatusCode)
	}

	var addr Address
	if err := json.NewDecoder(resp.Body).Decode(&addr); err != nil {
		return nil, fmt.Errorf("failed to decode reverse geocoding response: %w", err)
	}

	return &addr, nil
}

// PlaceName composes a display name from an address. Structured
// components win over the free-text form: a bare "City, Country" from
// the provider must not beat a composable street address. Returns ""
// when nothing usable came back.
func PlaceName(addr *Address) string {
	if addr == nil {
		return ""
	}

	if name := composeStructured(addr.Components); name != "" {
		return name
	}

	return condenseDisplayName(addr.DisplayName)
}

func composeStructured(c AddressComponents) string {
	var parts []string

	street := c.Road
	if street != "" && c.HouseNumber != "" {
		street = street + " " + c.HouseNumber
	}
	if street == "" {
		street = firstNonEmpty(c.Suburb, c.Neighbourhood, c.Quarter)
	}
	if street != "" {
		parts = append(parts, street)
	}

	if locality := firstNonEmpty(c.City, c.Town, c.CityDistrict); locality != "" {
		parts = append(parts, locality)
	}

	if c.State != "" {
		parts = append(parts, c.State)
	}

	return strings.Join(parts, ", ")
}

// condenseDisplayName keeps the first four case-insensitively unique,
// non-empty comma segments of the provider's free-text address.
func condenseDisplayName(displayName string) string {
	seen := make(map[string]bool)
	var parts []string

	for _, seg := range strings.Split(displayName, ",") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		key := strings.ToLower(seg)
		if seen[key] {
			continue
		}
		seen[key] = true
		parts = append(parts, seg)
		if len(parts) == 4 {
			break
		}
	}

	return strings.Join(parts, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
