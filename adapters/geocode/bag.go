// Package geocode - BAG API client
// BAG is the Dutch national address registry. The client only needs
// the address search endpoint of the individual queries API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/ttttvvvv/ParkingCalculator/internal/errors"
	"github.com/ttttvvvv/ParkingCalculator/internal/logging"
)

// BAGClient queries the BAG individual queries API
type BAGClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewBAGClient creates a client for the given endpoint
func NewBAGClient(baseURL, apiKey string, timeout time.Duration) *BAGClient {
	return &BAGClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// bagResponse is the subset of the HAL response the resolver needs
type bagResponse struct {
	Embedded struct {
		Adressen []struct {
			Straatnaam string `json:"korteNaam"`
			Woonplaats string `json:"woonplaatsNaam"`
			Postcode   string `json:"postcode"`
			Huisnummer int    `json:"huisnummer"`
		} `json:"adressen"`
	} `json:"_embedded"`
}

// LookupAddress searches for an address by postcode and house number.
// A missing address is ADDRESS_NOT_FOUND; transport failures are
// internal errors the caller may treat as a soft failure.
func (c *BAGClient) LookupAddress(ctx context.Context, postcode, houseNumber, suffix string) (*Address, error) {
	params := url.Values{}
	params.Set("postcode", NormalizePostcode(postcode))
	params.Set("huisnummer", houseNumber)
	if suffix != "" {
		params.Set("huisnummertoevoeging", suffix)
	}

	endpoint := c.baseURL + "/adressen?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Internal("building BAG request", err)
	}
	req.Header.Set("Accept", "application/hal+json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Internal("calling BAG API", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decoding
	case http.StatusNotFound:
		return nil, errors.AddressNotFound(postcode, houseNumber)
	case http.StatusUnauthorized:
		return nil, errors.New(errors.TypeConfig, "BAG API rejected the configured api key")
	default:
		return nil, errors.Newf(errors.TypeInternal, "BAG API returned status %d", resp.StatusCode)
	}

	var body bagResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Internal("decoding BAG response", err)
	}
	if len(body.Embedded.Adressen) == 0 {
		return nil, errors.AddressNotFound(postcode, houseNumber)
	}

	first := body.Embedded.Adressen[0]
	addr := &Address{
		Street:      first.Straatnaam,
		City:        first.Woonplaats,
		Postcode:    first.Postcode,
		HouseNumber: fmt.Sprintf("%d", first.Huisnummer),
	}
	logging.Debug("BAG address resolved",
		zap.String("postcode", addr.Postcode),
		zap.String("city", addr.City))
	return addr, nil
}
