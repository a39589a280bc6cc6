package aemet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
	"resty.dev/v3"

	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
)

const dailyAllStationsPath = "/api/valores/climatologicos/diarios/datos/fechaini/{start}/fechafin/{end}/todasestaciones"

var (
	// ErrUnexpectedStatus is returned when AEMET answers with a non-200 status.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrNoDataURL is returned when the metadata response has no "datos" link.
	ErrNoDataURL = errors.New("metadata response has no data URL")
)

// Client fetches daily climatological values from AEMET OpenData. Each query
// is a two-step exchange: a metadata request that returns a short-lived data
// URL, then a download of that URL.
type Client struct {
	apiKey string
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates an AEMET client rooted at baseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		logger: logger,
	}
}

// Close releases idle connections held by the underlying client.
func (c *Client) Close() error {
	return c.http.Close()
}

// ExtractWindow downloads every station's records for the inclusive window.
func (c *Client) ExtractWindow(ctx context.Context, w domain.Window) ([]domain.RawRecord, error) {
	return c.DailyClimatology(ctx, domain.FormatTimestamp(w.Start), domain.FormatTimestamp(w.End))
}

// DailyClimatology downloads all stations' daily values between two AEMET
// timestamps such as "2024-01-01T00:00:00UTC".
func (c *Client) DailyClimatology(ctx context.Context, start, end string) ([]domain.RawRecord, error) {
	dataURL, err := c.dataURL(ctx, start, end)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("downloading window data", "start", start, "end", end)

	resp, err := c.http.R().
		SetContext(ctx).
		Get(dataURL)
	if err != nil {
		return nil, fmt.Errorf("data request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("data request: %w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	body, err := decodeBody(resp.Bytes(), resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("decode data response: %w", err)
	}
	return records, nil
}

func (c *Client) dataURL(ctx context.Context, start, end string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"start": start,
			"end":   end,
		}).
		SetQueryParam("api_key", c.apiKey).
		Get(dailyAllStationsPath)
	if err != nil {
		return "", fmt.Errorf("metadata request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("metadata request: %w: %d", ErrUnexpectedStatus, resp.StatusCode())
	}

	body, err := decodeBody(resp.Bytes(), resp.Header().Get("Content-Type"))
	if err != nil {
		return "", err
	}

	var meta metadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return "", fmt.Errorf("decode metadata response: %w", err)
	}
	if meta.Datos == "" {
		return "", fmt.Errorf("%w (estado %d: %s)", ErrNoDataURL, meta.Estado, meta.Descripcion)
	}
	return meta.Datos, nil
}

// decodeBody converts latin payloads to UTF-8. AEMET serves data files as
// ISO-8859-15 and says so in the Content-Type.
func decodeBody(body []byte, contentType string) ([]byte, error) {
	ct := strings.ToLower(contentType)

	var cm *charmap.Charmap
	switch {
	case strings.Contains(ct, "iso-8859-15"):
		cm = charmap.ISO8859_15
	case strings.Contains(ct, "iso-8859-1"), strings.Contains(ct, "latin1"):
		cm = charmap.ISO8859_1
	case strings.Contains(ct, "windows-1252"):
		cm = charmap.Windows1252
	default:
		return body, nil
	}

	out, err := cm.NewDecoder().Bytes(body)
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}
	return out, nil
}

// AEMET metadata envelope.
type metadata struct {
	Descripcion string `json:"descripcion"`
	Estado      int    `json:"estado"`
	Datos       string `json:"datos"`
	Metadatos   string `json:"metadatos"`
}
