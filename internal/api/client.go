package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/csams/transcript-tui/internal/logging"
	"github.com/csams/transcript-tui/internal/oops"
	"github.com/google/uuid"
)

var (
	// ErrTransport means no usable response arrived (connection refused,
	// timeout, non-2xx on a binary endpoint)
	ErrTransport = errors.New("request failed")
	// ErrApplication means the service answered with success=false
	ErrApplication = errors.New("service error")
	// ErrMalformed means the response could not be decoded
	ErrMalformed = errors.New("malformed response")
)

// EnvelopeError carries the message of a success=false envelope
type EnvelopeError struct {
	Endpoint string
	Message  string
}

func (e *EnvelopeError) Error() string {
	if e.Message == "" {
		return "unknown error"
	}
	return e.Message
}

func (e *EnvelopeError) Is(target error) bool {
	return target == ErrApplication
}

// Envelope is the uniform response shape of every JSON endpoint
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (e *Envelope) errorMessage() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// Client talks to the transcription service's /api endpoints
type Client struct {
	baseURL   string
	client    *http.Client
	transfer  *http.Client
	userAgent string
}

// NewClient creates a client for baseURL (without the /api suffix). timeout
// applies to JSON calls; transferTimeout to uploads and binary downloads.
func NewClient(baseURL string, timeout, transferTimeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
		transfer:  &http.Client{Timeout: transferTimeout},
		userAgent: "transcript-tui/1.0",
	}
}

// BaseURL returns the configured service URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) url(path string) string {
	return c.baseURL + "/api" + path
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, "", oops.New(err, "failed to create request %s %s", method, path)
	}
	requestID := uuid.NewString()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, requestID, nil
}

func jsonBody(payload interface{}) (io.Reader, string, error) {
	if payload == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", oops.New(err, "failed to encode request")
	}
	return bytes.NewReader(data), "application/json", nil
}

// doJSON performs a JSON call and decodes the envelope's data into out (which
// may be nil). Only the envelope's success flag decides the outcome; the HTTP
// status is not consulted.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	body, contentType, err := jsonBody(payload)
	if err != nil {
		return err
	}
	req, requestID, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.send(c.client, req, requestID, method, path, out)
}

func (c *Client) send(client *http.Client, req *http.Request, requestID, method, path string, out interface{}) error {
	logging.Debug().Str("request_id", requestID).Str("method", method).Str("endpoint", path).Msg("api request")

	resp, err := client.Do(req)
	if err != nil {
		logging.Error().Err(err).Str("request_id", requestID).Str("endpoint", path).Msg("api request failed")
		return oops.New(fmt.Errorf("%w: %v", ErrTransport, err), "%s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return oops.New(fmt.Errorf("%w: %v", ErrTransport, err), "failed to read response of %s", path)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		logging.Error().Err(err).Str("request_id", requestID).Int("status", resp.StatusCode).Msg("undecodable response")
		return oops.New(fmt.Errorf("%w: status %d: %v", ErrMalformed, resp.StatusCode, err), "%s %s", method, path)
	}

	if !env.Success {
		logging.Warn().Str("request_id", requestID).Str("endpoint", path).Str("error", env.errorMessage()).Msg("service returned failure")
		return &EnvelopeError{Endpoint: path, Message: env.errorMessage()}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return oops.New(fmt.Errorf("%w: %v", ErrMalformed, err), "failed to decode data of %s", path)
	}
	return nil
}

// Artifact is a downloaded file held in memory
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// doBinary posts payload and returns the response body as an artifact. Only
// the HTTP status decides success; a JSON error envelope, if present, is used
// for the message.
func (c *Client) doBinary(ctx context.Context, path string, payload interface{}, fallbackName string) (*Artifact, error) {
	body, contentType, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}
	req, requestID, err := c.newRequest(ctx, http.MethodPost, path, body, contentType)
	if err != nil {
		return nil, err
	}
	logging.Debug().Str("request_id", requestID).Str("endpoint", path).Msg("api download")

	resp, err := c.transfer.Do(req)
	if err != nil {
		logging.Error().Err(err).Str("request_id", requestID).Str("endpoint", path).Msg("api download failed")
		return nil, oops.New(fmt.Errorf("%w: %v", ErrTransport, err), "POST %s", path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.New(fmt.Errorf("%w: %v", ErrTransport, err), "failed to read %s", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env Envelope
		if json.Unmarshal(data, &env) == nil && env.errorMessage() != "" {
			return nil, fmt.Errorf("%w: %s", ErrTransport, env.errorMessage())
		}
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrTransport, resp.StatusCode)
	}

	return &Artifact{
		Filename:    FilenameFromDisposition(resp.Header.Get("Content-Disposition"), fallbackName),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
