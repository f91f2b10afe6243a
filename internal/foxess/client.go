package foxess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const (
	userAgent      = "FoxESSCmdLine/1.0"
	requestTimeout = 30 * time.Second
)

// Client performs signed request/response cycles against the FoxESS
// cloud. Every call carries a fresh timestamp and signature; the
// token header is attached once a token has been set.
type Client struct {
	baseURL  string
	timezone string
	token    string
	http     *http.Client
	log      zerolog.Logger
}

// NewClient builds a client from config. The logger only ever sees
// request metadata, never the token.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL:  cfg.baseURL(),
		timezone: cfg.timezone(),
		http:     &http.Client{Timeout: requestTimeout},
		log:      log,
	}
}

func (c *Client) setToken(token string) {
	c.token = token
}

// post sends body as JSON to path and decodes the envelope's result
// into out.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.call(ctx, http.MethodPost, path, body, out)
}

// call performs one authenticated exchange. Exactly one of a decoded
// result or a classified error comes back: TransportError for
// network/status failures, DecodeError for schema mismatches,
// ServerError for nonzero envelope codes and ErrMissingResult for a
// success envelope without a payload.
func (c *Client) call(ctx context.Context, method, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req, path)

	resp, err := c.http.Do(req)
	if err != nil {
		return TransportError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return TransportError{Status: resp.StatusCode}
	}

	var envelope struct {
		ErrNo  int             `json:"errno"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return DecodeError{Err: err}
	}
	if envelope.ErrNo != 0 {
		return ServerError{Code: envelope.ErrNo}
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return ErrMissingResult
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return DecodeError{Err: err}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, path string) {
	timestamp := time.Now().UnixMilli()
	signature := Signature(path, c.token, timestamp)

	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US;q=0.9,en;q=0.8")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("lang", "en")
	req.Header.Set("timezone", c.timezone)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("timestamp", strconv.FormatInt(timestamp, 10))
	req.Header.Set("signature", signature)
	if c.token != "" {
		req.Header.Set("token", c.token)
	}

	c.log.Debug().
		Str("path", path).
		Int64("timestamp", timestamp).
		Str("signature", signature).
		Msg("foxess request")
}
