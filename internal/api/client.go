// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"github.com/your-org/bakery-storefront/internal/config"
	"github.com/your-org/bakery-storefront/internal/pkg/telemetry"
)

func init() {
	// The bakery API expects numeric money fields
	decimal.MarshalJSONWithoutQuotes = true
}

type requestIDKey struct{}

// WithRequestID attaches a request id that is forwarded as X-Request-ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request id stored in ctx, if any
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// TokenSource supplies the bearer tokens of the two session slots.
// An empty string means the slot is signed out.
type TokenSource interface {
	StaffToken() string
	CustomerToken() string
}

// NoTokens is a TokenSource with both slots signed out
type NoTokens struct{}

func (NoTokens) StaffToken() string    { return "" }
func (NoTokens) CustomerToken() string { return "" }

// Form is a multipart request body with an optional file part
type Form struct {
	Fields    map[string]string
	FileField string
	FileName  string
	File      []byte
}

// Call describes a single request against an endpoint
type Call struct {
	Endpoint       Endpoint
	PathArgs       []string
	Query          url.Values
	Body           any
	Form           *Form
	IdempotencyKey string
}

// MaxResponseBytes caps the body read from one API response
const MaxResponseBytes = 10 << 20

// Client talks to the remote bakery REST API
type Client struct {
	baseURL     string
	userAgent   string
	httpClient  *http.Client
	logger      *logrus.Logger
	maxResponse int64
}

// NewClient creates a new API client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return NewClientWithHTTP(cfg.API.BaseURL, cfg.API.UserAgent, &http.Client{Timeout: cfg.API.Timeout}, logger)
}

// NewClientWithHTTP creates a client around a caller-supplied http.Client
func NewClientWithHTTP(baseURL, userAgent string, httpClient *http.Client, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		userAgent:   userAgent,
		httpClient:  httpClient,
		logger:      logger,
		maxResponse: MaxResponseBytes,
	}
}

// BearerFor picks the token an endpoint carries. ok is false when the endpoint
// needs a slot that is signed out.
func BearerFor(capability Capability, tokens TokenSource) (token string, ok bool) {
	if tokens == nil {
		tokens = NoTokens{}
	}
	switch capability {
	case Public:
		return "", true
	case StaffOnly:
		token = tokens.StaffToken()
		return token, token != ""
	case CustomerOnly:
		token = tokens.CustomerToken()
		return token, token != ""
	case Shared:
		if token = tokens.CustomerToken(); token != "" {
			return token, true
		}
		return tokens.StaffToken(), true
	default:
		return "", false
	}
}

// Do executes call and decodes the (possibly enveloped) response into out.
// out may be nil when the response body is not needed.
func (c *Client) Do(ctx context.Context, tokens TokenSource, call Call, out any) (err error) {
	ep := call.Endpoint

	ctx, span := telemetry.Tracer().Start(ctx, ep.Name)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", ep.Method),
		attribute.String("api.endpoint", ep.Name),
		attribute.String("api.capability", ep.Capability.String()),
	)

	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(KindOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		telemetry.RecordAPICall(ep.Name, outcome)
	}()

	token, ok := BearerFor(ep.Capability, tokens)
	if !ok {
		return &Error{
			Kind:     KindUnauthorized,
			Message:  msgUnauthorized,
			Endpoint: ep.Name,
		}
	}

	path, err := expandPath(ep.Path, call.PathArgs)
	if err != nil {
		return &Error{Kind: KindValidation, Message: err.Error(), Endpoint: ep.Name}
	}

	body, contentType, err := encodeBody(call)
	if err != nil {
		return &Error{Kind: KindValidation, Message: msgValidation, Endpoint: ep.Name, Err: err}
	}

	target := c.baseURL + path
	if len(call.Query) > 0 {
		target += "?" + call.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, target, body)
	if err != nil {
		return &Error{Kind: KindServer, Message: msgServer, Endpoint: ep.Name, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	req.Header.Set("X-Request-ID", requestID)
	if call.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", call.IdempotencyKey)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	log := c.logger.WithFields(logrus.Fields{
		"endpoint":   ep.Name,
		"method":     ep.Method,
		"path":       path,
		"request_id": requestID,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("API call failed")
		return fromTransport(ep.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse+1))
	if err != nil {
		log.WithError(err).Warn("Failed to read API response")
		return fromTransport(ep.Name, err)
	}
	if int64(len(raw)) > c.maxResponse {
		log.WithField("limit", c.maxResponse).Warn("API response too large")
		return &Error{
			Kind:     KindServer,
			Status:   resp.StatusCode,
			Message:  "The server sent an unexpectedly large response",
			Endpoint: ep.Name,
		}
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := KindFromStatus(resp.StatusCode)
		message := serverMessage(raw)
		if message == "" {
			message = fallbackMessage(kind)
		}
		log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"kind":   kind,
		}).Info("API call rejected")
		return &Error{
			Kind:     kind,
			Status:   resp.StatusCode,
			Message:  message,
			Endpoint: ep.Name,
		}
	}

	log.WithField("status", resp.StatusCode).Debug("API call completed")

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(unwrapData(raw), out); err != nil {
		return &Error{
			Kind:     KindServer,
			Status:   resp.StatusCode,
			Message:  msgServer,
			Endpoint: ep.Name,
			Err:      fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

// expandPath fills {placeholders} in order with escaped args
func expandPath(pattern string, args []string) (string, error) {
	var b strings.Builder
	rest := pattern
	i := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("malformed path %q", pattern)
		}
		if i >= len(args) {
			return "", fmt.Errorf("missing path argument %s", rest[open:open+end+1])
		}
		if args[i] == "" {
			return "", fmt.Errorf("empty path argument %s", rest[open:open+end+1])
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(args[i]))
		rest = rest[open+end+1:]
		i++
	}
	if i != len(args) {
		return "", fmt.Errorf("too many path arguments for %q", pattern)
	}
	return b.String(), nil
}

func encodeBody(call Call) (io.Reader, string, error) {
	if call.Form != nil {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for k, v := range call.Form.Fields {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("failed to write form field %s: %w", k, err)
			}
		}
		if len(call.Form.File) > 0 {
			part, err := w.CreateFormFile(call.Form.FileField, call.Form.FileName)
			if err != nil {
				return nil, "", fmt.Errorf("failed to create file part: %w", err)
			}
			if _, err := part.Write(call.Form.File); err != nil {
				return nil, "", fmt.Errorf("failed to write file part: %w", err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
		}
		return &buf, w.FormDataContentType(), nil
	}

	if call.Body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(call.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request data: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// unwrapData returns the "data" member of an enveloped response, or raw itself
func unwrapData(raw []byte) []byte {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return raw
	}
	if data, ok := envelope["data"]; ok {
		return data
	}
	return raw
}

// serverMessage extracts a human message from an error body
func serverMessage(raw []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	for _, field := range []json.RawMessage{body.Message, body.Error} {
		var s string
		if len(field) > 0 && json.Unmarshal(field, &s) == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
