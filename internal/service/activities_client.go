package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"activity-board/internal/domain"
	"activity-board/pkg/errors"
	"activity-board/pkg/logger"
	"activity-board/pkg/metrics"
)

// Operation names used in logs and metrics.
const (
	OpListActivities = "list_activities"
	OpSignup         = "signup"
	OpUnregister     = "unregister"
)

// apiMessage is the body of a mutation response. Success carries message,
// failure carries detail.
type apiMessage struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// ActivitiesClient talks to the remote activities API
type ActivitiesClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
	metrics    *metrics.Collector
}

// NewActivitiesClient creates a new activities API client. A zero timeout
// leaves requests to the transport's own limits.
func NewActivitiesClient(baseURL string, timeout time.Duration, logger *logger.Logger, collector *metrics.Collector) *ActivitiesClient {
	return &ActivitiesClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: collector,
	}
}

// ListActivities fetches the full catalog
func (c *ActivitiesClient) ListActivities(ctx context.Context) (domain.Catalog, error) {
	start := time.Now()
	status, body, err := c.do(ctx, http.MethodGet, "/activities")
	if err != nil {
		c.observe(OpListActivities, metrics.OutcomeTransport, start)
		return domain.Catalog{}, err
	}
	if status < 200 || status > 299 {
		c.observe(OpListActivities, metrics.OutcomeUpstream, start)
		return domain.Catalog{}, errors.NewUpstreamError(status, decodeMessage(body).Detail)
	}

	catalog, err := decodeCatalog(body)
	if err != nil {
		c.observe(OpListActivities, metrics.OutcomeParse, start)
		c.logger.WithFields(map[string]interface{}{
			"status_code": status,
			"body_bytes":  len(body),
		}).WithError(err).Error("Failed to parse activities catalog")
		return domain.Catalog{}, err
	}

	c.observe(OpListActivities, metrics.OutcomeSuccess, start)
	c.logger.WithField("activities", catalog.Len()).Debug("Fetched activities catalog")
	return catalog, nil
}

// Signup registers email for activity and returns the server's message
func (c *ActivitiesClient) Signup(ctx context.Context, activity, email string) (string, error) {
	path := "/activities/" + EncodeComponent(activity) + "/signup"
	return c.mutate(ctx, OpSignup, http.MethodPost, path, email)
}

// Unregister removes email from activity and returns the server's message
func (c *ActivitiesClient) Unregister(ctx context.Context, activity, email string) (string, error) {
	path := "/activities/" + EncodeComponent(activity) + "/participants"
	return c.mutate(ctx, OpUnregister, http.MethodDelete, path, email)
}

func (c *ActivitiesClient) mutate(ctx context.Context, op, method, path, email string) (string, error) {
	start := time.Now()
	status, body, err := c.do(ctx, method, path+"?email="+EncodeComponent(email))
	if err != nil {
		c.observe(op, metrics.OutcomeTransport, start)
		return "", err
	}

	if status < 200 || status > 299 {
		c.observe(op, metrics.OutcomeUpstream, start)
		detail := decodeMessage(body).Detail
		c.logger.WithFields(map[string]interface{}{
			"operation":   op,
			"status_code": status,
			"detail":      detail,
		}).Info("Activities API rejected request")
		return "", errors.NewUpstreamError(status, detail)
	}

	var msg apiMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		c.observe(op, metrics.OutcomeParse, start)
		return "", errors.NewParseError("invalid response body", err)
	}

	c.observe(op, metrics.OutcomeSuccess, start)
	return msg.Message, nil
}

// do sends the request and reads the whole body. Only transport failures
// are returned as errors; status handling is left to the caller.
// pathAndQuery must already be percent-encoded.
func (c *ActivitiesClient) do(ctx context.Context, method, pathAndQuery string) (int, []byte, error) {
	raw := c.baseURL + pathAndQuery
	// The parsed URL keeps the escaped form in RawPath, so an encoded slash
	// in an activity name stays inside one path segment.
	req, err := http.NewRequestWithContext(ctx, method, raw, nil)
	if err != nil {
		return 0, nil, errors.NewInternalError("failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"method": method,
			"path":   pathAndQuery,
		}).WithError(err).Error("Activities API request failed")
		return 0, nil, errors.NewExternalError("activities API request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.NewExternalError("failed to read response body", err)
	}
	return resp.StatusCode, body, nil
}

func (c *ActivitiesClient) observe(op, outcome string, start time.Time) {
	c.metrics.ObserveAPICall(op, outcome, time.Since(start))
}

// decodeCatalog walks the JSON object in document order so the catalog
// lists activities the way the API does.
func decodeCatalog(body []byte) (domain.Catalog, error) {
	if !gjson.ValidBytes(body) {
		return domain.Catalog{}, errors.NewParseError("catalog is not valid JSON", nil)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return domain.Catalog{}, errors.NewParseError("catalog is not a JSON object", nil)
	}

	var (
		activities []domain.Activity
		decodeErr  error
	)
	root.ForEach(func(key, value gjson.Result) bool {
		var a domain.Activity
		if err := json.Unmarshal([]byte(value.Raw), &a); err != nil {
			decodeErr = errors.NewParseError(fmt.Sprintf("activity %q", key.String()), err)
			return false
		}
		a.Name = key.String()
		activities = append(activities, a)
		return true
	})
	if decodeErr != nil {
		return domain.Catalog{}, decodeErr
	}
	return domain.NewCatalog(activities...), nil
}

// decodeMessage tolerates empty or non-JSON bodies.
func decodeMessage(body []byte) apiMessage {
	var msg apiMessage
	_ = json.Unmarshal(body, &msg)
	return msg
}

// EncodeComponent escapes s the way encodeURIComponent does: everything
// except letters, digits and -_.!~*'() is percent-encoded, spaces as %20.
func EncodeComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if isUnreservedComponent(ch) {
			b.WriteByte(ch)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", ch)
	}
	return b.String()
}

// DecodeComponent reverses EncodeComponent.
func DecodeComponent(s string) (string, error) {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return "", errors.NewValidationError("malformed encoded value", map[string]interface{}{"value": s})
	}
	return decoded, nil
}

func isUnreservedComponent(ch byte) bool {
	switch {
	case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9':
		return true
	}
	switch ch {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
