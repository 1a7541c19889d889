package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/model"
	"hostel-dashboard-backend/internal/query"
)

// HTTPOptions configures an HTTPSource.
type HTTPOptions struct {
	BaseURL   string
	Headers   map[string]string
	HTTPProxy string
	PageSize  int
	Timeout   time.Duration
}

// apiResponse models the envelope every upstream endpoint responds with.
type apiResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// apiPage is the paged payload returned by list endpoints.
type apiPage[T any] struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
	Items    []T `json:"items"`
}

type resolveRequest struct {
	Response   string    `json:"response"`
	ResolvedAt time.Time `json:"resolvedAt"`
}

// HTTPSource is a DataSource backed by a remote JSON API.
type HTTPSource struct {
	opts   HTTPOptions
	client *http.Client
}

// NewHTTPSource creates a remote data source. An invalid proxy URL is logged
// and ignored.
func NewHTTPSource(opts HTTPOptions) *HTTPSource {
	var transport http.RoundTripper = &http.Transport{}
	if opts.HTTPProxy != "" {
		proxyURL, err := url.Parse(opts.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Data source will not use a proxy.", opts.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &HTTPSource{
		opts: opts,
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
	}
}

// LoadNotifications walks every page of the hostel's notifications.
func (s *HTTPSource) LoadNotifications(ctx context.Context, hostelID string, f query.Filter) ([]model.Notification, error) {
	var all []model.Notification
	total := 1
	for page := 1; (page-1)*s.opts.PageSize < total; page++ {
		params := url.Values{}
		params.Set("page", strconv.Itoa(page))
		params.Set("pageSize", strconv.Itoa(s.opts.PageSize))
		if f.Category != nil {
			params.Set("category", string(*f.Category))
		}
		if f.Priority != nil {
			params.Set("priority", string(*f.Priority))
		}

		resp, err := call[apiPage[model.Notification]](ctx, s, OpLoadNotifications, http.MethodGet,
			"/hostels/"+url.PathEscape(hostelID)+"/notifications?"+params.Encode(), nil)
		if err != nil {
			return nil, err
		}
		if resp.Total == 0 || len(resp.Items) == 0 {
			break
		}
		total = resp.Total
		all = append(all, resp.Items...)
	}

	for i := range all {
		all[i].CreatedByID = all[i].CreatedBy.ID
	}
	return all, nil
}

func (s *HTTPSource) LoadReadReceipts(ctx context.Context, userID string) ([]model.ReadReceipt, error) {
	resp, err := call[apiPage[model.ReadReceipt]](ctx, s, OpLoadReadReceipts, http.MethodGet,
		"/users/"+url.PathEscape(userID)+"/read-receipts", nil)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (s *HTTPSource) PersistNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	stored, err := call[model.Notification](ctx, s, OpPersistNotification, http.MethodPost, "/notifications", n)
	if err != nil {
		return model.Notification{}, err
	}
	if stored.CreatedByID == "" {
		stored.CreatedByID = stored.CreatedBy.ID
	}
	return stored, nil
}

func (s *HTTPSource) PersistReadReceipt(ctx context.Context, r model.ReadReceipt) (model.ReadReceipt, error) {
	return call[model.ReadReceipt](ctx, s, OpPersistReadReceipt, http.MethodPost, "/read-receipts", r)
}

func (s *HTTPSource) LoadFeedback(ctx context.Context, hostelID string) ([]model.Feedback, error) {
	resp, err := call[apiPage[model.Feedback]](ctx, s, OpLoadFeedback, http.MethodGet,
		"/hostels/"+url.PathEscape(hostelID)+"/feedback", nil)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (s *HTTPSource) PersistFeedback(ctx context.Context, f model.Feedback) (model.Feedback, error) {
	return call[model.Feedback](ctx, s, OpPersistFeedback, http.MethodPost, "/feedback", f)
}

func (s *HTTPSource) PersistFeedbackResolution(ctx context.Context, hostelID, id, response string, resolvedAt time.Time) (model.Feedback, error) {
	return call[model.Feedback](ctx, s, OpPersistFeedbackResolution, http.MethodPost,
		"/hostels/"+url.PathEscape(hostelID)+"/feedback/"+url.PathEscape(id)+"/resolve",
		resolveRequest{Response: response, ResolvedAt: resolvedAt})
}

// call performs one request and decodes the envelope's data into T.
func call[T any](ctx context.Context, s *HTTPSource, op, method, path string, body any) (T, error) {
	var zero T
	errOp := "datasource." + op

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("%s: failed to marshal request payload: %w", errOp, err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.opts.BaseURL+path, reader)
	if err != nil {
		return zero, apperr.Unavailable(errOp, fmt.Errorf("failed to create request: %w", err))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range s.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return zero, apperr.Unavailable(errOp, fmt.Errorf("http request failed: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return zero, apperr.Unauthorized(errOp, "upstream rejected credentials (status %d)", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return zero, apperr.NotFound(errOp, "upstream resource %s not found", path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return zero, apperr.Unavailable(errOp, fmt.Errorf("received non-2xx status code: %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, apperr.Unavailable(errOp, fmt.Errorf("failed to read response body: %w", err))
	}

	var apiResp apiResponse[T]
	if err := json.Unmarshal(raw, &apiResp); err != nil {
		return zero, apperr.Unavailable(errOp, fmt.Errorf("failed to unmarshal api response: %w", err))
	}
	if apiResp.Code != 0 {
		return zero, apperr.Unavailable(errOp, fmt.Errorf("API returned non-zero application code %d: %s", apiResp.Code, apiResp.Message))
	}
	return apiResp.Data, nil
}
