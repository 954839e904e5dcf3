// Package monitoring queries the Cloud Monitoring API for request-count and
// error-rate time series, authenticating with a hand-rolled service-account
// JWT grant.
package monitoring

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const monitoringScope = "https://www.googleapis.com/auth/monitoring.read"

// ServiceAccount is the subset of a service-account key file this client
// needs.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// DayPoint is one day of aggregated request metrics.
type DayPoint struct {
	Date         string  `json:"date"` // YYYY-MM-DD
	RequestCount int64   `json:"requestCount"`
	ErrorCount   int64   `json:"errorCount"`
	ErrorRate    float64 `json:"errorRate"`
}

// Metrics is the aggregated result returned to the client.
type Metrics struct {
	ProjectID     string     `json:"projectId"`
	DaysBack      int        `json:"daysBack"`
	Series        []DayPoint `json:"series"`
	TotalRequests int64      `json:"totalRequests"`
	TotalErrors   int64      `json:"totalErrors"`
}

// Client fetches metrics for one project.
type Client struct {
	account   ServiceAccount
	key       *rsa.PrivateKey
	projectID string
	http      *http.Client
	baseURL   string // overridable in tests
}

// NewClient parses the service-account JSON and prepares the signing key.
func NewClient(serviceAccountJSON, projectID string) (*Client, error) {
	if serviceAccountJSON == "" {
		return nil, fmt.Errorf("monitoring service account is not configured")
	}
	if projectID == "" {
		return nil, fmt.Errorf("monitoring project id is not configured")
	}

	var account ServiceAccount
	if err := json.Unmarshal([]byte(serviceAccountJSON), &account); err != nil {
		return nil, fmt.Errorf("invalid service account JSON: %w", err)
	}
	if account.ClientEmail == "" || account.PrivateKey == "" {
		return nil, fmt.Errorf("service account JSON is missing client_email or private_key")
	}
	if account.TokenURI == "" {
		account.TokenURI = "https://oauth2.googleapis.com/token"
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(account.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("invalid service account private key: %w", err)
	}

	return &Client{
		account:   account,
		key:       key,
		projectID: projectID,
		http:      &http.Client{Timeout: 30 * time.Second},
		baseURL:   "https://monitoring.googleapis.com",
	}, nil
}

// assertion builds the signed RS256 JWT for the OAuth2 JWT-bearer grant.
func (c *Client) assertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   c.account.ClientEmail,
		"scope": monitoringScope,
		"aud":   c.account.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign service account assertion: %w", err)
	}
	return signed, nil
}

// accessToken exchanges the signed assertion for an access token.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	assertion, err := c.assertion(time.Now())
	if err != nil {
		return "", err
	}

	form := url.Values{
		"grant_type": {"urn:ietf:params:oauth:grant-type:jwt-bearer"},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.account.TokenURI,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token exchange returned %d: %s", resp.StatusCode, string(body))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned no access token")
	}
	return tok.AccessToken, nil
}

// timeSeriesResponse mirrors the fields of timeSeries.list we consume.
type timeSeriesResponse struct {
	TimeSeries []struct {
		Metric struct {
			Labels map[string]string `json:"labels"`
		} `json:"metric"`
		Points []struct {
			Interval struct {
				EndTime time.Time `json:"endTime"`
			} `json:"interval"`
			Value struct {
				Int64Value string `json:"int64Value"`
			} `json:"value"`
		} `json:"points"`
	} `json:"timeSeries"`
}

// Fetch queries daily request counts for the last daysBack days and folds
// them into per-day totals with error rates. Responses with a 4xx/5xx
// response_code label count as errors.
func (c *Client) Fetch(ctx context.Context, daysBack int) (*Metrics, error) {
	if daysBack <= 0 {
		daysBack = 7
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -daysBack)

	q := url.Values{
		"filter":                        {`metric.type = "serviceruntime.googleapis.com/api/request_count"`},
		"interval.startTime":            {start.Format(time.RFC3339)},
		"interval.endTime":              {end.Format(time.RFC3339)},
		"aggregation.alignmentPeriod":   {"86400s"},
		"aggregation.perSeriesAligner":  {"ALIGN_SUM"},
		"aggregation.groupByFields":     {"metric.labels.response_code_class"},
		"aggregation.crossSeriesReducer": {"REDUCE_SUM"},
	}
	endpoint := fmt.Sprintf("%s/v3/projects/%s/timeSeries?%s", c.baseURL, c.projectID, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("monitoring query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("monitoring query returned %d: %s", resp.StatusCode, string(body))
	}

	var ts timeSeriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&ts); err != nil {
		return nil, fmt.Errorf("monitoring query failed: %w", err)
	}

	return aggregate(&ts, c.projectID, daysBack), nil
}

// aggregate folds raw series into per-day request/error totals.
func aggregate(ts *timeSeriesResponse, projectID string, daysBack int) *Metrics {
	type dayAgg struct {
		requests int64
		errors   int64
	}
	days := make(map[string]*dayAgg)

	for _, series := range ts.TimeSeries {
		class := series.Metric.Labels["response_code_class"]
		isError := strings.HasPrefix(class, "4") || strings.HasPrefix(class, "5")

		for _, p := range series.Points {
			date := p.Interval.EndTime.UTC().Format("2006-01-02")
			var count int64
			fmt.Sscanf(p.Value.Int64Value, "%d", &count)

			agg, ok := days[date]
			if !ok {
				agg = &dayAgg{}
				days[date] = agg
			}
			agg.requests += count
			if isError {
				agg.errors += count
			}
		}
	}

	m := &Metrics{ProjectID: projectID, DaysBack: daysBack, Series: []DayPoint{}}
	end := time.Now().UTC()
	for i := daysBack - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i).Format("2006-01-02")
		point := DayPoint{Date: date}
		if agg, ok := days[date]; ok {
			point.RequestCount = agg.requests
			point.ErrorCount = agg.errors
			if agg.requests > 0 {
				point.ErrorRate = float64(agg.errors) / float64(agg.requests)
			}
		}
		m.Series = append(m.Series, point)
		m.TotalRequests += point.RequestCount
		m.TotalErrors += point.ErrorCount
	}
	return m
}
