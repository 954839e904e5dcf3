package monitoring

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServiceAccountJSON(t *testing.T, tokenURI string) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	sa := ServiceAccount{
		ClientEmail: "metrics@test-project.iam.gserviceaccount.com",
		PrivateKey:  string(keyPEM),
		TokenURI:    tokenURI,
	}
	raw, err := json.Marshal(sa)
	require.NoError(t, err)
	return string(raw)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient("", "proj")
	assert.Error(t, err)

	_, err = NewClient(`{"client_email":"a@b.c"}`, "proj")
	assert.Error(t, err)

	_, err = NewClient(`not json`, "proj")
	assert.Error(t, err)

	_, err = NewClient(testServiceAccountJSON(t, ""), "")
	assert.Error(t, err)
}

func TestAssertion_Claims(t *testing.T) {
	c, err := NewClient(testServiceAccountJSON(t, "https://token.test/token"), "proj")
	require.NoError(t, err)

	now := time.Now()
	signed, err := c.assertion(now)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(signed, jwt.MapClaims{})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "metrics@test-project.iam.gserviceaccount.com", claims["iss"])
	assert.Equal(t, monitoringScope, claims["scope"])
	assert.Equal(t, "https://token.test/token", claims["aud"])
	assert.Equal(t, "RS256", parsed.Method.Alg())
}

func TestFetch_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", r.Form.Get("grant_type"))
		assert.NotEmpty(t, r.Form.Get("assertion"))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "at-123"})
	})
	mux.HandleFunc("/v3/projects/test-proj/timeSeries", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-123", r.Header.Get("Authorization"))
		today := time.Now().UTC().Format(time.RFC3339)
		w.Write([]byte(`{"timeSeries":[
			{"metric":{"labels":{"response_code_class":"2xx"}},
			 "points":[{"interval":{"endTime":"` + today + `"},"value":{"int64Value":"90"}}]},
			{"metric":{"labels":{"response_code_class":"5xx"}},
			 "points":[{"interval":{"endTime":"` + today + `"},"value":{"int64Value":"10"}}]}
		]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := NewClient(testServiceAccountJSON(t, srv.URL+"/token"), "test-proj")
	require.NoError(t, err)
	c.baseURL = srv.URL

	m, err := c.Fetch(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, m.DaysBack)
	assert.Len(t, m.Series, 3)
	assert.Equal(t, int64(100), m.TotalRequests)
	assert.Equal(t, int64(10), m.TotalErrors)

	last := m.Series[len(m.Series)-1]
	assert.Equal(t, int64(100), last.RequestCount)
	assert.InDelta(t, 0.1, last.ErrorRate, 1e-9)
}

func TestFetch_TokenExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := NewClient(testServiceAccountJSON(t, srv.URL+"/token"), "p")
	require.NoError(t, err)

	_, err = c.Fetch(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token exchange")
}

func TestAggregate_EmptySeries(t *testing.T) {
	m := aggregate(&timeSeriesResponse{}, "p", 2)
	assert.Len(t, m.Series, 2)
	assert.Equal(t, int64(0), m.TotalRequests)
	for _, p := range m.Series {
		assert.Zero(t, p.ErrorRate)
	}
}
