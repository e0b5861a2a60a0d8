package tracing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsPersonalData(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("email", "a@b.com"),
		attribute.String("entity", "customer"),
	)
	require.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("entity"), attrs[0].Key)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.EqualError(t, SafeError(errors.New("database error: insert customer: pq: secret")), "database error")
}

func TestWrapHTTPClientPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	client := WrapHTTPClient(srv.Client())
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}
