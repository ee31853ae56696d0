package sitefetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `# Garcia Family Dental

Your smile, our passion. Serving Austin since 2005.

Cleanings from $99 and whitening at $250/session.

[Book your free consultation](https://garcia-dental.com/book)

> Dr. Garcia completely fixed my smile, I could not be happier with the result!

![team photo](https://garcia-dental.com/team.jpg)
`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "markdown", r.Header.Get("X-Return-Format"))

		w.Header().Set("Content-Type", "application/json")
		resp := `{"code": 200, "data": {"title": "Garcia Family Dental", "description": "Family dentist in Austin", "content": ` + jsonString(samplePage) + `}}`
		_, _ = w.Write([]byte(resp))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	snap, err := client.Fetch(context.Background(), "https://garcia-dental.com")
	require.NoError(t, err)

	assert.Equal(t, "Garcia Family Dental", snap.Headline)
	assert.Equal(t, "Family dentist in Austin", snap.MetaDescription)
	assert.Contains(t, snap.Prices, "$99")
	assert.Contains(t, snap.Prices, "$250/session")
	require.Len(t, snap.CTAs, 1)
	assert.Contains(t, snap.CTAs[0], "free consultation")
	require.Len(t, snap.Testimonials, 1)
	assert.Contains(t, snap.Testimonials[0], "fixed my smile")
	assert.Equal(t, []string{"https://garcia-dental.com/team.jpg"}, snap.Images)
	assert.NotEmpty(t, snap.BodyText)
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Fetch(context.Background(), "https://gone.example.com")
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Equal(t, "https://gone.example.com", fe.URL)
}

func TestFetch_RetriesTransientStatus(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code": 200, "data": {"title": "OK", "content": "# OK"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	snap, err := client.Fetch(context.Background(), "https://flaky.example.com")
	require.NoError(t, err)
	assert.Equal(t, "OK", snap.Headline)
	assert.Equal(t, 3, attempts)
}

func TestParseContent_Empty(t *testing.T) {
	snap := parseContent("")
	assert.Empty(t, snap.Headline)
	assert.Empty(t, snap.Prices)
	assert.Empty(t, snap.CTAs)
}

// jsonString quotes a string for embedding in a JSON literal.
func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
