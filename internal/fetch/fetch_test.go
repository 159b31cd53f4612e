package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeatherClient_Current(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "paris", r.URL.Query().Get("q"))
		assert.Equal(t, "secret", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		w.Write([]byte(`{"weather":[{"description":"light rain"}],"main":{"temp":14.2,"feels_like":12.8}}`))
	}))
	defer srv.Close()

	c := NewWeatherClient("secret")
	c.BaseURL = srv.URL

	summary, err := c.Current(context.Background(), "paris")
	assert.NoError(t, err)
	assert.Equal(t, "light rain, temperature 14.2°C, feels like 12.8°C", summary)
}

func TestWeatherClient_MissingKey(t *testing.T) {
	c := NewWeatherClient("")
	_, err := c.Current(context.Background(), "paris")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestWeatherClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "city not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewWeatherClient("secret")
	c.BaseURL = srv.URL

	_, err := c.Current(context.Background(), "atlantis")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoAPIKey)
}

func TestWeatherClient_NoConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"weather":[],"main":{"temp":0,"feels_like":0}}`))
	}))
	defer srv.Close()

	c := NewWeatherClient("secret")
	c.BaseURL = srv.URL

	_, err := c.Current(context.Background(), "void")
	assert.Error(t, err)
}

func TestNewsClient_TopHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "in", r.URL.Query().Get("country"))
		assert.Equal(t, "5", r.URL.Query().Get("pageSize"))
		w.Write([]byte(`{"articles":[{"title":"first"},{"title":"second"},{"title":"third"}]}`))
	}))
	defer srv.Close()

	c := NewNewsClient("secret")
	c.BaseURL = srv.URL

	headlines, err := c.TopHeadlines(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, headlines)
}

func TestNewsClient_MissingKey(t *testing.T) {
	c := NewNewsClient("")
	_, err := c.TopHeadlines(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestNewsClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewNewsClient("secret")
	c.BaseURL = srv.URL

	_, err := c.TopHeadlines(context.Background(), 5)
	assert.Error(t, err)
}
