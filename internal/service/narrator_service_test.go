package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leave-planner-api/internal/planner"
)

func narratorWindows(t *testing.T) []planner.Window {
	t.Helper()
	engine, err := planner.NewEngine(
		[]planner.Subject{{ID: "MATH", Name: "Calculus", Attended: 90, Total: 100}},
		planner.WeeklySchedule{"Monday": {"MATH"}},
		nil, 75,
	)
	require.NoError(t, err)
	windows, err := engine.FindSafeVacations(planner.DefaultParams(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	require.NotEmpty(t, windows)
	return windows
}

func TestNarratorServiceCallsChatCompletions(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Take option 1.  "}}]}`))
	}))
	defer srv.Close()

	svc := NewNarratorService(NarratorConfig{Enabled: true, BaseURL: srv.URL, APIKey: "key", Model: "test-model"}, srv.Client(), NewMetricsService(), nil)
	text, fallback := svc.Narrate(context.Background(), "SUMMARY", narratorWindows(t))

	assert.False(t, fallback)
	assert.Equal(t, "Take option 1.", text)
	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "SUMMARY", got.Messages[1].Content)
}

func TestNarratorServiceFallsBackOnUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	windows := narratorWindows(t)
	svc := NewNarratorService(NarratorConfig{Enabled: true, BaseURL: srv.URL, APIKey: "key"}, srv.Client(), nil, nil)
	text, fallback := svc.Narrate(context.Background(), "SUMMARY", windows)

	assert.True(t, fallback)
	assert.Equal(t, FallbackNarration(windows), text)
}

func TestNarratorServiceFallsBackOnEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	svc := NewNarratorService(NarratorConfig{Enabled: true, BaseURL: srv.URL, APIKey: "key"}, srv.Client(), nil, nil)
	_, fallback := svc.Narrate(context.Background(), "SUMMARY", nil)
	assert.True(t, fallback)
}

func TestNarratorServiceDisabled(t *testing.T) {
	svc := NewNarratorService(NarratorConfig{Enabled: true}, nil, nil, nil)
	assert.False(t, svc.Enabled())

	text, fallback := svc.Narrate(context.Background(), "SUMMARY", nil)
	assert.True(t, fallback)
	assert.Contains(t, text, "No safe leave window")
}

func TestFallbackNarrationNamesBestWindow(t *testing.T) {
	windows := narratorWindows(t)
	text := FallbackNarration(windows)
	assert.Contains(t, text, planner.DateKey(windows[0].Start))
	assert.Contains(t, text, planner.DateKey(windows[0].End))
}
