package advice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dispatchai-pro/internal/models"
	"dispatchai-pro/pkg/logger"
	"dispatchai-pro/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text  string
	err   error
	delay time.Duration

	instruction string
	prompt      string
	calls       int
}

func (f *fakeGenerator) Generate(ctx context.Context, instruction, prompt string) (string, error) {
	f.calls++
	f.instruction = instruction
	f.prompt = prompt
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.text, f.err
}

func testContext() Context {
	return Context{
		Drivers: []models.Driver{{ID: "D-101", Name: "John Miller", Status: models.DriverStatusAvailable, CurrentLocation: "Chicago, IL", Phone: "(555) 123-4567"}},
		Loads:   []models.Load{{ID: "L-5001", Origin: "Gary, IN", Destination: "Detroit, MI", Status: models.LoadStatusPending, Rate: 1200}},
	}
}

func TestSystemInstruction_SummarizesFleet(t *testing.T) {
	instruction, err := SystemInstruction(testContext())
	require.NoError(t, err)

	assert.Contains(t, instruction, `named "DispatchAI"`)
	assert.Contains(t, instruction, `Drivers: [{"name":"John Miller","status":"Available","location":"Chicago, IL"}]`)
	assert.Contains(t, instruction, `Loads: [{"id":"L-5001","origin":"Gary, IN","dest":"Detroit, MI","status":"Pending"}]`)
	assert.NotContains(t, instruction, "555", "summaries carry only name, status and location")

	empty, err := SystemInstruction(Context{})
	require.NoError(t, err)
	assert.Contains(t, empty, "Drivers: []")
}

func TestGetAdvice(t *testing.T) {
	tests := []struct {
		name   string
		gen    *fakeGenerator
		want   string
		result string
	}{
		{"verbatim text", &fakeGenerator{text: "Assign D-101 to L-5001."}, "Assign D-101 to L-5001.", "success"},
		{"empty text", &fakeGenerator{text: ""}, EmptyResponseMessage, "empty"},
		{"whitespace text", &fakeGenerator{text: "\n"}, "\n", "success"},
		{"generator error", &fakeGenerator{err: errors.New("401 API key not valid")}, ErrorResponseMessage, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.NewTestMetrics()
			svc := NewService(tt.gen, time.Second, m, logger.NewNop())

			got := svc.GetAdvice(context.Background(), "Who should take L-5001?", testContext())
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, tt.gen.calls, "no retries")
			assert.Equal(t, "Who should take L-5001?", tt.gen.prompt)
			assert.Contains(t, tt.gen.instruction, "John Miller")
			assert.Equal(t, 1.0, testutil.ToFloat64(m.AdviceRequests.WithLabelValues(tt.result)))
		})
	}
}

func TestGetAdvice_Timeout(t *testing.T) {
	m := metrics.NewTestMetrics()
	gen := &fakeGenerator{text: "too late", delay: 500 * time.Millisecond}
	svc := NewService(gen, 20*time.Millisecond, m, logger.NewNop())

	start := time.Now()
	got := svc.GetAdvice(context.Background(), "hello", testContext())
	assert.Equal(t, ErrorResponseMessage, got)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdviceRequests.WithLabelValues("timeout")))
}

func TestGetAdvice_NoGenerator(t *testing.T) {
	svc := NewService(nil, time.Second, nil, logger.NewNop())
	assert.Equal(t, ErrorResponseMessage, svc.GetAdvice(context.Background(), "hello", Context{}))
}

func TestGemini_Generate(t *testing.T) {
	var (
		path   string
		apiKey string
		body   map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("x-goog-api-key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Send "},{"text":"John."}]}}]}`)
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), "test-key", "gemini-2.5-flash", srv.URL+"/")
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), "You are DispatchAI", "Who is free?")
	require.NoError(t, err)
	assert.Equal(t, "Send John.", text)

	assert.True(t, strings.HasSuffix(path, "models/gemini-2.5-flash:generateContent"), path)
	assert.Equal(t, "test-key", apiKey)
	require.NotNil(t, body)
	assert.Contains(t, body, "systemInstruction")
	assert.Contains(t, body, "contents")
	config, ok := body["generationConfig"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 0.7, config["temperature"], 1e-6)
}

func TestGemini_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), "bad-key", "models/gemini-2.5-flash", srv.URL+"/")
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "sys", "hi")
	assert.Error(t, err)
}
