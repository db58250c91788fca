package advice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatchai-pro/internal/apperr"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/pkg/logger"
	"dispatchai-pro/pkg/metrics"
)

// Fixed replies returned instead of errors
const (
	EmptyResponseMessage = "I couldn't generate a response at this time."
	ErrorResponseMessage = "Sorry, I encountered an error connecting to the AI service. Please check your API key."
)

const Temperature = 0.7

// Generator is a hosted text-generation model
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// Context is the operational snapshot embedded in the system instruction
type Context struct {
	Drivers []models.Driver
	Loads   []models.Load
}

type driverSummary struct {
	Name     string              `json:"name"`
	Status   models.DriverStatus `json:"status"`
	Location string              `json:"location"`
}

type loadSummary struct {
	ID     string            `json:"id"`
	Origin string            `json:"origin"`
	Dest   string            `json:"dest"`
	Status models.LoadStatus `json:"status"`
}

// SystemInstruction renders the DispatchAI persona with the fleet summary
func SystemInstruction(c Context) (string, error) {
	drivers := make([]driverSummary, 0, len(c.Drivers))
	for _, d := range c.Drivers {
		drivers = append(drivers, driverSummary{Name: d.Name, Status: d.Status, Location: d.CurrentLocation})
	}
	loads := make([]loadSummary, 0, len(c.Loads))
	for _, l := range c.Loads {
		loads = append(loads, loadSummary{ID: l.ID, Origin: l.Origin, Dest: l.Destination, Status: l.Status})
	}

	driversJSON, err := json.Marshal(drivers)
	if err != nil {
		return "", err
	}
	loadsJSON, err := json.Marshal(loads)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are an expert Trucking Dispatch Assistant named \"DispatchAI\".\n")
	b.WriteString("Your goal is to help dispatchers optimize operations, solve problems, and draft communications.\n\n")
	b.WriteString("Current Operational Context:\n")
	fmt.Fprintf(&b, "Drivers: %s\n", driversJSON)
	fmt.Fprintf(&b, "Loads: %s\n\n", loadsJSON)
	b.WriteString("Guidelines:\n")
	b.WriteString("- Be concise and professional.\n")
	b.WriteString("- If asked about assigning loads, analyze the location of available drivers vs load origin.\n")
	b.WriteString("- If asked to draft a message, use professional logistics terminology.\n")
	b.WriteString("- Do not invent data not present in the context unless creating a hypothetical example.\n")
	return b.String(), nil
}

// Service answers dispatcher questions. It never returns an error: any
// failure becomes one of the fixed replies.
type Service struct {
	gen     Generator
	timeout time.Duration
	metrics *metrics.Metrics
	log     logger.Logger
}

// NewService builds the advice service. A nil generator means no API key is
// configured and every request gets the error reply.
func NewService(gen Generator, timeout time.Duration, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{
		gen:     gen,
		timeout: timeout,
		metrics: m,
		log:     log.With("component", "advice"),
	}
}

type result struct {
	text string
	err  error
}

func (s *Service) GetAdvice(ctx context.Context, prompt string, c Context) string {
	if s.gen == nil {
		s.record("disabled", 0)
		s.log.Warn("⚠️ advice requested but no generator is configured")
		return ErrorResponseMessage
	}

	instruction, err := SystemInstruction(c)
	if err != nil {
		s.record("error", 0)
		s.log.Error("❌ failed to build system instruction", "error", err)
		return ErrorResponseMessage
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan result, 1)
	go func() {
		text, err := s.gen.Generate(ctx, instruction, prompt)
		done <- result{text: text, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}
	elapsed := time.Since(start)

	if res.err != nil {
		label := "error"
		if errors.Is(res.err, context.DeadlineExceeded) {
			label = "timeout"
		}
		s.record(label, elapsed)
		s.log.Error("❌ AI service error", "error", apperr.External("text generation failed", res.err), "elapsed", elapsed)
		return ErrorResponseMessage
	}
	if res.text == "" {
		s.record("empty", elapsed)
		return EmptyResponseMessage
	}

	s.record(metrics.ResultSuccess, elapsed)
	return res.text
}

func (s *Service) record(label string, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.AdviceRequests.WithLabelValues(label).Inc()
	if elapsed > 0 {
		s.metrics.AdviceLatency.Observe(elapsed.Seconds())
	}
}
