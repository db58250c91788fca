package advice

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini calls the Gemini API generateContent method once per request
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini API client. An empty baseURL uses the public endpoint.
func NewGemini(ctx context.Context, apiKey, model, baseURL string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](Temperature),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
