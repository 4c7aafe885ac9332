package chat

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Gemini calls the Gemini API through the genai SDK.
type Gemini struct {
	Model string
}

// Name implements Backend.
func (g *Gemini) Name() string { return "gemini" }

// CredentialEnv implements Backend.
func (g *Gemini) CredentialEnv() string { return "GEMINI_API_KEY" }

// Call implements Backend. A client is built per call because the key is
// read from the environment each time.
func (g *Gemini) Call(ctx context.Context, prompt, apiKey string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, g.Model, genai.Text(prompt), nil)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{Code: apiErr.Code, Message: apiErr.Message}
		}
		return "", err
	}
	return resp.Text(), nil
}
