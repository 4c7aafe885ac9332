package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DashScope calls a Bailian application completion endpoint.
type DashScope struct {
	BaseURL string
	AppID   string
	Client  *http.Client
}

type dashScopeRequest struct {
	Input struct {
		Prompt string `json:"prompt"`
	} `json:"input"`
	Parameters struct{} `json:"parameters"`
	Debug      struct{} `json:"debug"`
}

type dashScopeResponse struct {
	Output struct {
		Text string `json:"text"`
	} `json:"output"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// Name implements Backend.
func (d *DashScope) Name() string { return "dashscope" }

// CredentialEnv implements Backend.
func (d *DashScope) CredentialEnv() string { return "DASHSCOPE_API_KEY" }

// Call implements Backend.
func (d *DashScope) Call(ctx context.Context, prompt, apiKey string) (string, error) {
	if d.AppID == "" {
		return "", fmt.Errorf("DASHSCOPE_APP_ID is not set")
	}

	var reqBody dashScopeRequest
	reqBody.Input.Prompt = prompt
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(d.BaseURL, "/") + "/api/v1/apps/" + d.AppID + "/completion"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out dashScopeResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode != http.StatusOK {
		msg := out.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", &StatusError{Code: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	return out.Output.Text, nil
}
