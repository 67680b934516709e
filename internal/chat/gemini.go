package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agentforge-backend/internal/domain"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// FallbackMessage is returned to the renter whenever the provider call
// fails; the chat surface never exposes a raw provider error.
const FallbackMessage = "I'm having trouble connecting to my knowledge base right now. Please try again in a moment."

// Client talks to a Gemini-style generateContent endpoint. It is an opaque,
// fallible collaborator: callers treat any error as "no response".
type Client struct {
	httpClient      *http.Client
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	temperature     float64
}

type Config struct {
	APIKey          string
	Model           string
	BaseURL         string
	MaxOutputTokens int
	Temperature     float64
	Timeout         time.Duration
}

func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	return &Client{
		httpClient:      httpClient,
		apiKey:          cfg.APIKey,
		baseURL:         strings.TrimRight(baseURL, "/"),
		model:           model,
		maxOutputTokens: maxTokens,
		temperature:     temperature,
	}
}

// PersonaPrompt builds the system instruction that keeps the model in
// character as the rented agent.
func PersonaPrompt(agent *domain.Agent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a %s AI agent with the following traits: %s.\n",
		agent.Name, strings.ToLower(agent.Category), strings.Join(agent.Traits, ", "))
	fmt.Fprintf(&b, "Your areas of expertise include: %s.\n", strings.Join(agent.Expertise, ", "))
	b.WriteString("Respond to the user in a way that reflects your personality traits and expertise.\n")
	b.WriteString("Keep your responses concise, helpful, and engaging.\n")
	fmt.Fprintf(&b, "Always stay in character as %s.", agent.Name)
	return b.String()
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent        `json:"system_instruction,omitempty"`
	Contents          []geminiContent       `json:"contents"`
	SafetySettings    []geminiSafetySetting `json:"safetySettings,omitempty"`
	GenerationConfig  struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
		TopP            float64 `json:"topP"`
		TopK            int     `json:"topK"`
	} `json:"generationConfig"`
}

var safetySettings = []geminiSafetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// Generate returns one in-character response for the user's message given
// the prior conversation.
func (c *Client) Generate(ctx context.Context, agent *domain.Agent, history []domain.ChatTurn, userMessage string) (string, error) {
	if c == nil {
		return "", errors.New("chat client is not configured")
	}
	if strings.TrimSpace(c.apiKey) == "" {
		return "", errors.New("chat api key is empty")
	}

	req := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: PersonaPrompt(agent)}}},
		SafetySettings:    safetySettings,
	}
	req.GenerationConfig.MaxOutputTokens = c.maxOutputTokens
	req.GenerationConfig.Temperature = c.temperature
	req.GenerationConfig.TopP = 0.8
	req.GenerationConfig.TopK = 40

	for _, turn := range history {
		role := "user"
		if turn.Role == domain.ChatRoleModel {
			role = "model"
		}
		req.Contents = append(req.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: turn.Content}},
		})
	}
	req.Contents = append(req.Contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: userMessage}},
	})

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("gemini error: status %d: %s", resp.StatusCode, string(data))
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []geminiPart `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	var out strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	return out.String(), nil
}
