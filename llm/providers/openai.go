package providers

import (
	"net/http"
	"os"
	"strings"

	"github.com/plotdeck/plotdeck/llm"
)

// OpenAIProvider implements the OpenAI API for direct OpenAI or
// OpenAI-compatible hosted usage. Separate from OllamaProvider to allow a
// different default URL and required auth.
type OpenAIProvider struct {
	OllamaProvider // Embed for shared request/response format
}

func init() {
	llm.RegisterProvider(&OpenAIProvider{})
}

// Name returns the provider identifier.
func (o *OpenAIProvider) Name() string {
	return "openai"
}

// BuildURL constructs the OpenAI API endpoint.
func (o *OpenAIProvider) BuildURL(baseURL string) string {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}

	return baseURL + "/chat/completions"
}

// RequiredEnv names the OpenAI credential variable.
func (o *OpenAIProvider) RequiredEnv() string {
	return "OPENAI_API_KEY"
}

// SetHeaders adds OpenAI authentication headers.
func (o *OpenAIProvider) SetHeaders(req *http.Request) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
}
