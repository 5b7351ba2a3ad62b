package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kevinmichaelchen/showcase/internal/models"
)

type Client struct {
	client *openai.Client
	model  string
}

func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

const systemPrompt = `You write project blurbs for a developer's portfolio. Given a GitHub repository's name, primary language, topics and homepage, produce a JSON object with:

"description": one plain sentence (at most 20 words) saying what the project does. No marketing language, no emoji.

Return ONLY valid JSON. No markdown, no code fences.`

type describeResult struct {
	Description string `json:"description"`
}

// Describe drafts a one-sentence description for a repository that has none.
func (c *Client) Describe(ctx context.Context, repo models.Repo) (string, error) {
	var parts []string
	parts = append(parts, fmt.Sprintf("Repository: %s", repo.Name))
	if lang := repo.LanguageName(); lang != "" {
		parts = append(parts, fmt.Sprintf("Language: %s", lang))
	}
	if len(repo.Topics) > 0 {
		parts = append(parts, fmt.Sprintf("Topics: %s", strings.Join(repo.Topics, ", ")))
	}
	if home := repo.HomepageURL(); home != "" {
		parts = append(parts, fmt.Sprintf("Homepage: %s", home))
	}
	userMsg := strings.Join(parts, "\n")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		// No ResponseFormat: not all models support json_object mode.
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("LLM call for %s: %w", repo.Name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned for %s", repo.Name)
	}

	content := stripCodeFences(resp.Choices[0].Message.Content)

	var result describeResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return "", fmt.Errorf("parsing LLM response for %s: %w\nraw: %s", repo.Name, err, content)
	}

	desc := strings.TrimSpace(result.Description)
	if desc == "" {
		return "", fmt.Errorf("empty description returned for %s", repo.Name)
	}
	return desc, nil
}

// stripCodeFences removes markdown code fences that some models wrap around JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		// Remove opening fence (```json or ```)
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		}
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
