package chatclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
)

const (
	maxTitleWords = 5
	maxTitleRunes = 30
)

var ErrEmptyTitle = errors.New("generated title is empty")

// TitleGenerator derives a short conversation title from its first exchange.
type TitleGenerator interface {
	GenerateTitle(ctx context.Context, userMessage, assistantReply string) (string, error)
}

var _ TitleGenerator = (*OpenAITitleGenerator)(nil)

// OpenAITitleGenerator asks an OpenAI-compatible chat completion endpoint for a title.
type OpenAITitleGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAITitleGenerator(cfg TitleConfig) *OpenAITitleGenerator {
	// An empty key is allowed here; the endpoint rejects it at call time.
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAITitleGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func titlePrompt(userMessage, assistantReply string) string {
	return fmt.Sprintf("Generate a very brief (max 4-5 words) title for a chat conversation that starts with this message: \"%s\" and includes this response: \"%s\". "+
		"The title should capture the main topic or intent. Just return the title itself without any additional text or punctuation.",
		userMessage, assistantReply)
}

func (g *OpenAITitleGenerator) GenerateTitle(ctx context.Context, userMessage, assistantReply string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: titlePrompt(userMessage, assistantReply)},
		},
		MaxTokens:   20,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from title model")
	}
	return SanitizeTitle(resp.Choices[0].Message.Content)
}

// SanitizeTitle trims quotes and punctuation, keeps at most five words and
// thirty characters, and fails if nothing is left.
func SanitizeTitle(raw string) (string, error) {
	// Models sometimes answer over several lines; the first non-empty one is the title.
	line := ""
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	line = strings.TrimPrefix(line, "Title:")

	words := strings.Fields(strings.TrimFunc(line, isTitleNoise))
	if len(words) > maxTitleWords {
		words = words[:maxTitleWords]
	}
	title := strings.Join(words, " ")

	if utf8.RuneCountInString(title) > maxTitleRunes {
		title = string([]rune(title)[:maxTitleRunes])
	}
	title = strings.TrimFunc(title, isTitleNoise)
	if title == "" {
		return "", ErrEmptyTitle
	}
	return title, nil
}

func isTitleNoise(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || r == '`'
}
