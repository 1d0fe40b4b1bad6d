package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pkaushik-02002/BagavatgitaAI/internal/models"
)

type GeminiService struct {
	client    *genai.Client
	modelName string
	rateChan  chan struct{} // Token bucket
}

func NewGeminiService(apiKey, modelName string, concurrentReqs int) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiService{
		client:    client,
		modelName: modelName,
		rateChan:  rateChan,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// BuildGitaPrompt assembles the GitaAI persona prompt around the chapter
// summaries used as scriptural context.
func BuildGitaPrompt(gitaContext string) string {
	if gitaContext == "" {
		gitaContext = "Could not retrieve Bhagavad Gita context. Please answer based on general knowledge."
	}

	return fmt.Sprintf(`I want you to act as GitaAI, an AI-powered spiritual guide based on the Bhagavad Gita.
When responding, provide guidance, interpretations, and wisdom from the Bhagavad Gita.
Use the following chapter summaries as context, but avoid direct quotes unless necessary.
Your responses should be insightful, compassionate, and aligned with the Gita's teachings.
When asked about topics not directly related to the Gita, provide general guidance while connecting it to relevant spiritual principles.

Here is the Bhagavad Gita context to inform your responses:
%s

Remember to maintain a respectful and contemplative tone in your responses.`, gitaContext)
}

// Chat sends one user message with the session's prior history and returns
// the model's reply.
func (s *GeminiService) Chat(ctx context.Context, gitaContext, message string, history []models.ChatMessage) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(BuildGitaPrompt(gitaContext))},
	}

	chat := model.StartChat()
	chat.History = historyToGenai(history)

	resp, err := chat.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini chat failed: %w", err)
	}

	reply := responseText(resp)
	if reply == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return reply, nil
}

func historyToGenai(history []models.ChatMessage) []*genai.Content {
	var out []*genai.Content
	for _, msg := range history {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return out
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(b.String())
}
