package gemini

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Turn is one prior message replayed to the model as conversational context.
// Role is "user" or "model"; anything else is sent as "user".
type Turn struct {
	Role    string
	Content string
}

type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator builds a conversational completion client.
func NewGenerator(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Generator, error) {
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, all...)
	if err != nil {
		return nil, err
	}
	return &Generator{client: client, model: model}, nil
}

// Complete sends the prompt with the given system instruction and history and
// returns the generated text.
func (g *Generator) Complete(ctx context.Context, system string, history []Turn, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	session := model.StartChat()
	session.History = make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := turn.Role
		if role != "user" && role != "model" {
			role = "user"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return ExtractText(resp), nil
}

// ExtractText is the single canonical accessor for a generation response's
// text content.
func ExtractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}

func (g *Generator) Close() error {
	return g.client.Close()
}
