package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/ats-evaluator/internal/config"
	"alfredoptarigan/ats-evaluator/internal/logger"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role
	Content string
}

// Conversation is an ordered sequence of role tagged messages.
type Conversation []Message

// ModelGateway sends a conversation to a generative model and returns its raw text.
type ModelGateway interface {
	// Invoke calls preferredModel (the configured primary when empty) and retries
	// once on the fallback model if it fails. The returned text is never altered.
	Invoke(ctx context.Context, conv Conversation, preferredModel string) (string, error)
	PrimaryModel() string
}

// contentGenerator is the slice of genai.Models the gateway depends on.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type modelGateway struct {
	generator contentGenerator
	cfg       config.ModelConfig
	log       *zap.Logger
}

func NewModelGateway(ctx context.Context, cfg config.ModelConfig, log *zap.Logger) (ModelGateway, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Backend == config.BackendVertex {
		cc = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.Project,
			Location: cfg.Location,
		}
	}
	if cfg.Host != "" {
		cc.HTTPOptions.BaseURL = cfg.Host
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return newModelGateway(client.Models, cfg, log), nil
}

func newModelGateway(generator contentGenerator, cfg config.ModelConfig, log *zap.Logger) *modelGateway {
	return &modelGateway{
		generator: generator,
		cfg:       cfg,
		log:       log.Named("gateway"),
	}
}

// PrimaryModel implements ModelGateway.
func (g *modelGateway) PrimaryModel() string {
	return g.cfg.Primary
}

// Invoke implements ModelGateway.
func (g *modelGateway) Invoke(ctx context.Context, conv Conversation, preferredModel string) (string, error) {
	if preferredModel == "" {
		preferredModel = g.cfg.Primary
	}

	text, err := g.generate(ctx, conv, preferredModel)
	if err == nil {
		return text, nil
	}

	if preferredModel == g.cfg.Fallback {
		return "", fmt.Errorf("%w: %s: %w", ErrModelUnavailable, preferredModel, err)
	}

	g.log.Warn("model call failed, trying fallback",
		zap.String("model", preferredModel),
		zap.String("fallback", g.cfg.Fallback),
		zap.Error(err),
	)

	text, fallbackErr := g.generate(ctx, conv, g.cfg.Fallback)
	if fallbackErr != nil {
		return "", fmt.Errorf("%w: %s: %w; %s: %w",
			ErrModelUnavailable, preferredModel, err, g.cfg.Fallback, fallbackErr)
	}

	return text, nil
}

func (g *modelGateway) generate(ctx context.Context, conv Conversation, model string) (string, error) {
	temperature := g.cfg.Temperature
	genConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: g.cfg.MaxTokens,
	}

	var system []string
	var contents []*genai.Content
	for _, msg := range conv {
		switch msg.Role {
		case RoleSystem:
			system = append(system, msg.Content)
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		genConfig.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	resp, err := g.generator.GenerateContent(ctx, model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", err
	}

	g.log.Debug("model output",
		zap.String("model", model),
		zap.Int("length", len(text)),
		zap.String("preview", logger.TruncateForLog(text, g.cfg.LogPreviewLength)),
	)

	return text, nil
}

// responseText joins the non-thought text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("no candidates in response")
	}

	content := resp.Candidates[0].Content
	if content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String(), nil
}
