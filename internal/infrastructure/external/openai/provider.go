package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/application/port"
	"github.com/garyjia/mrsl-intake/internal/pdf"
)

const (
	DefaultModel    = "gpt-4o"
	DefaultMaxPages = 4
	DefaultTimeout  = 120 * time.Second
)

// Config for the OpenAI provider
type Config struct {
	APIKey      string
	BaseURL     string // empty uses the library default
	Model       string
	Timeout     time.Duration
	MaxPages    int
	Temperature float32
}

// Provider implements port.InferenceProvider with chat completions.
// PDF pages are rendered to JPEG and sent as image parts.
type Provider struct {
	client   *openai.Client
	renderer pdf.Renderer
	cfg      Config
	logger   *zap.Logger
}

// NewProvider creates an OpenAI provider
func NewProvider(cfg Config, renderer pdf.Renderer, logger *zap.Logger) *Provider {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Provider{
		client:   openai.NewClientWithConfig(clientCfg),
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) HasCredential() bool {
	return strings.TrimSpace(p.cfg.APIKey) != ""
}

// Generate renders the document pages and asks for a strict json_schema response
func (p *Provider) Generate(ctx context.Context, req port.InferenceRequest) (string, error) {
	parts, err := p.documentParts(req.Document)
	if err != nil {
		return "", err
	}

	schema, err := json.Marshal(req.Schema)
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}

	userParts := append([]openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: req.TaskPrompt,
	}}, parts...)

	name := req.SchemaName
	if name == "" {
		name = "response"
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		Temperature: p.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.SystemInstruction,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: userParts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: json.RawMessage(schema),
				Strict: true,
			},
		},
	})
	if err != nil {
		p.logger.Error("OpenAI API call failed", zap.Error(err))
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	p.logger.Debug("OpenAI responded",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

// documentParts converts the document into image parts the chat API accepts
func (p *Provider) documentParts(doc port.Document) ([]openai.ChatMessagePart, error) {
	var images [][]byte
	var mediaType string

	switch {
	case strings.HasPrefix(doc.MediaType, "image/"):
		images, mediaType = [][]byte{doc.Data}, doc.MediaType
	case p.renderer != nil:
		rendered, err := p.renderer.RenderJPEG(doc.Data, p.cfg.MaxPages)
		if err != nil {
			return nil, fmt.Errorf("failed to render PDF pages: %w", err)
		}
		images, mediaType = rendered, "image/jpeg"
	default:
		return nil, fmt.Errorf("no renderer configured for %s", doc.MediaType)
	}

	p.logger.Debug("Prepared document images", zap.Int("images", len(images)))

	parts := make([]openai.ChatMessagePart, 0, len(images))
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(img),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}
	return parts, nil
}
