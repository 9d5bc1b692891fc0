package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	config "github.com/marcusfern/postpilot/configs"
	"google.golang.org/genai"
)

// ContentGenerator produces the draft text and image for a topic.
// GenerateImage returning (nil, nil) signals a graceful skip, not an
// error; a missing image never blocks publication.
type ContentGenerator interface {
	GenerateText(ctx context.Context, topic string) (body string, hashtags string, err error)
	GenerateImage(ctx context.Context, topic, body string) ([]byte, error)
}

type geminiGenerator struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

func NewGeminiGenerator(ctx context.Context, cfg config.Config) (ContentGenerator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiGenerator{
		client:     client,
		textModel:  cfg.GeminiTextModel,
		imageModel: cfg.GeminiImgModel,
	}, nil
}

func (g *geminiGenerator) GenerateText(ctx context.Context, topic string) (string, string, error) {
	prompt := fmt.Sprintf(`Write a short social media post about "%s" for a wellness brand.
Keep it between 150 and 300 characters, friendly and direct.
End with a single line containing 2-4 relevant hashtags.`, topic)

	result, err := g.client.Models.GenerateContent(ctx, g.textModel, genai.Text(prompt), nil)
	if err != nil {
		slog.Info(err.Error())
		return "", "", fmt.Errorf("text generation failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", "", fmt.Errorf("text generation returned empty content")
	}

	body, hashtags := splitHashtags(text)
	return body, hashtags, nil
}

func (g *geminiGenerator) GenerateImage(ctx context.Context, topic, body string) ([]byte, error) {
	prompt := fmt.Sprintf("A clean, bright lifestyle photo for a social media post about %s. Post text: %s", topic, body)

	result, err := g.client.Models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	if len(result.GeneratedImages) == 0 || result.GeneratedImages[0].Image == nil {
		// Model declined to produce an image; publish text-only.
		return nil, nil
	}

	return result.GeneratedImages[0].Image.ImageBytes, nil
}

// splitHashtags separates the trailing hashtag line from the body. When the
// model inlines tags instead, the body is kept as-is and the tags are
// collected from it.
func splitHashtags(text string) (string, string) {
	lines := strings.Split(text, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])

	if strings.HasPrefix(last, "#") && len(lines) > 1 {
		body := strings.TrimSpace(strings.Join(lines[:len(lines)-1], "\n"))
		return body, last
	}

	var tags []string
	for _, field := range strings.Fields(text) {
		if strings.HasPrefix(field, "#") {
			tags = append(tags, field)
		}
	}
	return text, strings.Join(tags, " ")
}
