package illustrate

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dgallion1/kidsbook/internal/generate"
)

// ImageClient is the part of the OpenAI client the illustrator needs.
type ImageClient interface {
	CreateImage(ctx context.Context, req openai.ImageRequest) (openai.ImageResponse, error)
}

// maxPromptRunes is the longest prompt the image API accepts.
const maxPromptRunes = 4000

// OpenAIIllustrator renders prompts with the OpenAI image API.
type OpenAIIllustrator struct {
	client ImageClient
	model  string
	retry  generate.Policy
	log    *slog.Logger
}

func NewOpenAIIllustrator(client ImageClient, model string, log *slog.Logger) *OpenAIIllustrator {
	return &OpenAIIllustrator{
		client: client,
		model:  cmp.Or(model, openai.CreateImageModelDallE3),
		retry:  generate.DefaultPolicy(),
		log:    log,
	}
}

func (o *OpenAIIllustrator) Render(ctx context.Context, prompt, _ string) (string, error) {
	if r := []rune(prompt); len(r) > maxPromptRunes {
		prompt = string(r[:maxPromptRunes])
	}

	var url string
	err := o.retry.Do(ctx, func(ctx context.Context) error {
		resp, err := o.client.CreateImage(ctx, openai.ImageRequest{
			Prompt:         prompt,
			Model:          o.model,
			N:              1,
			Size:           openai.CreateImageSize1024x1024,
			ResponseFormat: openai.CreateImageResponseFormatURL,
		})
		if err != nil {
			o.log.Warn("image request failed", "model", o.model, "error", err)
			return err
		}
		if len(resp.Data) == 0 || resp.Data[0].URL == "" {
			return fmt.Errorf("image response contained no url")
		}
		url = resp.Data[0].URL
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("render image: %w", err)
	}
	return url, nil
}

func (o *OpenAIIllustrator) Name() string { return "openai" }
