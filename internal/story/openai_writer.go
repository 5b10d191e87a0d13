package story

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dgallion1/kidsbook/internal/generate"
)

// ChatClient is the part of the OpenAI client the writer needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIWriter writes books with a chat completion model. Titles the model
// leaves empty come from the template tables, as do image prompts.
type OpenAIWriter struct {
	client ChatClient
	model  string
	tmpl   *Templates
	retry  generate.Policy
	log    *slog.Logger
	now    func() time.Time
}

func NewOpenAIWriter(client ChatClient, model string, log *slog.Logger) *OpenAIWriter {
	return &OpenAIWriter{
		client: client,
		model:  cmp.Or(model, openai.GPT4oMini),
		tmpl:   DefaultTemplates(),
		retry:  generate.DefaultPolicy(),
		log:    log,
		now:    time.Now,
	}
}

const systemPrompt = `You write gentle, age-appropriate children's stories.
Respond with a JSON object of the form {"chapters":[{"title":"...","content":"..."}]}.
Each chapter is one or two short paragraphs. Never include scary, violent or inappropriate content.`

type modelChapters struct {
	Chapters []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"chapters"`
}

func (w *OpenAIWriter) Write(ctx context.Context, req Request) (*Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	total := ChapterCount(req.Length)

	var parsed modelChapters
	err := w.retry.Do(ctx, func(ctx context.Context) error {
		resp, err := w.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: w.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt(req, total)},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			w.log.Warn("story completion failed", "model", w.model, "error", err)
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("story completion returned no choices")
		}
		parsed = modelChapters{}
		return json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed)
	})
	if err != nil {
		return nil, fmt.Errorf("generate story: %w", err)
	}
	if len(parsed.Chapters) != total {
		return nil, fmt.Errorf("generate story: expected %d chapters, model returned %d", total, len(parsed.Chapters))
	}

	chapters := make([]Chapter, total)
	for i, mc := range parsed.Chapters {
		n := i + 1
		content := strings.TrimSpace(mc.Content)
		if content == "" {
			return nil, fmt.Errorf("generate story: chapter %d is empty", n)
		}
		title := strings.TrimSpace(mc.Title)
		if title == "" {
			title = w.tmpl.ChapterTitle(n, req.StoryPrompt)
		} else if !strings.HasPrefix(title, "Chapter ") {
			title = fmt.Sprintf("Chapter %d: %s", n, title)
		}
		chapters[i] = Chapter{
			ID:          fmt.Sprintf("chapter-%d", n),
			Title:       title,
			Content:     content,
			ImagePrompt: w.tmpl.ImagePrompt(title, content, req.ArtStyle),
		}
	}

	w.log.Info("story generated", "model", w.model, "chapters", total)
	return &Book{
		Title:    req.Title,
		Chapters: chapters,
		Metadata: Metadata{
			Age:           req.Age,
			Length:        total,
			ArtStyle:      req.ArtStyle,
			CharacterName: req.CharacterName,
			Source:        "openai",
			GeneratedAt:   w.now().UTC(),
		},
	}, nil
}

func userPrompt(req Request, chapters int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", req.Title)
	fmt.Fprintf(&sb, "Story idea: %s\n", req.StoryPrompt)
	fmt.Fprintf(&sb, "Reader age: %s\n", req.Age)
	if req.CharacterName != "" {
		fmt.Fprintf(&sb, "Main character: %s\n", req.CharacterName)
	}
	fmt.Fprintf(&sb, "Write exactly %d chapters.", chapters)
	return sb.String()
}
