package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tbourn/go-qa-backend/internal/domain"
)

// OpenAIConfig configures the chat-completions adapter.
type OpenAIConfig struct {
	APIKey       string
	Model        string
	BaseURL      string // optional; empty uses the public endpoint
	SystemPrompt string
	MaxTokens    int
	Timeout      time.Duration // bounds a whole call or stream
	MaxHistory   int           // transcript messages kept, newest last; 0 keeps all
}

// OpenAI answers questions with an OpenAI-compatible chat-completions API.
type OpenAI struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAI returns an adapter for cfg.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &OpenAI{client: openai.NewClientWithConfig(oc), cfg: cfg}
}

// Answer implements Provider.
func (p *OpenAI) Answer(ctx context.Context, question string, transcript []domain.Turn) (string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, p.request(question, transcript, false))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream implements Provider. The returned stream owns the call's timeout.
func (p *OpenAI) Stream(ctx context.Context, question string, transcript []domain.Turn) (Stream, error) {
	ctx, cancel := p.withTimeout(ctx)
	s, err := p.client.CreateChatCompletionStream(ctx, p.request(question, transcript, true))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &openAIStream{stream: s, cancel: cancel}, nil
}

func (p *OpenAI) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, p.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (p *OpenAI) request(question string, transcript []domain.Turn, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:     p.cfg.Model,
		Messages:  p.messages(question, transcript),
		MaxTokens: p.cfg.MaxTokens,
		Stream:    stream,
	}
}

// messages builds system prompt, truncated transcript, then the question.
func (p *OpenAI) messages(question string, transcript []domain.Turn) []openai.ChatCompletionMessage {
	if n := p.cfg.MaxHistory; n > 0 && len(transcript) > n {
		transcript = transcript[len(transcript)-n:]
	}
	msgs := make([]openai.ChatCompletionMessage, 0, len(transcript)+2)
	if p.cfg.SystemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: p.cfg.SystemPrompt})
	}
	for _, t := range transcript {
		role := openai.ChatMessageRoleUser
		if t.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: question})
}

type openAIStream struct {
	stream *openai.ChatCompletionStream
	cancel context.CancelFunc
	seen   bool // any content delta received
}

// Recv yields content deltas. A stream that ends without any content fails
// like an empty blocking completion.
func (s *openAIStream) Recv() (Chunk, error) {
	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			if !s.seen {
				return Chunk{}, fmt.Errorf("%w: empty completion", ErrUnavailable)
			}
			return Chunk{}, io.EOF
		}
		if err != nil {
			return Chunk{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		s.seen = true
		return Chunk{Type: ChunkContent, Text: resp.Choices[0].Delta.Content}, nil
	}
}

func (s *openAIStream) Close() error {
	s.stream.Close()
	s.cancel()
	return nil
}
