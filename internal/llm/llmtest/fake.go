// Package llmtest provides a scripted llms.Model for tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

var ErrNoResponse = errors.New("llmtest: no scripted response left")

// Response is one scripted model reply. Chunks are streamed in order; if Err
// is set it is returned after the chunks, simulating a mid-stream failure.
type Response struct {
	Chunks         []string
	StopReason     string
	GenerationInfo map[string]any
	Err            error
}

// Call records what the model was asked.
type Call struct {
	Messages []llms.MessageContent
	Options  llms.CallOptions
}

type Model struct {
	mu        sync.Mutex
	responses []Response
	calls     []Call
}

func New(responses ...Response) *Model {
	return &Model{responses: responses}
}

// Text is a single-chunk response.
func Text(s string) Response {
	return Response{Chunks: []string{s}}
}

func (m *Model) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *Model) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}

	m.mu.Lock()
	m.calls = append(m.calls, Call{Messages: messages, Options: opts})
	if len(m.responses) == 0 {
		m.mu.Unlock()
		return nil, ErrNoResponse
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	m.mu.Unlock()

	for _, chunk := range resp.Chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if opts.StreamingFunc != nil {
			if err := opts.StreamingFunc(ctx, []byte(chunk)); err != nil {
				return nil, err
			}
		}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content:        strings.Join(resp.Chunks, ""),
			StopReason:     resp.StopReason,
			GenerationInfo: resp.GenerationInfo,
		}},
	}, nil
}

func (m *Model) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}
