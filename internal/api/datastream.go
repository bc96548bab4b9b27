package api

import (
	"encoding/json"
	"net/http"

	"github.com/RichardoC/parentpal/internal/llm"
	"github.com/gin-gonic/gin"
)

// Part type codes of the AI SDK data stream protocol understood by the chat UI.
const (
	partText       = '0'
	partError      = '3'
	partFinishStep = 'e'
	partFinish     = 'd'
	partStartStep  = 'f'
)

const dataStreamHeader = "X-Vercel-AI-Data-Stream"

// dataStream writes one "<code>:<json>\n" line per part and flushes it
// immediately so the browser renders tokens as they arrive.
type dataStream struct {
	w gin.ResponseWriter
}

func newDataStream(c *gin.Context) *dataStream {
	h := c.Writer.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set(dataStreamHeader, "v1")
	c.Status(http.StatusOK)
	return &dataStream{w: c.Writer}
}

type finishPart struct {
	FinishReason string    `json:"finishReason"`
	Usage        llm.Usage `json:"usage"`
	IsContinued  *bool     `json:"isContinued,omitempty"`
}

func (s *dataStream) part(code byte, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	line := make([]byte, 0, len(payload)+3)
	line = append(line, code, ':')
	line = append(line, payload...)
	line = append(line, '\n')
	if _, err := s.w.Write(line); err != nil {
		return err
	}
	s.w.Flush()
	return nil
}

func (s *dataStream) StartStep(messageID string) error {
	return s.part(partStartStep, map[string]string{"messageId": messageID})
}

func (s *dataStream) Text(delta string) error {
	return s.part(partText, delta)
}

func (s *dataStream) FinishStep(reason string, usage llm.Usage) error {
	continued := false
	return s.part(partFinishStep, finishPart{FinishReason: reason, Usage: usage, IsContinued: &continued})
}

func (s *dataStream) Finish(reason string, usage llm.Usage) error {
	return s.part(partFinish, finishPart{FinishReason: reason, Usage: usage})
}

func (s *dataStream) Error(msg string) error {
	return s.part(partError, msg)
}
