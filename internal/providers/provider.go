package providers

import (
	"context"
	"fmt"
)

// Request carries the resolved secret per call; clients are built once per
// provider kind, not per credential.
type Request struct {
	Secret          string
	Instruction     string
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
}

type Response struct {
	Text string
}

type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// UpstreamError surfaces a provider failure verbatim: the HTTP status the
// provider returned (0 when the call never completed) and its body or a
// short diagnostic.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream error: %s", e.Body)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}
