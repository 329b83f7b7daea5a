package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func Test_ReindexHandler_Success(t *testing.T) {
	h := &ReindexHandler{
		DoReindex: func(ctx context.Context) (ReindexResult, error) {
			return ReindexResult{Modules: 42, TotalSize: 1024 * 1024, Roots: 3, Elapsed: 1500 * time.Millisecond}, nil
		},
		Logger: discardLogger(),
	}

	result, _, err := h.Handle(context.Background(), nil, ReindexArgs{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(t, result)
	if result.IsError {
		t.Fatalf("expected success, got %s", text)
	}
	want := "Reindex complete: 42 modules (1.0 MB) across 3 roots in 1.5s"
	if text != want {
		t.Errorf("got %q, want %q", text, want)
	}
}

func Test_ReindexHandler_Error(t *testing.T) {
	h := &ReindexHandler{
		DoReindex: func(ctx context.Context) (ReindexResult, error) {
			return ReindexResult{}, errors.New("disk on fire")
		},
		Logger: discardLogger(),
	}

	result, _, _ := h.Handle(context.Background(), nil, ReindexArgs{})
	if !result.IsError || !strings.Contains(resultText(t, result), "disk on fire") {
		t.Errorf("expected error result, got %+v", result)
	}
}
