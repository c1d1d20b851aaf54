package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerRendersAndStops(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), "Rendering print file")
	s.w = &out
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Update("Uploading")
	s.Stop()
	s.Stop()

	if !strings.Contains(out.String(), "Rendering print file") {
		t.Errorf("output = %q", out.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not report cancellation")
	}
}

func TestSpinnerParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, "Generating mockups")
	s.w = &syncBuffer{}
	s.Start()
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked after cancellation")
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after parent cancel")
	}
}
