package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestProgressBarUpdate(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, ProgressBarOptions{Total: 4, Width: 8, NoColor: true})

	bar.Update(2, "shapes: written")
	out := buf.String()
	if !strings.Contains(out, "[████░░░░]  50% (2/4) shapes: written") {
		t.Errorf("unexpected render: %q", out)
	}

	bar.Update(10, "")
	if !strings.Contains(buf.String(), "100% (4/4)") {
		t.Errorf("expected progress to clamp at total: %q", buf.String())
	}
}

func TestProgressBarFinish(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, ProgressBarOptions{Total: 2, NoColor: true})
	bar.Finish("2 packages")

	if !strings.HasSuffix(buf.String(), "✓ 2 packages\n") {
		t.Errorf("expected success line, got %q", buf.String())
	}
}

func TestProgressBarZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, ProgressBarOptions{NoColor: true})
	bar.Update(1, "x")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestProgressBarConcurrent(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, ProgressBarOptions{Total: 50, NoColor: true})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			bar.Update(n, "")
		}(i)
	}
	wg.Wait()
	bar.Finish("")

	if !strings.Contains(buf.String(), "100%") {
		t.Error("expected final render at 100%")
	}
}
