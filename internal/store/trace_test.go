package store

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/lightmixsearch/internal/color"
)

func TestTraceWriter_WriteAndRead(t *testing.T) {
	tmpDir := t.TempDir()
	runID := "trace-run"

	writer, err := NewTraceWriter(tmpDir, runID, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	entries := []TraceEntry{
		{Index: 0, Color: color.Color{R: 0}, Score: 9, BestScore: 9, Timestamp: time.Now()},
		{Index: 1, Color: color.Color{R: 128}, Score: 4, BestScore: 4, Timestamp: time.Now()},
		{Index: 2, Color: color.Color{R: 255}, Score: 6, BestScore: 4, Timestamp: time.Now()},
	}
	for _, entry := range entries {
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	tracePath := filepath.Join(tmpDir, "runs", runID, "trace.jsonl")
	if writer.Path() != tracePath {
		t.Errorf("Expected path %s, got %s", tracePath, writer.Path())
	}
	if _, err := os.Stat(tracePath); err != nil {
		t.Fatalf("Trace file not created: %v", err)
	}

	reader, err := NewTraceReader(tmpDir, runID)
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	readEntries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(readEntries) != len(entries) {
		t.Fatalf("Expected %d entries, got %d", len(entries), len(readEntries))
	}
	for i, entry := range readEntries {
		if entry.Index != entries[i].Index || entry.Color != entries[i].Color ||
			entry.Score != entries[i].Score || entry.BestScore != entries[i].BestScore {
			t.Errorf("Entry %d differs: %+v", i, entry)
		}
	}
}

func TestTraceWriter_Append(t *testing.T) {
	tmpDir := t.TempDir()
	runID := "trace-append"

	for i := 0; i < 2; i++ {
		writer, err := NewTraceWriter(tmpDir, runID, i > 0)
		if err != nil {
			t.Fatalf("Failed to create trace writer: %v", err)
		}
		if err := writer.Write(TraceEntry{Index: i, Score: float64(i), Timestamp: time.Now()}); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
		if err := writer.Close(); err != nil {
			t.Fatalf("Failed to close writer: %v", err)
		}
	}

	reader, err := NewTraceReader(tmpDir, runID)
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries after append, got %d", len(entries))
	}
}

func TestTraceWriter_Hook(t *testing.T) {
	tmpDir := t.TempDir()

	writer, err := NewTraceWriter(tmpDir, "hooked", false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	hook := writer.Hook()
	hook(0, color.Color{R: 1}, 5)
	hook(1, color.Color{R: 2}, 3)
	hook(2, color.Color{R: 3}, 7)

	if err := writer.Err(); err != nil {
		t.Fatalf("Unexpected hook error: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	reader, err := NewTraceReader(tmpDir, "hooked")
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}

	wantBest := []float64{5, 3, 3}
	if len(entries) != len(wantBest) {
		t.Fatalf("Expected %d entries, got %d", len(wantBest), len(entries))
	}
	for i, e := range entries {
		if e.BestScore != wantBest[i] {
			t.Errorf("Entry %d: expected best %f, got %f", i, wantBest[i], e.BestScore)
		}
	}
}

func TestTraceReader_NotFound(t *testing.T) {
	_, err := NewTraceReader(t.TempDir(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestTraceReader_ReadEOF(t *testing.T) {
	tmpDir := t.TempDir()
	writer, _ := NewTraceWriter(tmpDir, "empty", false)
	writer.Close()

	reader, err := NewTraceReader(tmpDir, "empty")
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Read(); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestTraceReader_CorruptedLine(t *testing.T) {
	tmpDir := t.TempDir()
	dir := RunDir(tmpDir, "bad")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "trace.jsonl"), []byte("{\"index\":0}\nnot json\n"), 0644)

	reader, err := NewTraceReader(tmpDir, "bad")
	if err != nil {
		t.Fatalf("Failed to open reader: %v", err)
	}
	defer reader.Close()

	if _, err := reader.ReadAll(); err == nil {
		t.Error("Expected error for corrupted line")
	}
}

func TestDeleteTrace(t *testing.T) {
	tmpDir := t.TempDir()
	writer, _ := NewTraceWriter(tmpDir, "del", false)
	writer.Close()

	if err := DeleteTrace(tmpDir, "del"); err != nil {
		t.Fatalf("Failed to delete trace: %v", err)
	}
	if _, err := os.Stat(writer.Path()); !os.IsNotExist(err) {
		t.Error("Trace file should be removed")
	}

	if err := DeleteTrace(tmpDir, "del"); err != nil {
		t.Errorf("Deleting a missing trace should succeed, got %v", err)
	}
}
