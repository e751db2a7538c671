package decisionlog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/apex/log"

	"marketplace-ai-service/models"
)

// Logger appends decision records to durable CSV and JSONL files. One
// instance is constructed at startup and injected into the handlers; appends
// are serialized with a mutex so concurrent requests cannot interleave rows.
// Logging is fire-and-forget: failures are logged and never fail a request.
type Logger struct {
	mu sync.Mutex

	negotiationCSV   *appendFile
	moderationCSV    *appendFile
	negotiationJSONL *os.File
	moderationJSONL  *os.File
}

type appendFile struct {
	file   *os.File
	writer *csv.Writer
}

// New opens (or creates) the log files under dir. CSV headers are written
// only when a file is empty, so restarts keep appending to the same logs.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("decisionlog: create log dir: %w", err)
	}

	l := &Logger{}
	var err error

	l.negotiationCSV, err = openCSV(
		filepath.Join(dir, "negotiation_log.csv"),
		[]string{"timestamp", "product_id", "input", "output"})
	if err != nil {
		return nil, err
	}
	l.moderationCSV, err = openCSV(
		filepath.Join(dir, "moderation_log.csv"),
		[]string{"timestamp", "message", "output"})
	if err != nil {
		l.Close()
		return nil, err
	}
	l.negotiationJSONL, err = openAppend(filepath.Join(dir, "negotiation_log.jsonl"))
	if err != nil {
		l.Close()
		return nil, err
	}
	l.moderationJSONL, err = openAppend(filepath.Join(dir, "moderation_log.jsonl"))
	if err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("decisionlog: open %q: %w", path, err)
	}
	return f, nil
}

func openCSV(path string, header []string) (*appendFile, error) {
	f, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decisionlog: stat %q: %w", path, err)
	}
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("decisionlog: write header: %w", err)
		}
		w.Flush()
	}
	return &appendFile{file: f, writer: w}, nil
}

// LogNegotiation appends one negotiation record. productID is 0 for manual
// payloads that are not in the dataset.
func (l *Logger) LogNegotiation(productID int, input models.Product, result models.PriceSuggestion) {
	ts := time.Now().Format(time.RFC3339)

	inputJSON, _ := json.Marshal(input)
	outputJSON, _ := json.Marshal(result)

	idField := ""
	if productID != 0 {
		idField = strconv.Itoa(productID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.appendCSV(l.negotiationCSV, []string{ts, idField, string(inputJSON), string(outputJSON)})
	l.appendJSONL(l.negotiationJSONL, map[string]any{
		"timestamp":  ts,
		"product_id": productID,
		"input":      input,
		"output":     result,
	})
}

// LogModeration appends one moderation record.
func (l *Logger) LogModeration(message string, result models.ModerationResult) {
	ts := time.Now().Format(time.RFC3339)

	outputJSON, _ := json.Marshal(result)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.appendCSV(l.moderationCSV, []string{ts, message, string(outputJSON)})
	l.appendJSONL(l.moderationJSONL, map[string]any{
		"timestamp": ts,
		"message":   message,
		"output":    result,
	})
}

func (l *Logger) appendCSV(af *appendFile, row []string) {
	if af == nil {
		return
	}
	if err := af.writer.Write(row); err != nil {
		log.Warnf("decision log CSV append failed: %v", err)
		return
	}
	af.writer.Flush()
	if err := af.writer.Error(); err != nil {
		log.Warnf("decision log CSV flush failed: %v", err)
	}
}

func (l *Logger) appendJSONL(f *os.File, record map[string]any) {
	if f == nil {
		return
	}
	b, err := json.Marshal(record)
	if err != nil {
		log.Warnf("decision log JSONL marshal failed: %v", err)
		return
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		log.Warnf("decision log JSONL append failed: %v", err)
	}
}

// Close flushes and closes all log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	closeFile := func(f *os.File) {
		if f == nil {
			return
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if l.negotiationCSV != nil {
		l.negotiationCSV.writer.Flush()
		closeFile(l.negotiationCSV.file)
	}
	if l.moderationCSV != nil {
		l.moderationCSV.writer.Flush()
		closeFile(l.moderationCSV.file)
	}
	closeFile(l.negotiationJSONL)
	closeFile(l.moderationJSONL)
	return firstErr
}
