// Package ingest reads detector output streams (NDJSON, one detection per
// line) into per-detector result buffers.
//
// Files are independent, so loading is parallel across a fixed worker
// pool; each worker appends only to its own detector's buffer and the
// caller merges the buffers into the matrix builder afterward, at a single
// merge point. Malformed lines and lines with no resolvable identifier are
// logged and skipped, never fatal.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/matrix"
	"github.com/DailyForkCast/osint-foresight-sub007/internal/domain/model"
	"github.com/DailyForkCast/osint-foresight-sub007/pkg/logger"
	"github.com/DailyForkCast/osint-foresight-sub007/pkg/metrics"
)

// Default loader configuration constants.
const (
	defaultWorkerCount = 4
	maxLineBytes       = 1 << 20 // detector lines beyond 1 MiB are malformed
)

// Task pairs a registered detector with its compiled identifier strategy.
type Task struct {
	Detector model.Detector
	Strategy matrix.IdentifierStrategy
}

// LoadReport counts what happened to one detector's stream.
type LoadReport struct {
	Lines             int `json:"lines"`
	Parsed            int `json:"parsed"`
	MalformedLines    int `json:"malformed_lines"`
	MissingIdentifier int `json:"missing_identifier"`
}

// Result is one detector's fully loaded stream: the raw identifiers for
// the matrix and the field records for assessment.
type Result struct {
	DetectorID string
	Entities   []string
	Records    []model.Record
	Report     LoadReport
}

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithWorkerCount bounds parallel file loads.
func WithWorkerCount(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(log logger.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.logger = log
		}
	}
}

// Loader ingests detector NDJSON files.
type Loader struct {
	workers int
	logger  logger.Logger
}

// New creates a Loader with configuration options.
func New(opts ...Option) *Loader {
	l := &Loader{
		workers: defaultWorkerCount,
		logger:  logger.Get().Named("ingest"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll ingests every task's file, parallel across the worker pool.
// Detectors whose files cannot be opened are reported through the joined
// error and omitted from the results; line-level problems are skipped and
// counted, not raised. Results come back in task order.
func (l *Loader) LoadAll(ctx context.Context, tasks []Task) ([]Result, error) {
	type slot struct {
		result Result
		err    error
	}

	slots := make([]slot, len(tasks))
	taskCh := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < l.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range taskCh {
				result, err := l.loadFile(ctx, tasks[idx])
				slots[idx] = slot{result: result, err: err}
			}
		}()
	}

	for idx := range tasks {
		select {
		case <-ctx.Done():
		case taskCh <- idx:
		}
	}
	close(taskCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ingestion canceled: %w", err)
	}

	results := make([]Result, 0, len(tasks))
	var errs []error
	for i, s := range slots {
		if s.err != nil {
			errs = append(errs, fmt.Errorf("detector %s: %w", tasks[i].Detector.ID, s.err))
			continue
		}
		results = append(results, s.result)
	}
	return results, errors.Join(errs...)
}

// loadFile reads one detector's stream line by line.
func (l *Loader) loadFile(ctx context.Context, task Task) (Result, error) {
	f, err := os.Open(task.Detector.OutputFile)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrOpenDetectorFile, err)
	}
	defer f.Close()

	result := Result{DetectorID: task.Detector.ID}
	reader := bufio.NewReaderSize(f, 64*1024)

	lineNo := 0
	for {
		if ctx.Err() != nil {
			return Result{}, fmt.Errorf("ingestion canceled: %w", ctx.Err())
		}
		line, tooLong, rerr := readLine(reader)
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return Result{}, fmt.Errorf("%w: %w", ErrReadDetectorFile, rerr)
		}
		atEOF := errors.Is(rerr, io.EOF)
		if len(line) == 0 && !tooLong {
			if atEOF {
				break
			}
			lineNo++
			continue
		}
		lineNo++
		result.Report.Lines++

		if tooLong {
			result.Report.MalformedLines++
			metrics.RecordLineSkipped()
			l.logger.Warn(ctx, "skipping oversized detector line",
				logger.String("detector", task.Detector.ID),
				logger.String("file", task.Detector.OutputFile),
				logger.Int("line", lineNo),
			)
		} else {
			l.consumeLine(ctx, task, &result, lineNo, line)
		}
		if atEOF {
			break
		}
	}

	l.logger.Debug(ctx, "detector stream loaded",
		logger.String("detector", task.Detector.ID),
		logger.Int("parsed", result.Report.Parsed),
		logger.Int("malformed", result.Report.MalformedLines),
		logger.Int("missing_identifier", result.Report.MissingIdentifier),
	)
	return result, nil
}

// consumeLine parses one non-empty line into the result, counting rather
// than failing on malformed JSON and unresolvable identifiers.
func (l *Loader) consumeLine(ctx context.Context, task Task, result *Result, lineNo int, line []byte) {
	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		result.Report.MalformedLines++
		metrics.RecordLineSkipped()
		l.logger.Warn(ctx, "skipping malformed detector line",
			logger.String("detector", task.Detector.ID),
			logger.String("file", task.Detector.OutputFile),
			logger.Int("line", lineNo),
			logger.Error(err),
		)
		return
	}

	rawID, ok := task.Strategy.Resolve(obj)
	if !ok {
		result.Report.MissingIdentifier++
		metrics.RecordLineSkipped()
		l.logger.Warn(ctx, "skipping line with no resolvable entity identifier",
			logger.String("detector", task.Detector.ID),
			logger.Int("line", lineNo),
		)
		return
	}

	entityID := model.NormalizeEntityID(rawID)
	if entityID == "" {
		result.Report.MissingIdentifier++
		metrics.RecordLineSkipped()
		return
	}

	result.Report.Parsed++
	metrics.RecordLineParsed()
	result.Entities = append(result.Entities, entityID)
	result.Records = append(result.Records, model.Record{
		EntityID: entityID,
		Fields:   textFields(obj),
		Provenance: model.Provenance{
			DetectorID: task.Detector.ID,
			File:       task.Detector.OutputFile,
			Line:       lineNo,
		},
	})
}

// readLine returns the next line without its terminator. A line longer
// than maxLineBytes is fully consumed but returned empty with tooLong set,
// so one runaway line never takes down the rest of the stream. err is
// io.EOF on the final line.
func readLine(r *bufio.Reader) (line []byte, tooLong bool, err error) {
	for {
		frag, ferr := r.ReadSlice('\n')
		if !tooLong {
			line = append(line, frag...)
		}
		switch {
		case ferr == nil, errors.Is(ferr, io.EOF):
			line = bytes.TrimSuffix(line, []byte{'\n'})
			line = bytes.TrimSuffix(line, []byte{'\r'})
			if len(line) > maxLineBytes {
				tooLong = true
				line = nil
			}
			return line, tooLong, ferr
		case errors.Is(ferr, bufio.ErrBufferFull):
			if len(line) > maxLineBytes {
				tooLong = true
				line = nil
			}
		default:
			return nil, tooLong, ferr
		}
	}
}

// textFields flattens the decoded object's string values, walking nested
// objects with dotted keys so the assessor sees every text field.
func textFields(obj map[string]any) map[string]string {
	out := make(map[string]string)
	flattenInto(out, "", obj)
	return out
}

func flattenInto(out map[string]string, prefix string, obj map[string]any) {
	for key, value := range obj {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		switch v := value.(type) {
		case string:
			out[name] = v
		case map[string]any:
			flattenInto(out, name, v)
		}
	}
}
