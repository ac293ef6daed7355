package threats

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// maxLineSize bounds one report line; adversarial prompts plus raw outputs
// run long.
const maxLineSize = 4 * 1024 * 1024

// InputRecord is one parsed line of an attack report. A malformed line
// surfaces as a record with Error set, so callers can count or skip it
// without losing its position.
type InputRecord struct {
	Record     AttackRecord
	LineNumber int
	Error      error
}

// Reader streams attack records out of a JSONL report.
type Reader struct {
	r      io.Reader
	logger *zerolog.Logger
}

func NewReader(r io.Reader, logger *zerolog.Logger) *Reader {
	return &Reader{r: r, logger: logger}
}

// ReadAll emits one InputRecord per non-blank line until the input or the
// context ends. The channel closes when reading stops.
func (r *Reader) ReadAll(ctx context.Context) <-chan InputRecord {
	ch := make(chan InputRecord)

	go func() {
		defer close(ch)

		scanner := bufio.NewScanner(r.r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)

		lineNumber := 0
		for scanner.Scan() {
			lineNumber++
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			record := InputRecord{LineNumber: lineNumber}
			if err := json.Unmarshal([]byte(line), &record.Record); err != nil {
				record.Error = fmt.Errorf("line %d: %w", lineNumber, err)
				r.logger.Warn().Int("line", lineNumber).Err(err).Msg("skipping malformed record")
			}

			select {
			case ch <- record:
			case <-ctx.Done():
				return
			}
		}

		if err := scanner.Err(); err != nil {
			r.logger.Error().Err(err).Msg("failed reading input")
		}
	}()

	return ch
}

// ReadRecords drains the reader and returns the valid records, counting
// malformed lines instead of failing on them.
func ReadRecords(ctx context.Context, r *Reader) ([]AttackRecord, int) {
	var records []AttackRecord
	malformed := 0
	for input := range r.ReadAll(ctx) {
		if input.Error != nil {
			malformed++
			continue
		}
		records = append(records, input.Record)
	}
	return records, malformed
}
