package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file is empty.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Level is a coarse severity guessed from a log line.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// Entry is one parsed line of the acpanel log.
type Entry struct {
	Time    time.Time // zero when the line has no log prefix
	Level   Level
	Message string
}

// stdPrefix is the timestamp written by the standard logger with
// log.LstdFlags.
const stdPrefix = "2006/01/02 15:04:05"

// Parse splits a standard logger line into its timestamp and message and
// guesses a level from the message.
func Parse(line string) Entry {
	e := Entry{Message: line}
	if len(line) > len(stdPrefix) {
		if ts, err := time.ParseInLocation(stdPrefix, line[:len(stdPrefix)], time.Local); err == nil {
			e.Time = ts
			e.Message = strings.TrimSpace(line[len(stdPrefix):])
		}
	}
	e.Level = classify(e.Message)
	return e
}

// ParseAll parses lines in order.
func ParseAll(lines []string) []Entry {
	out := make([]Entry, len(lines))
	for i, line := range lines {
		out[i] = Parse(line)
	}
	return out
}

func classify(msg string) Level {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "error"), strings.Contains(lower, "failed"), strings.Contains(lower, "panic"):
		return LevelError
	case strings.Contains(lower, "warn"), strings.Contains(lower, "reconnect"), strings.Contains(lower, "retry"):
		return LevelWarn
	default:
		return LevelInfo
	}
}
