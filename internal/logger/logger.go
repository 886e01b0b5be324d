// Package logger contains a logger implementation.
package logger

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/gookit/color"
)

// Logger is a log handler.
type Logger struct {
	level Level

	destinations []destination
	mutex        sync.Mutex
}

// New allocates a log handler.
func New(level Level, destinations []Destination, filePath string) (*Logger, error) {
	lh := &Logger{
		level: level,
	}

	for _, destType := range destinations {
		switch destType {
		case DestinationStdout:
			lh.destinations = append(lh.destinations, newDestionationStdout())

		case DestinationFile:
			dest, err := newDestinationFile(filePath)
			if err != nil {
				lh.Close()
				return nil, err
			}
			lh.destinations = append(lh.destinations, dest)
		}
	}

	return lh, nil
}

// Close closes a log handler.
func (lh *Logger) Close() {
	for _, dest := range lh.destinations {
		dest.close()
	}
}

// SetLevel changes the minimum level of printed entries.
func (lh *Logger) SetLevel(level Level) {
	lh.mutex.Lock()
	defer lh.mutex.Unlock()
	lh.level = level
}

// Log writes a log entry.
func (lh *Logger) Log(level Level, format string, args ...interface{}) {
	lh.mutex.Lock()
	defer lh.mutex.Unlock()

	if level < lh.level {
		return
	}

	t := time.Now()
	for _, dest := range lh.destinations {
		dest.log(t, level, format, args...)
	}
}

func writeTime(buf *bytes.Buffer, t time.Time, useColor bool) {
	intbuf := t.Format("2006/01/02 15:04:05 ")
	if useColor {
		buf.WriteString(color.RenderString(color.Gray.Code(), intbuf))
	} else {
		buf.WriteString(intbuf)
	}
}

func writeLevel(buf *bytes.Buffer, level Level, useColor bool) {
	s := level.String()
	if useColor {
		switch level {
		case Debug:
			s = color.RenderString(color.Debug.Code(), s)
		case Info:
			s = color.RenderString(color.Green.Code(), s)
		case Warn:
			s = color.RenderString(color.Warn.Code(), s)
		case Error:
			s = color.RenderString(color.Red.Code(), s)
		}
	}
	buf.WriteString(s)
	buf.WriteByte(' ')
}

func writeContent(buf *bytes.Buffer, format string, args []interface{}) {
	buf.WriteString(fmt.Sprintf(format, args...))
	buf.WriteByte('\n')
}
