package logger

// Writer is an object that provides a log method.
type Writer interface {
	Log(Level, string, ...interface{})
}

// Discard is a Writer that drops every entry.
var Discard Writer = discard{}

type discard struct{}

func (discard) Log(Level, string, ...interface{}) {}
