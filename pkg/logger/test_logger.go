package logger

import "sync"

// TestLogEntry is a single captured log call.
type TestLogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// TestLogger implements Logger and records every entry for assertions in
// tests. Derived loggers (WithField and friends) share the same entry list.
type TestLogger struct {
	mu      *sync.Mutex
	entries *[]TestLogEntry
	fields  map[string]interface{}
}

// NewTestLogger creates an empty capturing logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{
		mu:      &sync.Mutex{},
		entries: &[]TestLogEntry{},
		fields:  make(map[string]interface{}),
	}
}

// Entries returns a copy of everything logged so far.
func (t *TestLogger) Entries() []TestLogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TestLogEntry, len(*t.entries))
	copy(out, *t.entries)
	return out
}

// HasEntry reports whether a message was logged at the given level.
func (t *TestLogger) HasEntry(level, message string) bool {
	for _, e := range t.Entries() {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

func (t *TestLogger) record(level, msg string, extra map[string]interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fields := make(map[string]interface{}, len(t.fields)+len(extra))
	for k, v := range t.fields {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}
	*t.entries = append(*t.entries, TestLogEntry{Level: level, Message: msg, Fields: fields})
}

func (t *TestLogger) child(key string, value interface{}) *TestLogger {
	fields := make(map[string]interface{}, len(t.fields)+1)
	for k, v := range t.fields {
		fields[k] = v
	}
	fields[key] = value
	return &TestLogger{mu: t.mu, entries: t.entries, fields: fields}
}

func (t *TestLogger) Debug(msg string) { t.record("debug", msg, nil) }
func (t *TestLogger) Info(msg string)  { t.record("info", msg, nil) }
func (t *TestLogger) Warn(msg string)  { t.record("warn", msg, nil) }
func (t *TestLogger) Error(msg string) { t.record("error", msg, nil) }
func (t *TestLogger) Fatal(msg string) { t.record("fatal", msg, nil) }

func (t *TestLogger) WithField(key string, value interface{}) Logger {
	return t.child(key, value)
}

func (t *TestLogger) WithFields(fields map[string]interface{}) Logger {
	out := t
	for k, v := range fields {
		out = out.child(k, v)
	}
	return out
}

func (t *TestLogger) WithError(err error) Logger {
	return t.child("error", err)
}

func (t *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	t.record("debug", msg, fields)
}

func (t *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	t.record("info", msg, fields)
}

func (t *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	t.record("warn", msg, fields)
}

func (t *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	t.record("error", msg, fields)
}
