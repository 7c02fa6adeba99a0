package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Warning records a per-record problem that was recovered locally.
type Warning struct {
	Kind    error  `json:"-"`
	Stage   string `json:"stage"`
	Line    int    `json:"line,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// NewWarning constructs a warning for the given stage.
func NewWarning(kind error, stage, message string) Warning {
	return Warning{Kind: kind, Stage: stage, Message: strings.TrimSpace(message)}
}

// KindName returns the marker text, e.g. "malformed input".
func (w Warning) KindName() string {
	if w.Kind == nil {
		return "warning"
	}
	return w.Kind.Error()
}

func (w Warning) String() string {
	var b strings.Builder
	b.WriteString(w.Stage)
	b.WriteString(": ")
	b.WriteString(w.KindName())
	if w.Line > 0 {
		fmt.Fprintf(&b, " (record %d)", w.Line)
	}
	if w.Path != "" {
		b.WriteString(" at ")
		b.WriteString(w.Path)
	}
	if w.Message != "" {
		b.WriteString(": ")
		b.WriteString(w.Message)
	}
	return b.String()
}

// MarshalJSON includes the kind's text, which the Kind error cannot carry.
func (w Warning) MarshalJSON() ([]byte, error) {
	type plain Warning
	return json.Marshal(struct {
		Kind string `json:"kind"`
		plain
	}{Kind: w.KindName(), plain: plain(w)})
}
