package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"filtertree/internal/outline"
	"filtertree/internal/services"
)

// Stage names the input step in warnings.
const Stage = "source"

type tokenRecord struct {
	Text  *string `json:"text"`
	Level *int    `json:"level"`
}

// ReadTokensFile opens path and decodes it with ReadTokens.
func ReadTokensFile(path string) ([]outline.Record, []services.Warning, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open outline: %w", err)
	}
	defer file.Close()
	return ReadTokens(file)
}

// ReadTokens decodes the primary outline. Three shapes are accepted: a JSON
// array of {"text","level"} objects, JSON Lines of the same, or a document
// {"hierarchy": [...]} whose nested nodes are flattened in document order.
// Records missing text or level are skipped with a MalformedInput warning;
// only unreadable input is an error.
func ReadTokens(r io.Reader) ([]outline.Record, []services.Warning, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read outline: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil, nil
	}

	if trimmed[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, nil, services.Wrap(services.ErrMalformedInput, Stage, "decode outline", "invalid JSON array", err)
		}
		d := &tokenDecoder{}
		for i, msg := range raw {
			d.record(i+1, msg)
		}
		return d.records, d.warnings, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(trimmed, &doc); err == nil {
		if list, ok := doc["hierarchy"].([]any); ok {
			d := &tokenDecoder{}
			d.flatten(list, 0)
			return d.records, d.warnings, nil
		}
	}

	return readTokenLines(trimmed)
}

func readTokenLines(data []byte) ([]outline.Record, []services.Warning, error) {
	d := &tokenDecoder{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		d.record(line, text)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan outline: %w", err)
	}
	return d.records, d.warnings, nil
}

type tokenDecoder struct {
	records  []outline.Record
	warnings []services.Warning
	seq      int
}

func (d *tokenDecoder) warn(line int, message string) {
	w := services.NewWarning(services.ErrMalformedInput, Stage, message)
	w.Line = line
	d.warnings = append(d.warnings, w)
}

func (d *tokenDecoder) record(line int, msg []byte) {
	var rec tokenRecord
	if err := json.Unmarshal(msg, &rec); err != nil {
		d.warn(line, fmt.Sprintf("undecodable record: %v", err))
		return
	}
	switch {
	case rec.Text == nil:
		d.warn(line, "record is missing text")
	case rec.Level == nil:
		d.warn(line, fmt.Sprintf("record %q is missing level", *rec.Text))
	default:
		d.records = append(d.records, outline.Record{Text: *rec.Text, Level: *rec.Level, Line: line})
	}
}

// flatten emits nodes in document order. An explicit "level" wins over the
// nesting depth so the builder sees what the document claims.
func (d *tokenDecoder) flatten(nodes []any, depth int) {
	for _, node := range nodes {
		d.seq++
		switch v := node.(type) {
		case string:
			d.records = append(d.records, outline.Record{Text: v, Level: depth, Line: d.seq})
		case map[string]any:
			name, ok := firstString(v, nameKeys)
			if !ok || strings.TrimSpace(name) == "" {
				d.warn(d.seq, fmt.Sprintf("hierarchy node at depth %d has no name; subtree skipped", depth))
				continue
			}
			level := depth
			if raw, ok := v["level"].(float64); ok && raw == float64(int(raw)) {
				level = int(raw)
			}
			d.records = append(d.records, outline.Record{Text: name, Level: level, Line: d.seq})
			if children, _, ok := firstList(v, outlineChildKeys); ok {
				d.flatten(children, depth+1)
			}
		default:
			d.warn(d.seq, fmt.Sprintf("unsupported hierarchy node of type %T", node))
		}
	}
}
