// Package descriptorpack loads additional analyzer drivers described by
// YAML documents rather than Go code: "run `tool --json`, map native
// severity via a table" is common enough across linters that most of it is
// pure configuration. Each document is validated against a JSON Schema
// before it is trusted to construct a driver.
package descriptorpack

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/reviewforge/reviewforge/internal/analyzer"
	"github.com/reviewforge/reviewforge/internal/issue"
)

// schemaJSON is the JSON Schema every descriptor document must satisfy.
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "extensions", "binary", "results_path", "fields"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "extensions": {"type": "array", "items": {"type": "string"}, "minItems": 1},
    "binary": {"type": "string", "minLength": 1},
    "args": {"type": "array", "items": {"type": "string"}},
    "results_path": {"type": "string"},
    "non_zero_exit_ok": {"type": "boolean"},
    "fields": {
      "type": "object",
      "required": ["file", "line", "severity", "message", "rule"],
      "properties": {
        "file":     {"type": "string"},
        "line":     {"type": "string"},
        "column":   {"type": "string"},
        "severity": {"type": "string"},
        "message":  {"type": "string"},
        "rule":     {"type": "string"}
      }
    },
    "severity_map": {
      "type": "object",
      "additionalProperties": {"type": "string", "enum": ["critical", "high", "medium", "low"]}
    },
    "default_category": {"type": "string", "enum": ["security", "performance", "quality"]}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

// Schema returns the JSON Schema every descriptor document must satisfy, for
// tooling that wants to publish or validate against it directly.
func Schema() []byte {
	return []byte(schemaJSON)
}

// Document is the parsed, validated shape of one YAML descriptor.
type Document struct {
	Name            string            `yaml:"name"`
	Extensions      []string          `yaml:"extensions"`
	Binary          string            `yaml:"binary"`
	Args            []string          `yaml:"args"`
	ResultsPath     string            `yaml:"results_path"`
	NonZeroExitOK   bool              `yaml:"non_zero_exit_ok"`
	Fields          FieldPaths        `yaml:"fields"`
	SeverityMap     map[string]string `yaml:"severity_map"`
	DefaultCategory string            `yaml:"default_category"`
}

// FieldPaths names the dot-path within one result object for each normalized field.
type FieldPaths struct {
	File     string `yaml:"file"`
	Line     string `yaml:"line"`
	Column   string `yaml:"column"`
	Severity string `yaml:"severity"`
	Message  string `yaml:"message"`
	Rule     string `yaml:"rule"`
}

// Parse validates raw YAML bytes against the schema and decodes it into a
// Document.
func Parse(raw []byte) (Document, error) {
	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return Document{}, fmt.Errorf("descriptorpack: invalid yaml: %w", err)
	}

	asJSON, err := json.Marshal(convertMapKeys(generic))
	if err != nil {
		return Document{}, fmt.Errorf("descriptorpack: re-encode yaml as json: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(asJSON))
	if err != nil {
		return Document{}, fmt.Errorf("descriptorpack: schema validation error: %w", err)
	}

	if !result.Valid() {
		return Document{}, fmt.Errorf("descriptorpack: document invalid: %v", result.Errors())
	}

	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("descriptorpack: decode document: %w", err)
	}

	return doc, nil
}

// convertMapKeys recursively converts map[string]interface{} produced by
// yaml.v3 (which already uses string keys, unlike yaml.v2) into a form
// safe for json.Marshal, descending into slices as needed.
func convertMapKeys(in interface{}) interface{} {
	switch v := in.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = convertMapKeys(val)
		}

		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = convertMapKeys(val)
		}

		return out
	default:
		return in
	}
}

// Driver runs a descriptor-pack-defined analyzer: a subprocess invocation
// whose JSON output is walked by dot-path to extract normalized fields.
type Driver struct {
	Doc Document

	Timeout time.Duration
	Grace   time.Duration
}

// NewDriver constructs a Driver from a parsed Document.
func NewDriver(doc Document) *Driver {
	return &Driver{Doc: doc}
}

// Descriptor returns the static metadata for this driver.
func (d *Driver) Descriptor() analyzer.Descriptor {
	cat := issue.Category(d.Doc.DefaultCategory)
	if !cat.Valid() {
		cat = issue.CategoryQuality
	}

	return analyzer.Descriptor{
		Name:          d.Doc.Name,
		Accept:        analyzer.ExtensionAccept(d.Doc.Extensions...),
		Categories:    issue.Categories(),
		MapSeverity:   d.mapSeverity,
		MapCategory:   func(string) issue.Category { return cat },
		NonZeroExitOK: d.Doc.NonZeroExitOK,
	}
}

func (d *Driver) mapSeverity(native string) issue.Severity {
	if mapped, ok := d.Doc.SeverityMap[native]; ok {
		sev := issue.Severity(mapped)
		if sev.Valid() {
			return sev
		}
	}

	return issue.SeverityMedium
}

// Analyze invokes Doc.Binary with Doc.Args followed by batch, then walks
// the JSON response at Doc.ResultsPath to build issues.
func (d *Driver) Analyze(ctx context.Context, batch []string, projectRoot string) ([]issue.Issue, []analyzer.Warning) {
	args := append(append([]string{}, d.Doc.Args...), batch...)

	stdout, code, err := analyzer.RunSubprocess(ctx, projectRoot, d.Doc.Binary, args, d.Timeout, d.Grace)
	if err != nil {
		return nil, []analyzer.Warning{{Analyzer: d.Doc.Name, Message: fmt.Sprintf("%s: %v", d.Doc.Binary, err)}}
	}

	if code != 0 && !d.Doc.NonZeroExitOK {
		return nil, []analyzer.Warning{{Analyzer: d.Doc.Name, Message: fmt.Sprintf("%s exited %d", d.Doc.Binary, code)}}
	}

	return d.parse(stdout, projectRoot)
}

func (d *Driver) parse(stdout []byte, projectRoot string) ([]issue.Issue, []analyzer.Warning) {
	var doc interface{}
	if err := json.Unmarshal(stdout, &doc); err != nil {
		return nil, []analyzer.Warning{{Analyzer: d.Doc.Name, Message: fmt.Sprintf("unparseable output: %v", err)}}
	}

	results, ok := walk(doc, d.Doc.ResultsPath).([]interface{})
	if !ok {
		return nil, []analyzer.Warning{{Analyzer: d.Doc.Name, Message: "results_path did not resolve to an array"}}
	}

	cat := d.Descriptor().MapCategory("")

	var issues []issue.Issue

	for _, r := range results {
		issues = append(issues, issue.Issue{
			File:     analyzer.RelativizePath(projectRoot, asString(walk(r, d.Doc.Fields.File))),
			Line:     asInt(walk(r, d.Doc.Fields.Line), 1),
			Column:   asInt(walk(r, d.Doc.Fields.Column), 0),
			Severity: d.mapSeverity(asString(walk(r, d.Doc.Fields.Severity))),
			Category: cat,
			Rule:     asString(walk(r, d.Doc.Fields.Rule)),
			Message:  asString(walk(r, d.Doc.Fields.Message)),
			Analyzer: d.Doc.Name,
		})
	}

	return issues, nil
}

// walk resolves a dot-path ("a.b.c") against decoded JSON (maps/slices).
// An empty path returns v unchanged.
func walk(v interface{}, path string) interface{} {
	if path == "" {
		return v
	}

	cur := v

	start := 0

	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '.' {
			key := path[start:i]
			start = i + 1

			m, ok := cur.(map[string]interface{})
			if !ok {
				return nil
			}

			cur = m[key]
		}
	}

	return cur
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func asInt(v interface{}, fallback int) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return fallback
		}

		return n
	default:
		return fallback
	}
}
