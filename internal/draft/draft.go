// Package draft turns applicant draft files into wizard actions.
package draft

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"hrintake/internal/application"
	"hrintake/internal/errors"
	"hrintake/internal/utils"
	"hrintake/internal/wizard"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// Draft is a decoded applicant draft
type Draft struct {
	Path    string
	Actions []wizard.Action
	// Photo and Resume are attachment paths, resolved against the draft's directory
	Photo  string
	Resume string
}

// Load reads, validates and converts the draft at path against base
func Load(path string, base application.Record) (*Draft, error) {
	if !utils.IsDraftFile(path) {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported draft file %s, expected .json, .yaml or .yml", filepath.Base(path)), nil)
	}
	if err := utils.ValidateInputFile(path); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "cannot open draft", err).
			WithContext("path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot read draft", err).
			WithContext("path", path)
	}

	doc, err := Decode(data, utils.GetFileExtension(path))
	if err != nil {
		return nil, err
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}

	actions, err := Actions(doc, base)
	if err != nil {
		return nil, err
	}

	d := &Draft{Path: path, Actions: actions}
	dir := filepath.Dir(path)
	d.Photo = attachmentPath(dir, doc["photo"])
	d.Resume = attachmentPath(dir, doc["resume"])
	return d, nil
}

func attachmentPath(dir string, v any) string {
	s, _ := v.(string)
	if s = strings.TrimSpace(s); s == "" || filepath.IsAbs(s) {
		return s
	}
	return filepath.Join(dir, s)
}

// Decode parses a JSON or YAML document into a map. ext selects the syntax.
func Decode(data []byte, ext string) (map[string]any, error) {
	var doc map[string]any
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "draft is not valid JSON", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat, "draft is not valid YAML", err)
		}
	default:
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("unsupported draft format %q", ext), nil)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	normalized, _ := normalize(doc).(map[string]any)
	return normalized, nil
}

// normalize rewrites decoder-specific values into plain JSON-like ones
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case time.Time:
		if t.Equal(t.Truncate(24 * time.Hour)) {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339)
	default:
		return v
	}
}

// Validate checks the document shape. Business rules are left to the wizard.
func Validate(doc map[string]any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeSchemaViolation, "draft schema validation failed", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		msgs[i] = desc.String()
	}
	appErr := errors.NewValidationError(errors.ErrCodeSchemaViolation,
		fmt.Sprintf("draft does not match schema: %s", strings.Join(msgs, "; ")), nil)
	if first := result.Errors()[0]; first.Field() != "(root)" {
		appErr.WithContext(errors.ContextField, first.Field())
	}
	return appErr
}

var (
	recordType  = reflect.TypeOf(application.Record{})
	arrayFields = map[string]bool{"educationQualifications": true, "workExperience": true, "references": true}
	skipped     = map[string]bool{"workExperience.serialNo": true}
)

// Actions converts doc into wizard actions in record field order. List entries
// overwrite the items base already has, then append; surplus base items are
// removed from the end.
func Actions(doc map[string]any, base application.Record) ([]wizard.Action, error) {
	var actions []wizard.Action
	baseValue := reflect.ValueOf(base)

	for i, key := range jsonFields(recordType) {
		value, ok := doc[key]
		if key == "" || !ok {
			continue
		}
		field := recordType.Field(i)

		switch {
		case key == "languagesKnown":
			if text, isText := value.(string); isText {
				actions = append(actions, wizard.SetLanguages(text))
			} else {
				actions = append(actions, wizard.Set(key, value))
			}

		case arrayFields[key]:
			entries, isList := value.([]any)
			if !isList {
				return nil, shapeError(key, "a list")
			}
			have := baseValue.Field(i).Len()
			listActions, err := listActions(key, field.Type.Elem(), entries, have)
			if err != nil {
				return nil, err
			}
			actions = append(actions, listActions...)

		case field.Type.Kind() == reflect.Struct && field.Type.Name() != "Number":
			obj, isObj := value.(map[string]any)
			if !isObj {
				return nil, shapeError(key, "an object")
			}
			actions = append(actions, nestedActions(key, field.Type, obj)...)

		default:
			actions = append(actions, wizard.Set(key, value))
		}
	}
	return actions, nil
}

func listActions(key string, itemType reflect.Type, entries []any, have int) ([]wizard.Action, error) {
	var actions []wizard.Action
	for idx, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, shapeError(fmt.Sprintf("%s[%d]", key, idx), "an object")
		}
		if idx >= have {
			actions = append(actions, wizard.AddItem(key, nil))
		}
		actions = append(actions, nestedActions(fmt.Sprintf("%s[%d]", key, idx), itemType, obj)...)
	}
	for idx := have - 1; idx >= len(entries) && idx > 0; idx-- {
		actions = append(actions, wizard.RemoveItem(key, idx))
	}
	return actions, nil
}

func nestedActions(prefix string, t reflect.Type, obj map[string]any) []wizard.Action {
	listKey, _, _ := strings.Cut(prefix, "[")
	var actions []wizard.Action
	for _, sub := range jsonFields(t) {
		value, ok := obj[sub]
		if sub == "" || !ok || skipped[listKey+"."+sub] {
			continue
		}
		actions = append(actions, wizard.Set(prefix+"."+sub, value))
	}
	return actions
}

// jsonFields lists the json names of t's fields by index; untagged or
// excluded fields yield "".
func jsonFields(t reflect.Type) []string {
	names := make([]string, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "-" {
			names[i] = name
		}
	}
	return names
}

func shapeError(path, want string) error {
	return errors.NewValidationError(errors.ErrCodeSchemaViolation,
		fmt.Sprintf("%s must be %s", path, want), nil).
		WithContext(errors.ContextField, path)
}
