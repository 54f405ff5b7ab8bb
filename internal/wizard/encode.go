package wizard

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"reflect"
	"strconv"
	"strings"

	"hrintake/internal/application"
)

var attachmentType = reflect.TypeOf((*application.Attachment)(nil))

// Payload is an encoded multipart submission.
type Payload struct {
	Body        []byte
	ContentType string
}

// Encode writes rec as a multipart form, one part per top-level field in
// record order. Attachments become file parts when present and empty text
// parts otherwise. Lists and objects are sent as JSON text, absent values as
// an empty string and other scalars as their plain text form.
func Encode(rec application.Record) (*Payload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	v := reflect.ValueOf(rec)
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		name := partName(sf)
		if name == "" {
			continue
		}

		field := v.Field(i)
		if field.Type() == attachmentType {
			if err := writeAttachment(w, name, field.Interface().(*application.Attachment)); err != nil {
				return nil, err
			}
			continue
		}

		text, err := partText(field)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		if err := w.WriteField(name, text); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return &Payload{Body: buf.Bytes(), ContentType: w.FormDataContentType()}, nil
}

func partName(sf reflect.StructField) string {
	if name := sf.Tag.Get("form"); name != "" {
		return name
	}
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeAttachment(w *multipart.Writer, name string, a *application.Attachment) error {
	if a == nil {
		return w.WriteField(name, "")
	}

	filename := a.Filename
	if filename == "" {
		filename = name
	}
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(name), quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(a.Data)
	return err
}

func partText(field reflect.Value) (string, error) {
	if m, ok := field.Interface().(encoding.TextMarshaler); ok {
		text, err := m.MarshalText()
		return string(text), err
	}

	switch field.Kind() {
	case reflect.String:
		return field.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(field.Bool()), nil
	case reflect.Int, reflect.Int64:
		return strconv.FormatInt(field.Int(), 10), nil
	case reflect.Slice, reflect.Map, reflect.Pointer:
		if field.IsNil() {
			return "", nil
		}
	}

	raw, err := json.Marshal(field.Interface())
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
