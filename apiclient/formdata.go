package apiclient

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// FormData is a multipart form held in memory so it can be re-encoded for a
// retry. Parts are written in insertion order.
type FormData struct {
	parts []formPart
}

type formPart struct {
	name        string
	value       string
	filename    string
	contentType string
	content     []byte
	file        bool
}

func NewFormData() *FormData {
	return &FormData{}
}

func (f *FormData) AddField(name, value string) *FormData {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

// AddFile adds a file part. An empty contentType means application/octet-stream.
func (f *FormData) AddFile(field, filename, contentType string, content []byte) *FormData {
	f.parts = append(f.parts, formPart{
		name:        field,
		filename:    filename,
		contentType: contentType,
		content:     append([]byte(nil), content...),
		file:        true,
	})
	return f
}

func (f *FormData) Len() int {
	return len(f.parts)
}

// encode writes a new body with a new boundary and returns the matching
// Content-Type value.
func (f *FormData) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, p := range f.parts {
		if !p.file {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", fmt.Errorf("apiclient: write form field %q: %w", p.name, err)
			}
			continue
		}
		contentType := p.contentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(p.name), escapeQuotes(p.filename)))
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("apiclient: create form file %q: %w", p.name, err)
		}
		if _, err := part.Write(p.content); err != nil {
			return nil, "", fmt.Errorf("apiclient: write form file %q: %w", p.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("apiclient: close form: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
