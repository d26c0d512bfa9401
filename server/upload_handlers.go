package server

import (
	"io"
	"net/http"

	"github.com/google/uuid"
)

const maxUploadMemory = 10 << 20

type UploadedFile struct {
	Field       string `json:"field"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type UploadResult struct {
	ID     string            `json:"id"`
	Fields map[string]string `json:"fields"`
	Files  []UploadedFile    `json:"files"`
}

// UploadHandler accepts multipart/form-data and echoes what it received
func (s *Server) UploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeDetail(w, http.StatusBadRequest, "Multipart form parse error - "+err.Error(), "parse_error")
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		result := UploadResult{
			ID:     uuid.New().String(),
			Fields: make(map[string]string),
			Files:  make([]UploadedFile, 0),
		}
		for name, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				result.Fields[name] = values[0]
			}
		}
		for field, headers := range r.MultipartForm.File {
			for _, fh := range headers {
				f, err := fh.Open()
				if err != nil {
					writeDetail(w, http.StatusBadRequest, "Unreadable file part.", "parse_error")
					return
				}
				size, err := io.Copy(io.Discard, f)
				_ = f.Close()
				if err != nil {
					writeDetail(w, http.StatusBadRequest, "Unreadable file part.", "parse_error")
					return
				}
				result.Files = append(result.Files, UploadedFile{
					Field:       field,
					Filename:    fh.Filename,
					ContentType: fh.Header.Get("Content-Type"),
					Size:        size,
				})
			}
		}

		s.stats.uploads.Add(1)
		writeJSON(w, http.StatusCreated, result)
	}
}
