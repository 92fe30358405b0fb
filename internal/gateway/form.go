package gateway

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
)

// Form accumulates fields and file attachments for the multipart endpoints
// (companies, contracts, invoices). Updates through those endpoints tunnel
// through POST with a "_method=PUT" override field, which the gateway adds.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	key   string
	value string
}

type formFile struct {
	key      string
	filename string
	content  io.Reader
}

func NewForm() *Form {
	return &Form{}
}

// Set appends a text field. Empty values are skipped, matching the platform
// API's treatment of absent optional fields.
func (f *Form) Set(key, value string) *Form {
	if value == "" {
		return f
	}
	f.fields = append(f.fields, formField{key: key, value: value})
	return f
}

// SetInt appends a numeric field; zero is treated as absent.
func (f *Form) SetInt(key string, value int) *Form {
	if value == 0 {
		return f
	}
	return f.Set(key, strconv.Itoa(value))
}

// AddFile attaches one file part.
func (f *Form) AddFile(key, filename string, content io.Reader) *Form {
	f.files = append(f.files, formFile{key: key, filename: filename, content: content})
	return f
}

// HasField reports whether the key was already set.
func (f *Form) HasField(key string) bool {
	for _, fld := range f.fields {
		if fld.key == key {
			return true
		}
	}
	return false
}

// imageExtensions accepted for uploaded logos and attachments.
var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// ValidateImageName rejects file names outside the accepted image formats.
func ValidateImageName(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !imageExtensions[ext] {
		return fmt.Errorf("only PNG, JPG, and JPEG files are allowed, got %q", filename)
	}
	return nil
}

// Encode renders the multipart body and returns it with its content type.
func (f *Form) Encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, fld := range f.fields {
		if err := w.WriteField(fld.key, fld.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", fld.key, err)
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.key, file.filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", file.key, err)
		}
		if _, err := io.Copy(part, file.content); err != nil {
			return nil, "", fmt.Errorf("copy file %s: %w", file.key, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
