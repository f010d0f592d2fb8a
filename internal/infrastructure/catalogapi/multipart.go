package catalogapi

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
)

type formFile struct {
	field string
	file  *catalog.Attachment
}

// encodeForm builds a multipart body. Fields are written in key order so
// bodies are reproducible.
func encodeForm(values map[string]string, files ...formFile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, values[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	for _, f := range files {
		if f.file == nil {
			continue
		}
		part, err := w.CreatePart(filePartHeader(f.field, f.file))
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.field, err)
		}
		if _, err := part.Write(f.file.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func filePartHeader(field string, file *catalog.Attachment) textproto.MIMEHeader {
	name := filepath.Base(file.Filename)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = field
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)
	return h
}
