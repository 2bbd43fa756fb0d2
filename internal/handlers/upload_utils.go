package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// multipartMemory is the in-memory share of a parsed form; larger parts
// spill to temp files.
const multipartMemory = 8 << 20

// collectFormFiles gathers every file posted under any of the keys.
func collectFormFiles(form *multipart.Form, keys ...string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}

	var result []*multipart.FileHeader
	for _, key := range keys {
		if headers, ok := form.File[key]; ok {
			result = append(result, headers...)
		}
	}
	return result
}

// formValue returns the first non-placeholder value under the keys.
func formValue(form *multipart.Form, keys ...string) string {
	if form == nil {
		return ""
	}
	for _, key := range keys {
		for _, raw := range form.Value[key] {
			raw = strings.TrimSpace(raw)
			if raw == "" || raw == "null" || raw == "undefined" {
				continue
			}
			return raw
		}
	}
	return ""
}

// readFormFile reads at most limit+1 bytes so callers can tell an oversized
// upload from one that fits exactly.
func readFormFile(fh *multipart.FileHeader, limit int64) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return data, uploadContentType(fh, data), nil
}

func uploadContentType(fh *multipart.FileHeader, data []byte) string {
	ct := fh.Header.Get("Content-Type")
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "application/octet-stream"
}

// uploadName strips any client-side directories from the file name.
func uploadName(fh *multipart.FileHeader) string {
	return filepath.Base(strings.ReplaceAll(fh.Filename, `\`, "/"))
}
