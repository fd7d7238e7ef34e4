package handler

import (
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const DEFAULT_MIME_TYPE = "application/octet-stream"

var staticDefaultMimeTypes = map[string]string{
	"bin":   "application/octet-stream",
	"bmp":   "image/bmp",
	"css":   "text/css",
	"gif":   "image/gif",
	"htm":   "text/html",
	"html":  "text/html",
	"ico":   "image/x-icon",
	"jpeg":  "image/jpeg",
	"jpg":   "image/jpeg",
	"js":    "application/javascript",
	"json":  "application/json",
	"mp3":   "audio/mpeg",
	"mp4":   "video/mp4",
	"pdf":   "application/pdf",
	"png":   "image/png",
	"svg":   "image/svg+xml",
	"txt":   "text/plain",
	"wasm":  "application/wasm",
	"webp":  "image/webp",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"xml":   "application/xml",
	"zip":   "application/zip",
}

// contentTypeOf classifies a file by extension, then by the system mime table,
// then by sniffing its first bytes.
func contentTypeOf(filePath string) string {

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	if mimeType, ok := staticDefaultMimeTypes[ext]; ok {
		return mimeType
	}

	if ext != "" {
		if mimeType := mime.TypeByExtension("." + ext); mimeType != "" {
			return mimeType
		}
	}

	file, err := os.Open(filePath)
	if err != nil {
		return DEFAULT_MIME_TYPE
	}
	defer file.Close()

	head := make([]byte, 512)
	n, _ := file.Read(head)
	if n == 0 {
		return DEFAULT_MIME_TYPE
	}

	return http.DetectContentType(head[:n])
}
