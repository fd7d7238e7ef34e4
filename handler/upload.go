package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/gptankit/rawserve/model"
	"github.com/gptankit/rawserve/protocol/response"
)

const NO_FILENAME = "-"

// Upload stores the file parts of a multipart request in dir and answers with
// one line per part: field, filename, size and BLAKE2b-256 digest. Url-encoded
// requests are answered with their body parameters, one per line.
type Upload struct {
	dir string
}

func NewUpload(dir string) *Upload {

	return &Upload{dir: dir}
}

func (u *Upload) Handle(req *model.Request, w *response.Writer) error {

	parts := req.Parts()
	if parts == nil {
		var sb strings.Builder
		for _, p := range req.PostParams() {
			sb.WriteString(p + "\n")
		}
		return w.Send(http.StatusOK, "text/plain", []byte(sb.String()))
	}

	if err := os.MkdirAll(u.dir, 0755); err != nil {
		return err
	}

	var sb strings.Builder
	for _, p := range parts {
		filename := NO_FILENAME
		if p.IsFile() {
			filename = filepath.Base(filepath.FromSlash(p.Filename))
			if filename == "." || filename == ".." || filename == string(filepath.Separator) {
				return fmt.Errorf("unusable filename %q in part %q", p.Filename, p.Name)
			}
			if err := os.WriteFile(filepath.Join(u.dir, filename), p.Content, 0644); err != nil {
				return err
			}
		}
		sb.WriteString(fmt.Sprintf("%s %s %d %x\n", p.Name, filename, len(p.Content), blake2b.Sum256(p.Content)))
	}

	return w.Send(http.StatusOK, "text/plain", []byte(sb.String()))
}
