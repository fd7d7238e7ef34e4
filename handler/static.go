// Package handler holds the concrete request handlers bound in the route table.
package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gptankit/rawserve/model"
	"github.com/gptankit/rawserve/protocol/response"
	"github.com/gptankit/rawserve/router"
	"github.com/gptankit/rawserve/tcputils"
)

const (
	TIME_PLACEHOLDER = "{time}"
	TIME_LAYOUT      = "2006-01-02T15:04:05.999999999"
)

// Static serves files below root. The page at templated has every {time}
// replaced with the current time.
type Static struct {
	root      string
	templated string
	now       func() time.Time
}

func NewStatic(root string, templated string) *Static {

	return &Static{root: root, templated: templated, now: time.Now}
}

// Handler returns a handler that always serves path, whatever the request target.
func (s *Static) Handler(path string) router.Handler {

	return func(req *model.Request, w *response.Writer) error {
		return s.Serve(path, w)
	}
}

// Resolve maps a logical path to a file below root, refusing paths that climb out of it.
func (s *Static) Resolve(path string) (string, error) {

	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", tcputils.ErrResourceMissing, err)
	}

	full := filepath.Join(root, filepath.FromSlash(path))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes resource root", tcputils.ErrResourceMissing, path)
	}

	return full, nil
}

// Serve writes path as a 200 response. Content-Length is the file size at the
// time of the stat, or the size of the substituted page for the templated path.
func (s *Static) Serve(path string, w *response.Writer) error {

	filePath, err := s.Resolve(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", tcputils.ErrResourceMissing, path)
	}

	mimeType := contentTypeOf(filePath)

	if path == s.templated {
		template, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", tcputils.ErrResourceMissing, path, err)
		}
		content := strings.ReplaceAll(string(template), TIME_PLACEHOLDER, s.now().Format(TIME_LAYOUT))
		return w.Send(http.StatusOK, mimeType, []byte(content))
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", tcputils.ErrResourceMissing, path, err)
	}
	defer file.Close()

	if err := w.WriteHeader(http.StatusOK, mimeType, info.Size()); err != nil {
		return tcputils.EvalError(err)
	}
	if _, err := w.ReadFrom(file); err != nil {
		return tcputils.EvalError(err)
	}

	return w.Flush()
}
