package handler

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/blake2b"

	"github.com/gptankit/rawserve/model"
	"github.com/gptankit/rawserve/protocol/response"
)

func TestUploadStoresFileParts(t *testing.T) {

	dir := filepath.Join(t.TempDir(), "uploads")
	u := NewUpload(dir)

	req := model.NewRequest("POST", "/upload", "HTTP/1.1", nil, nil, nil, []model.Part{
		{Name: "title", Content: []byte("hello")},
		{Name: "file", Filename: "../../notes.txt", ContentType: "text/plain", Content: []byte("line1\nline2")},
	})

	var out bytes.Buffer
	if err := u.Handle(req, response.New(&out)); err != nil {
		t.Fatalf("upload failed: %s\n", err.Error())
	}

	stored, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
	if err != nil || string(stored) != "line1\nline2" {
		t.Errorf("file not stored under upload dir: %q, %v\n", string(stored), err)
	}

	body := fmt.Sprintf("title - 5 %x\nfile notes.txt 11 %x\n", blake2b.Sum256([]byte("hello")), blake2b.Sum256([]byte("line1\nline2")))
	if !strings.HasSuffix(out.String(), "\r\n\r\n"+body) {
		t.Errorf("wrong listing %q\n", out.String())
	}
}

func TestUploadListsFormParams(t *testing.T) {

	u := NewUpload(t.TempDir())
	req := model.NewRequest("POST", "/upload", "HTTP/1.1", nil, nil, []string{"login=a", "pw=b"}, nil)

	var out bytes.Buffer
	if err := u.Handle(req, response.New(&out)); err != nil {
		t.Fatalf("upload failed: %s\n", err.Error())
	}
	if out.String() != "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 13\r\nConnection: close\r\n\r\nlogin=a\npw=b\n" {
		t.Errorf("wrong response %q\n", out.String())
	}
}

func TestUploadRefusesUnusableFilename(t *testing.T) {

	u := NewUpload(t.TempDir())
	req := model.NewRequest("POST", "/upload", "HTTP/1.1", nil, nil, nil, []model.Part{
		{Name: "file", Filename: "..", Content: []byte("x")},
	})

	var out bytes.Buffer
	w := response.New(&out)
	if err := u.Handle(req, w); err == nil {
		t.Errorf("expected failure for filename ..\n")
	}
	if w.Committed() {
		t.Errorf("response written for refused upload\n")
	}
}
