package httpconn

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/gptankit/rawserve/model"
	"github.com/gptankit/rawserve/protocol/bytereader"
	"github.com/gptankit/rawserve/tcputils"
)

func knowsGetPost(method string) bool {

	return method == "GET" || method == "POST"
}

// parseRequest runs both parse phases the way Execute does, minus the routing.
func parseRequest(reader *bytereader.Reader, knows func(string) bool, maxBodySize int64) (*model.Request, error) {

	head, err := parseHead(reader, knows)
	if err != nil {
		return nil, err
	}

	return parseBody(reader, head, maxBodySize)
}

func parse(raw string) (*model.Request, error) {

	return parseRequest(bytereader.New(strings.NewReader(raw), LIMIT), knowsGetPost, 0)
}

func TestParseRequestLine(t *testing.T) {

	var params = []struct {
		raw   string
		em    string
		ep    string
		eq    []string
		ebody []string
	}{
		{"GET /styles.css HTTP/1.1\r\nHost: x\r\n\r\n", "GET", "/styles.css", nil, nil},
		{"GET /missing.html HTTP/1.1\r\n\r\n", "GET", "/missing.html", nil, nil},
		{"GET /index.html?a=1&b=2 HTTP/1.1\r\n\r\n", "GET", "/index.html", []string{"a=1", "b=2"}, nil},
		{"GET /index.html? HTTP/1.1\r\n\r\n", "GET", "/index.html", []string{}, nil},
		{"GET /index.html?title=hello+world&x=%26 HTTP/1.1\r\n\r\n", "GET", "/index.html", []string{"title=hello world", "x=&"}, nil},
		{"GET /a%20b.html HTTP/1.0\r\n\r\n", "GET", "/a b.html", nil, nil},
		{"POST /submit HTTP/1.1\r\nContent-Length: 15\r\n\r\nlogin=a&pw=b", "", "", nil, nil},
		{"POST /submit HTTP/1.1\r\nContent-Length: 12\r\n\r\nlogin=a&pw=b", "POST", "/submit", nil, []string{"login=a", "pw=b"}},
		{"POST /submit?x=1 HTTP/1.1\r\ncontent-length: 9\r\n\r\nlogin=a+b", "POST", "/submit", []string{"x=1"}, []string{"login=a b"}},
		{"POST /submit HTTP/1.1\r\nHost: x\r\n\r\n", "POST", "/submit", nil, []string{}},
	}

	for _, prm := range params {
		req, err := parse(prm.raw)
		if prm.em == "" {
			if err == nil {
				t.Errorf("expected failure for %q\n", prm.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("parse failed for %q: %s\n", prm.raw, err.Error())
			continue
		}
		if req.Method() != prm.em || req.Path() != prm.ep {
			t.Errorf("wrong request line for %q --> %s %s\n", prm.raw, req.Method(), req.Path())
		}
		if !reflect.DeepEqual(req.QueryParams(), prm.eq) {
			t.Errorf("wrong query params for %q --> %#v (expected %#v)\n", prm.raw, req.QueryParams(), prm.eq)
		}
		if !reflect.DeepEqual(req.PostParams(), prm.ebody) {
			t.Errorf("wrong body params for %q --> %#v (expected %#v)\n", prm.raw, req.PostParams(), prm.ebody)
		}
	}
}

func TestParseMalformed(t *testing.T) {

	var params = []string{
		"GET /index.html\r\n\r\n",
		"GET  /index.html HTTP/1.1\r\n\r\n",
		"GET /index.html HTTP/1.1 extra\r\n\r\n",
		"DELETE /index.html HTTP/1.1\r\n\r\n",
		"get /index.html HTTP/1.1\r\n\r\n",
		"GET index.html HTTP/1.1\r\n\r\n",
		"GET /index.html FTP/1.1\r\n\r\n",
		"GET /index.html HTTP/1.1\r\nHost: x\r\n",
		"GET /index.html HTTP/1.1",
		"GET /" + strings.Repeat("a", LIMIT) + " HTTP/1.1\r\n\r\n",
		"GET /index.html HTTP/1.1\r\nX: " + strings.Repeat("a", LIMIT) + "\r\n\r\n",
		"POST /submit HTTP/1.1\r\nContent-Length: abc\r\n\r\n",
		"POST /submit HTTP/1.1\r\nContent-Length: -1\r\n\r\n",
		"POST /submit HTTP/1.1\r\nContent-Length: 99999999999\r\n\r\n",
		"POST /submit HTTP/1.1\r\nContent-Length: 3\r\n\r\na=%",
		"POST /submit HTTP/1.1\r\nContent-Type: multipart/form-data\r\nContent-Length: 3\r\n\r\nabc",
	}

	for _, raw := range params {
		_, err := parse(raw)
		if !errors.Is(err, tcputils.ErrMalformedRequest) {
			t.Errorf("expected malformed request for %q, got %v\n", raw, err)
		}
	}
}

func TestParseShortBodyIsIOFailure(t *testing.T) {

	_, err := parse("POST /submit HTTP/1.1\r\nContent-Length: 15\r\n\r\nlogin=a&pw=b")
	if !errors.Is(err, tcputils.ErrIOFailure) {
		t.Errorf("expected io failure, got %v\n", err)
	}

	_, err = parse("")
	if !errors.Is(err, tcputils.ErrIOFailure) {
		t.Errorf("expected io failure on empty connection, got %v\n", err)
	}
}

func TestParseGetIgnoresBody(t *testing.T) {

	req, err := parse("GET /index.html HTTP/1.1\r\nContent-Length: 3\r\n\r\nabc")
	if err != nil {
		t.Fatalf("parse failed: %s\n", err.Error())
	}
	if req.PostParams() != nil || req.Parts() != nil {
		t.Errorf("GET request carries a body\n")
	}
}

func TestParseBodyBeyondFirstRead(t *testing.T) {

	body := "data=" + strings.Repeat("x", 3*LIMIT)
	raw := "POST /submit HTTP/1.1\r\nContent-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body

	req, err := parseRequest(bytereader.New(iotest.HalfReader(strings.NewReader(raw)), LIMIT), knowsGetPost, 0)
	if err != nil {
		t.Fatalf("parse failed: %s\n", err.Error())
	}
	if v := req.PostParam("data"); len(v) != 1 || len(v[0]) != 3*LIMIT {
		t.Errorf("body truncated\n")
	}
}

func TestParseMultipart(t *testing.T) {

	body := "--XyZ\r\n" +
		"Content-Disposition: form-data; name=\"title\"\r\n\r\n" +
		"hello\r\n" +
		"--XyZ\r\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"notes.txt\"\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"line1\nline2\r\n" +
		"--XyZ--\r\n"
	raw := "POST /upload HTTP/1.1\r\n" +
		"Content-Type: multipart/form-data; charset=UTF-8; boundary=XyZ\r\n" +
		"Content-Length: " + strconv.Itoa(len(body)) + "\r\n\r\n" + body

	req, err := parse(raw)
	if err != nil {
		t.Fatalf("parse failed: %s\n", err.Error())
	}
	if req.PostParams() != nil {
		t.Errorf("multipart request carries body params\n")
	}

	parts := req.Parts()
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d\n", len(parts))
	}
	if parts[0].Name != "title" || parts[0].IsFile() || string(parts[0].Content) != "hello" {
		t.Errorf("wrong field part %+v\n", parts[0])
	}
	if parts[1].Name != "file" || parts[1].Filename != "notes.txt" || parts[1].ContentType != "text/plain" || string(parts[1].Content) != "line1\nline2" {
		t.Errorf("wrong file part %+v\n", parts[1])
	}
}
