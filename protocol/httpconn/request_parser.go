package httpconn

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/gptankit/rawserve/model"
	"github.com/gptankit/rawserve/protocol/bytereader"
	"github.com/gptankit/rawserve/tcputils"
)

const (
	LIMIT               = 4096
	DEFAULT_MAX_BODY    = 10 << 20
	CONTENT_LENGTH      = "Content-Length"
	CONTENT_TYPE        = "Content-Type"
	MULTIPART_FORM_DATA = "multipart/form-data"
	METHOD_GET          = "GET"
	PROTOCOL_PREFIX     = "HTTP"
)

var (
	requestLineDelimiter = []byte{'\r', '\n'}
	headersDelimiter     = []byte{'\r', '\n', '\r', '\n'}
)

// requestHead is everything up to and including the header block terminator.
type requestHead struct {
	method      string
	path        string
	protocol    string
	headers     []string
	queryParams []string
	bodyStart   int
}

// parseHead parses the request line and header block without consuming the body.
func parseHead(reader *bytereader.Reader, knows func(string) bool) (*requestHead, error) {

	if err := reader.Fill(headersDelimiter); err != nil {
		return nil, tcputils.EvalError(err)
	}

	buffer := reader.Buffered()
	if len(buffer) == 0 {
		return nil, tcputils.EvalError(io.ErrUnexpectedEOF)
	}

	// request line
	requestLineEnd := reader.Index(requestLineDelimiter, 0)
	if requestLineEnd == -1 {
		return nil, tcputils.Malformed("request line not terminated within %d bytes", LIMIT)
	}

	requestLine := strings.Split(string(buffer[:requestLineEnd]), " ")
	if len(requestLine) != 3 {
		return nil, tcputils.Malformed("request line has %d tokens", len(requestLine))
	}

	method, requestTarget, protocol := requestLine[0], requestLine[1], requestLine[2]
	if !knows(method) {
		return nil, tcputils.Malformed("unknown method %q", method)
	}
	if !strings.HasPrefix(requestTarget, "/") {
		return nil, tcputils.Malformed("request target %q does not start with /", requestTarget)
	}
	if !strings.HasPrefix(protocol, PROTOCOL_PREFIX) {
		return nil, tcputils.Malformed("bad protocol %q", protocol)
	}

	// headers, searched from the request line end so a request without headers
	// ("GET / HTTP/1.1\r\n\r\n") is recognised
	headersStart := requestLineEnd + len(requestLineDelimiter)
	headersEnd := reader.Index(headersDelimiter, requestLineEnd)
	if headersEnd == -1 {
		return nil, tcputils.Malformed("header block not terminated within %d bytes", LIMIT)
	}

	head := &requestHead{
		method:    method,
		protocol:  protocol,
		bodyStart: headersEnd + len(headersDelimiter),
	}

	if headersEnd > headersStart {
		reader.Reset()
		if err := reader.Skip(headersStart); err != nil {
			return nil, tcputils.EvalError(err)
		}
		headersBytes, err := reader.ReadN(headersEnd - headersStart)
		if err != nil {
			return nil, tcputils.EvalError(err)
		}
		for _, h := range strings.Split(string(headersBytes), "\r\n") {
			if h != "" {
				head.headers = append(head.headers, h)
			}
		}
	}

	// target
	rawPath, rawQuery, hasQuery := strings.Cut(requestTarget, "?")
	path, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, tcputils.Malformed("bad path %q", rawPath)
	}
	head.path = path

	if hasQuery {
		if head.queryParams, err = splitParams(rawQuery); err != nil {
			return nil, err
		}
	}

	return head, nil
}

// parseBody reads the body announced by head (never for GET) and builds the Request.
func parseBody(reader *bytereader.Reader, head *requestHead, maxBodySize int64) (*model.Request, error) {

	if head.method == METHOD_GET {
		return model.NewRequest(head.method, head.path, head.protocol, head.headers, head.queryParams, nil, nil), nil
	}

	var body []byte
	if contentLength, ok := extractHeader(head.headers, CONTENT_LENGTH); ok {
		length, err := strconv.ParseInt(contentLength, 10, 64)
		if err != nil || length < 0 {
			return nil, tcputils.Malformed("bad Content-Length %q", contentLength)
		}
		if maxBodySize <= 0 {
			maxBodySize = DEFAULT_MAX_BODY
		}
		if length > maxBodySize {
			return nil, tcputils.Malformed("Content-Length %d exceeds %d", length, maxBodySize)
		}

		reader.Reset()
		if err := reader.Skip(head.bodyStart); err != nil {
			return nil, tcputils.EvalError(err)
		}
		if body, err = reader.ReadN(int(length)); err != nil {
			return nil, tcputils.EvalError(err)
		}
	}

	contentType, _ := extractHeader(head.headers, CONTENT_TYPE)
	if isMultipart(contentType) {
		parts, err := splitParts(contentType, body)
		if err != nil {
			return nil, err
		}
		return model.NewRequest(head.method, head.path, head.protocol, head.headers, head.queryParams, nil, parts), nil
	}

	bodyParams, err := splitParams(string(body))
	if err != nil {
		return nil, err
	}

	return model.NewRequest(head.method, head.path, head.protocol, head.headers, head.queryParams, bodyParams, nil), nil
}

// extractHeader returns the trimmed value of the first header named name.
func extractHeader(headers []string, name string) (string, bool) {

	for _, h := range headers {
		if i := strings.IndexByte(h, ':'); i > 0 && strings.EqualFold(strings.TrimSpace(h[:i]), name) {
			return strings.TrimSpace(h[i+1:]), true
		}
	}

	return "", false
}

// splitParams splits raw on & and url-decodes key and value of every token.
// The result is never nil; empty tokens are dropped.
func splitParams(raw string) ([]string, error) {

	params := []string{}
	for _, token := range strings.Split(raw, "&") {
		if token == "" {
			continue
		}

		rawKey, rawValue, hasValue := strings.Cut(token, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, tcputils.Malformed("bad parameter %q", token)
		}
		if !hasValue {
			params = append(params, key)
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, tcputils.Malformed("bad parameter %q", token)
		}
		params = append(params, key+"="+value)
	}

	return params, nil
}

func isMultipart(contentType string) bool {

	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == MULTIPART_FORM_DATA
}

// splitParts decomposes a multipart/form-data body using the boundary declared
// in contentType.
func splitParts(contentType string, body []byte) ([]model.Part, error) {

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, tcputils.Malformed("bad Content-Type %q", contentType)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, tcputils.Malformed("multipart body without boundary")
	}

	parts := []model.Part{}
	if len(body) == 0 {
		return parts, nil
	}

	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, tcputils.Malformed("bad multipart body: %v", err)
		}

		content, err := io.ReadAll(p)
		p.Close()
		if err != nil {
			return nil, tcputils.Malformed("bad multipart part %q: %v", p.FormName(), err)
		}

		parts = append(parts, model.Part{
			Name:        p.FormName(),
			Filename:    p.FileName(),
			ContentType: p.Header.Get(CONTENT_TYPE),
			Content:     content,
		})
	}

	return parts, nil
}
