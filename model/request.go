package model

import (
	"strings"
)

// Part is one section of a multipart/form-data body.
type Part struct {
	Name        string
	Filename    string // empty unless the part is a file upload
	ContentType string
	Content     []byte
}

// IsFile reports whether the part carries an uploaded file.
func (p Part) IsFile() bool {

	return p.Filename != ""
}

// Request is a parsed request. It is never modified after NewRequest returns;
// accessors hand out copies.
type Request struct {
	method      string
	path        string
	protocol    string
	headers     []string
	queryParams []string
	bodyParams  []string
	parts       []Part
}

// NewRequest builds a Request. queryParams must be nil when the target carried no
// query string. At most one of bodyParams and parts may be non-nil.
func NewRequest(method string, path string, protocol string, headers []string, queryParams []string, bodyParams []string, parts []Part) *Request {

	if parts != nil {
		bodyParams = nil
	}

	return &Request{
		method:      method,
		path:        path,
		protocol:    protocol,
		headers:     copyStrings(headers),
		queryParams: copyStrings(queryParams),
		bodyParams:  copyStrings(bodyParams),
		parts:       copyParts(parts),
	}
}

func (req *Request) Method() string {

	return req.method
}

func (req *Request) Path() string {

	return req.path
}

func (req *Request) Protocol() string {

	return req.protocol
}

// Headers returns the raw header lines in arrival order.
func (req *Request) Headers() []string {

	return copyStrings(req.headers)
}

// Header returns the value of the first header named name (case-insensitive).
func (req *Request) Header(name string) (string, bool) {

	for _, h := range req.headers {
		if i := strings.IndexByte(h, ':'); i > 0 && strings.EqualFold(strings.TrimSpace(h[:i]), name) {
			return strings.TrimSpace(h[i+1:]), true
		}
	}

	return "", false
}

// QueryParams returns the decoded query tokens, or nil if the target had no query string.
func (req *Request) QueryParams() []string {

	return copyStrings(req.queryParams)
}

// QueryParam returns the values of every query token whose key is exactly name.
func (req *Request) QueryParam(name string) []string {

	return lookupParam(req.queryParams, name)
}

// PostParams returns the decoded url-encoded body tokens, or nil if the body was
// not url-encoded.
func (req *Request) PostParams() []string {

	return copyStrings(req.bodyParams)
}

// PostParam returns the values of every body token whose key is exactly name.
func (req *Request) PostParam(name string) []string {

	return lookupParam(req.bodyParams, name)
}

// Parts returns the multipart sections, or nil if the body was not multipart.
func (req *Request) Parts() []Part {

	return copyParts(req.parts)
}

// Part returns the first part with the given field name.
func (req *Request) Part(name string) (Part, bool) {

	for _, p := range req.parts {
		if p.Name == name {
			return copyPart(p), true
		}
	}

	return Part{}, false
}

// lookupParam matches keys exactly; a bare key yields an empty value.
func lookupParam(params []string, name string) []string {

	if params == nil {
		return nil
	}

	values := []string{}
	for _, p := range params {
		key, value := p, ""
		if i := strings.IndexByte(p, '='); i >= 0 {
			key, value = p[:i], p[i+1:]
		}
		if key == name {
			values = append(values, strings.TrimSpace(value))
		}
	}

	return values
}

func copyStrings(s []string) []string {

	if s == nil {
		return nil
	}

	return append(make([]string, 0, len(s)), s...)
}

func copyParts(parts []Part) []Part {

	if parts == nil {
		return nil
	}

	out := make([]Part, len(parts))
	for i, p := range parts {
		out[i] = copyPart(p)
	}

	return out
}

func copyPart(p Part) Part {

	p.Content = append([]byte(nil), p.Content...)
	return p
}
