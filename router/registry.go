// Package router maps (method, path) pairs to handlers.
package router

import (
	"sort"

	"github.com/gptankit/rawserve/errorlog"
	"github.com/gptankit/rawserve/model"
	"github.com/gptankit/rawserve/protocol/response"
)

// Handler writes a complete response for req. A returned error is only turned
// into an error response if nothing has been written yet.
type Handler func(req *model.Request, w *response.Writer) error

// Registry is filled before the listener starts accepting and only read
// afterwards, so lookups need no locking.
type Registry struct {
	handlers map[string]map[string]Handler
}

func NewRegistry() *Registry {

	return &Registry{handlers: make(map[string]map[string]Handler)}
}

// Register binds handler to (method, path). Registering a pair twice keeps the
// first handler and returns false.
func (reg *Registry) Register(method string, path string, handler Handler) bool {

	paths, ok := reg.handlers[method]
	if !ok {
		paths = make(map[string]Handler)
		reg.handlers[method] = paths
	}

	if _, exists := paths[path]; exists {
		errorlog.LogWarning("handler exists for %s %s, keeping the first one", method, path)
		return false
	}

	paths[path] = handler
	return true
}

// Lookup matches method and path exactly.
func (reg *Registry) Lookup(method string, path string) (Handler, bool) {

	handler, ok := reg.handlers[method][path]
	return handler, ok
}

// Knows reports whether any handler is registered for method.
func (reg *Registry) Knows(method string) bool {

	_, ok := reg.handlers[method]
	return ok
}

func (reg *Registry) Methods() []string {

	methods := make([]string, 0, len(reg.handlers))
	for m := range reg.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	return methods
}

// Len returns the number of registered (method, path) pairs.
func (reg *Registry) Len() int {

	n := 0
	for _, paths := range reg.handlers {
		n += len(paths)
	}

	return n
}
