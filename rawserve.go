package main

import (
	"errors"
	"net"
	"time"

	"github.com/gptankit/rawserve/errorlog"
	"github.com/gptankit/rawserve/handler"
	"github.com/gptankit/rawserve/model"
	"github.com/gptankit/rawserve/profiling"
	"github.com/gptankit/rawserve/protocol/httpconn"
	"github.com/gptankit/rawserve/router"
	"github.com/gptankit/rawserve/tcputils"
	"github.com/gptankit/rawserve/workpool"
)

const (
	METHOD_GET     = "GET"
	METHOD_POST    = "POST"
	UPLOAD_PATH    = "/upload"
	ACCEPT_BACKOFF = 50 * time.Millisecond
)

var validPaths = []string{"/index.html", "/spring.svg", "/spring.png", "/resources.html", "/styles.css", "/app.js", "/links.html", "/forms.html", "/classic.html", "/events.html", "/events.js"}

// main reads rawserve properties, builds the route table and the worker pool
// once, and accepts connections until the listener is closed.
func main() {

	defer errorlog.Flush()

	sqp, err := getProperties(getPropertyFilePath())
	if err != nil {
		errorlog.LogGenericError("Could not read rawserve.properties, not listening -- " + err.Error())
		return
	}

	if err := errorlog.Init(sqp.ErrorLogFile); err != nil {
		errorlog.LogWarning("could not open %s, logging to console -- %s", sqp.ErrorLogFile, err.Error())
	}

	stopProfiling, err := profiling.Start(sqp.EnableProfilingFor, SRV_WD)
	if err != nil {
		errorlog.LogWarning("profiling disabled -- %s", err.Error())
		stopProfiling = func() {}
	}
	defer stopProfiling()

	reg := router.NewRegistry()
	registerRoutes(reg, sqp)

	pool, err := workpool.New(sqp.MaxConcurrency, sqp.QueueSize)
	if err != nil {
		errorlog.LogGenericError("Could not create worker pool -- " + err.Error())
		return
	}
	defer pool.Stop()

	listener, err := getListener(sqp)
	if err != nil {
		errorlog.LogGenericError("Could not listen on :" + sqp.ListenerPort + " -- " + err.Error())
		return
	}
	defer listener.Close()

	errorlog.LogInfo("%s listening on port> %s, workers> %d, queue> %d, routes> %d", SRV_VER, sqp.ListenerPort, pool.Cap(), sqp.QueueSize, reg.Len())

	// accept new connections
	listenActive(listener, pool, reg, sqp)
}

// registerRoutes binds the static pages and the upload endpoint.
func registerRoutes(reg *router.Registry, sqp *model.ServerProperties) {

	static := handler.NewStatic(sqp.ResourceRoot, sqp.TemplatedPage)
	for _, path := range validPaths {
		reg.Register(METHOD_GET, path, static.Handler(path))
	}

	reg.Register(METHOD_POST, UPLOAD_PATH, handler.NewUpload(sqp.UploadDir).Handle)
}

// listenActive hands every accepted connection to the pool. Submit blocks while
// the pool is saturated, so a full queue stalls accepting instead of growing.
func listenActive(listener net.Listener, pool *workpool.Pool, reg *router.Registry, sqp *model.ServerProperties) {

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			errorlog.LogRequestError("listener", tcputils.SERVER_IO_ERR, "Error on accepting conn -- "+err.Error())
			time.Sleep(ACCEPT_BACKOFF)
			continue
		}

		if err := pool.Submit(func() { httpconn.New(conn, sqp).Execute(reg) }); err != nil {
			errorlog.LogRequestError(tcputils.RemoteAddr(conn), tcputils.SERVER_IO_ERR, err.Error())
			conn.Close()
			return
		}
	}
}
