package httpconn

import (
	"fmt"
	"net"
	"net/http"

	"github.com/gptankit/rawserve/errorlog"
	"github.com/gptankit/rawserve/model"
	"github.com/gptankit/rawserve/protocol/bytereader"
	"github.com/gptankit/rawserve/protocol/response"
	"github.com/gptankit/rawserve/router"
	"github.com/gptankit/rawserve/tcputils"
)

// HTTPConnection is a http connection object that holds underlying
// tcp connection with reader and writer to that connection.
type HTTPConnection struct {
	tcpConn net.Conn
	reader  *bytereader.Reader
	writer  *response.Writer
	sqp     *model.ServerProperties
	remote  string
}

// New initializes new http reader/writer to underlying tcp connection.
func New(tcpConn net.Conn, sqp *model.ServerProperties) *HTTPConnection {

	httpConn := new(HTTPConnection)
	httpConn.tcpConn = tcpConn
	httpConn.reader = bytereader.New(tcpConn, LIMIT)
	httpConn.writer = response.New(tcpConn)
	httpConn.sqp = sqp
	httpConn.remote = tcputils.RemoteAddr(tcpConn)

	return httpConn
}

// Execute serves exactly one request: read, look up the handler, invoke it and
// close. Malformed requests get 400, unknown routes 404 and handler failures
// 500 as long as nothing has been written yet. I/O failures are only logged.
func (httpConn *HTTPConnection) Execute(reg *router.Registry) {

	defer forceCloseConn(httpConn.tcpConn)

	if err := tcputils.SetTCPDeadline(httpConn.tcpConn, httpConn.sqp.ReadTimeout, httpConn.sqp.WriteTimeout); err != nil {
		errorlog.LogRequestError(httpConn.remote, tcputils.SERVER_IO_ERR, err.Error())
		return
	}

	head, err := parseHead(httpConn.reader, reg.Knows)
	if err != nil {
		httpConn.fail(err)
		return
	}

	// routed before the body is consumed, so an unknown route is answered even
	// when the announced body never arrives
	handler, ok := reg.Lookup(head.method, head.path)
	if !ok {
		errorlog.LogRequestError(httpConn.remote, tcputils.CLIENT_NO_ROUTE_ERR, tcputils.RESPONSE_ROUTE_NOT_FOUND+" "+head.method+" "+head.path)
		httpConn.Discard(http.StatusNotFound)
		return
	}

	req, err := parseBody(httpConn.reader, head, httpConn.sqp.MaxBodySize)
	if err != nil {
		httpConn.fail(err)
		return
	}

	if err := invoke(handler, req, httpConn.writer); err != nil {
		errorlog.LogRequestError(httpConn.remote, tcputils.CodeOf(err), req.Method()+" "+req.Path()+": "+err.Error())
		if !httpConn.writer.Committed() {
			if status := tcputils.StatusOf(err); status != 0 {
				httpConn.Discard(status)
			}
		}
		return
	}

	if !httpConn.writer.Committed() {
		errorlog.LogWarning("handler for %s %s wrote no response", req.Method(), req.Path())
	}
	if err := httpConn.writer.Flush(); err != nil {
		errorlog.LogRequestError(httpConn.remote, tcputils.SERVER_IO_ERR, "Error on writing to client conn: "+err.Error())
	}
}

// fail logs a read failure and answers it when it maps to a status.
func (httpConn *HTTPConnection) fail(err error) {

	errorlog.LogRequestError(httpConn.remote, tcputils.CodeOf(err), err.Error())
	if status := tcputils.StatusOf(err); status != 0 {
		httpConn.Discard(status)
	}
}

// Discard writes an empty response with the given status. The caller closes the connection.
func (httpConn *HTTPConnection) Discard(status int) {

	if err := httpConn.writer.SendEmpty(status); err != nil {
		errorlog.LogRequestError(httpConn.remote, tcputils.SERVER_IO_ERR, "Error on writing to client conn: "+err.Error())
	}
}

// invoke runs handler, turning a panic into an error.
func invoke(handler router.Handler, req *model.Request, w *response.Writer) (err error) {

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return handler(req, w)
}

// forceCloseConn force closes a net.Conn object.
func forceCloseConn(conn net.Conn) bool {

	conn.Close()
	return true
}
