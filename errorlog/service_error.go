package errorlog

import (
	"strconv"
	"sync"

	"github.com/astaxie/beego/logs"
)

var (
	logger *logs.BeeLogger
	mu     sync.RWMutex
)

func init() {

	logger = newConsoleLogger()
}

func newConsoleLogger() *logs.BeeLogger {

	l := logs.NewLogger()
	l.SetLevel(logs.LevelInformational)
	return l
}

// Init switches logging to logFile. An empty logFile keeps console logging.
func Init(logFile string) error {

	l := newConsoleLogger()
	if logFile != "" {
		if err := l.SetLogger(logs.AdapterFile, `{"filename":`+strconv.Quote(logFile)+`}`); err != nil {
			return err
		}
		l.DelLogger(logs.AdapterConsole)
	}

	mu.Lock()
	old := logger
	logger = l
	mu.Unlock()

	old.Close()
	return nil
}

func current() *logs.BeeLogger {

	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// LogRequestError logs a failure on a single client connection.
func LogRequestError(remote string, errType int, errReason string) {

	current().Error("Error detected on %s [Code: %d, %s]", remote, errType, errReason)
}

func LogGenericError(errReason string) {

	current().Error("%s", errReason)
}

func LogWarning(format string, v ...interface{}) {

	current().Warning(format, v...)
}

func LogInfo(format string, v ...interface{}) {

	current().Informational(format, v...)
}

func Flush() {

	current().Flush()
}
