package model

// Config holds the raw values read from the settings file.
type Config struct {
	ListenerPort       string
	ConcurrencyPeak    int64
	QueueSize          int64
	ReadTimeout        int32
	WriteTimeout       int32
	ResourceRoot       string
	TemplatedPage      string
	UploadDir          string
	MaxBodySize        int64
	ErrorLogFile       string
	EnableProfilingFor string
}
