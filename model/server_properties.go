package model

// ServerProperties is the validated, process-wide configuration. It is built once
// at startup and never modified afterwards.
type ServerProperties struct {
	ListenerPort       string
	MaxConcurrency     int
	QueueSize          int
	ReadTimeout        int32 // ms
	WriteTimeout       int32 // ms
	ResourceRoot       string
	TemplatedPage      string
	UploadDir          string
	MaxBodySize        int64
	ErrorLogFile       string
	EnableProfilingFor string
}
