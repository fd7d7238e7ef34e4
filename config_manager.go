package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/astaxie/beego/config"

	"github.com/gptankit/rawserve/model"
)

const (
	SRV_K_LISTENER_PORT        = "LISTENER_PORT"
	SRV_K_MAX_CONCURRENT_CONNS = "CONCURRENCY_PEAK"
	SRV_K_QUEUE_SIZE           = "QUEUE_SIZE"
	SRV_K_READ_TIMEOUT         = "READ_TIMEOUT"
	SRV_K_WRITE_TIMEOUT        = "WRITE_TIMEOUT"
	SRV_K_RESOURCE_ROOT        = "RESOURCE_ROOT"
	SRV_K_TEMPLATED_PAGE       = "TEMPLATED_PAGE"
	SRV_K_UPLOAD_DIR           = "UPLOAD_DIR"
	SRV_K_MAX_BODY_SIZE        = "MAX_BODY_SIZE"
	SRV_K_ERROR_LOG_FILE       = "ERROR_LOG_FILE"
	SRV_K_ENABLE_PROFILING_FOR = "ENABLE_PROFILING_FOR"

	DEFAULT_CONCURRENCY_PEAK = 64
	DEFAULT_QUEUE_SIZE       = 64
	DEFAULT_READ_TIMEOUT     = 5000  // ms
	DEFAULT_WRITE_TIMEOUT    = 10000 // ms
	DEFAULT_RESOURCE_ROOT    = "public"
	DEFAULT_TEMPLATED_PAGE   = "/classic.html"
	DEFAULT_UPLOAD_DIR       = "uploads"
	DEFAULT_MAX_BODY_SIZE    = 10 << 20

	SRV_CONFIG_ENV = "RAWSERVE_CONFIG"
	SRV_WD         = "."
	SRV_VER        = "rawserve/0.1"
)

var errNoPort = errors.New("no usable " + SRV_K_LISTENER_PORT)

// getPropertyFilePath returns path to rawserve.properties.
func getPropertyFilePath() string {

	if confFilePath := os.Getenv(SRV_CONFIG_ENV); confFilePath != "" {
		return confFilePath
	}

	return SRV_WD + "/config/rawserve.properties"
}

// getProperties transforms rawserve.properties into config model and validates it.
func getProperties(confFilePath string) (*model.ServerProperties, error) {

	content, err := os.ReadFile(confFilePath)
	if err != nil {
		return nil, err
	}

	cfg, err := populate(content)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return getAssignedProperties(cfg), nil
}

// populate maps key/value pairs to config fields. A file holding nothing but a
// number is read as the listener port.
func populate(content []byte) (*model.Config, error) {

	cfg := &model.Config{
		ConcurrencyPeak: DEFAULT_CONCURRENCY_PEAK,
		QueueSize:       DEFAULT_QUEUE_SIZE,
		ReadTimeout:     DEFAULT_READ_TIMEOUT,
		WriteTimeout:    DEFAULT_WRITE_TIMEOUT,
		ResourceRoot:    DEFAULT_RESOURCE_ROOT,
		TemplatedPage:   DEFAULT_TEMPLATED_PAGE,
		UploadDir:       DEFAULT_UPLOAD_DIR,
		MaxBodySize:     DEFAULT_MAX_BODY_SIZE,
	}

	trimmed := strings.TrimSpace(string(content))
	if _, err := strconv.Atoi(trimmed); err == nil {
		cfg.ListenerPort = trimmed
		return cfg, nil
	}

	cnf, err := config.NewConfigData("ini", content)
	if err != nil {
		return nil, err
	}

	cfg.ListenerPort = strings.TrimSpace(cnf.String(SRV_K_LISTENER_PORT))
	cfg.ConcurrencyPeak = cnf.DefaultInt64(SRV_K_MAX_CONCURRENT_CONNS, cfg.ConcurrencyPeak)
	cfg.QueueSize = cnf.DefaultInt64(SRV_K_QUEUE_SIZE, cfg.QueueSize)
	cfg.ReadTimeout = int32(cnf.DefaultInt(SRV_K_READ_TIMEOUT, int(cfg.ReadTimeout)))
	cfg.WriteTimeout = int32(cnf.DefaultInt(SRV_K_WRITE_TIMEOUT, int(cfg.WriteTimeout)))
	cfg.ResourceRoot = cnf.DefaultString(SRV_K_RESOURCE_ROOT, cfg.ResourceRoot)
	cfg.TemplatedPage = cnf.DefaultString(SRV_K_TEMPLATED_PAGE, cfg.TemplatedPage)
	cfg.UploadDir = cnf.DefaultString(SRV_K_UPLOAD_DIR, cfg.UploadDir)
	cfg.MaxBodySize = cnf.DefaultInt64(SRV_K_MAX_BODY_SIZE, cfg.MaxBodySize)
	cfg.ErrorLogFile = cnf.String(SRV_K_ERROR_LOG_FILE)
	cfg.EnableProfilingFor = cnf.String(SRV_K_ENABLE_PROFILING_FOR)

	return cfg, nil
}

// validate does a mandatory fields check on rawserve.properties.
func validate(cfg *model.Config) error {

	port, err := strconv.Atoi(cfg.ListenerPort)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("%w: %q", errNoPort, cfg.ListenerPort)
	}

	if cfg.ConcurrencyPeak <= 0 {
		return fmt.Errorf("%s must be positive, got %d", SRV_K_MAX_CONCURRENT_CONNS, cfg.ConcurrencyPeak)
	}
	if cfg.QueueSize < 0 {
		return fmt.Errorf("%s must not be negative, got %d", SRV_K_QUEUE_SIZE, cfg.QueueSize)
	}
	if cfg.MaxBodySize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", SRV_K_MAX_BODY_SIZE, cfg.MaxBodySize)
	}
	if !strings.HasPrefix(cfg.TemplatedPage, "/") {
		return fmt.Errorf("%s must start with /, got %q", SRV_K_TEMPLATED_PAGE, cfg.TemplatedPage)
	}

	return nil
}

// getAssignedProperties returns a new model.ServerProperties object
// with configs mapped from rawserve.properties.
func getAssignedProperties(cfg *model.Config) *model.ServerProperties {

	return &model.ServerProperties{
		ListenerPort:       cfg.ListenerPort,
		MaxConcurrency:     int(cfg.ConcurrencyPeak),
		QueueSize:          int(cfg.QueueSize),
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
		ResourceRoot:       cfg.ResourceRoot,
		TemplatedPage:      cfg.TemplatedPage,
		UploadDir:          cfg.UploadDir,
		MaxBodySize:        cfg.MaxBodySize,
		ErrorLogFile:       cfg.ErrorLogFile,
		EnableProfilingFor: cfg.EnableProfilingFor,
	}
}
