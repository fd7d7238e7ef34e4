package profiling

import (
	"fmt"

	"github.com/pkg/profile"

	"github.com/gptankit/rawserve/errorlog"
)

// Start begins cpu or mem profiling into dir and returns the function that
// writes the profile to disk. An empty profilingFor disables profiling.
func Start(profilingFor string, dir string) (func(), error) {

	var mode func(*profile.Profile)
	switch profilingFor {
	case "":
		return func() {}, nil
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	default:
		return nil, fmt.Errorf("unknown profiling mode %q", profilingFor)
	}

	// the server's own signal handling stops the profile
	prof := profile.Start(mode, profile.ProfilePath(dir), profile.NoShutdownHook, profile.Quiet)
	errorlog.LogInfo("%s profiling enabled, writing to %s", profilingFor, dir)

	return prof.Stop, nil
}
