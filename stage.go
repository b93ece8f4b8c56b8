package daemonize

import (
	"os"
	"strings"
)

// stage is one step of the detachment protocol, carried across
// re-executions in StageEnv.
type stage string

const (
	stageCaller  stage = ""
	stageSession stage = "session"
	stageDaemon  stage = "daemon"
)

func currentStage() stage {
	return stage(os.Getenv(StageEnv))
}

// stageEnviron returns env with the stage marker replaced by s. The caller
// stage has no marker.
func stageEnviron(env []string, s stage) []string {
	prefix := StageEnv + "="
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if !strings.HasPrefix(kv, prefix) {
			out = append(out, kv)
		}
	}
	if s != stageCaller {
		out = append(out, prefix+string(s))
	}
	return out
}
