package runner

// SetEnv adds variables to the environment of every process e starts.
func SetEnv(e *ProcessExecutor, env ...string) {
	e.env = env
}
