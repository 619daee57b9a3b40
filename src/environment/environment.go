// Package environment is the Environment collaborator (SPEC_FULL.md §6):
// the pipeline orchestrator's only way to touch the outside world (source
// file reads, emitted-IR/binary writes, linker invocation, log output).
// Grounded on the teacher's util.ReadSource for the read path and on
// main.go's direct os/exec-free plumbing for everything else — the teacher
// has no equivalent write/run-command/log abstraction of its own (it writes
// straight to os.Stdout and shells out nowhere), so those three methods are
// new surface, built in the teacher's plain-error-return idiom rather than
// introducing a virtual-filesystem or process-execution framework.
package environment

import "onuc/src/errs"

// LogLevel selects the glog sink a native Environment's Log call writes to.
type LogLevel int

const (
	LogInfo LogLevel = iota
	LogWarning
	LogError
)

// Environment is the port the pipeline orchestrator depends on instead of
// talking to the OS directly, so a compile can be driven against a fixture
// in tests without touching a real filesystem.
type Environment interface {
	ReadFile(path string) (string, error)
	WriteFile(path string, contents string) error
	WriteBinary(path string, data []byte) error
	RunCommand(name string, args ...string) (string, error)
	Log(level LogLevel, format string, args ...interface{})
}

// wrapIOError tags a raw os/exec failure as a ResourceViolation, the error
// kind SPEC_FULL.md §7 reserves for I/O and environment failures.
func wrapIOError(format string, args ...interface{}) error {
	return errs.NewResourceViolation(format, args...)
}
