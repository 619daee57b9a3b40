package environment

import (
	"bytes"
	"os"
	"os/exec"

	"github.com/golang/glog"
)

// Native is the real-OS Environment implementation: plain os.ReadFile/
// os.WriteFile for source and IR I/O, os/exec for the linker invocation
// (SPEC_FULL.md §6's `clang <stem>.ll -O3 -o <stem>_bin -Wno-override-module`),
// and glog for leveled logging (SPEC_FULL.md §10 — adopted from the
// `google-kati` pack member, since the teacher has no leveled-logging story
// of its own to imitate directly).
type Native struct{}

// New returns a Native Environment talking to the real OS.
func New() *Native { return &Native{} }

func (*Native) ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", wrapIOError("could not read %q: %s", path, err)
	}
	return string(b), nil
}

func (*Native) WriteFile(path string, contents string) error {
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return wrapIOError("could not write %q: %s", path, err)
	}
	return nil
}

func (*Native) WriteBinary(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o755); err != nil {
		return wrapIOError("could not write %q: %s", path, err)
	}
	return nil
}

// RunCommand invokes name with args, as the Environment's sole process-
// invocation primitive (used to shell out to the system linker once the
// .ll file is written).
func (*Native) RunCommand(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", wrapIOError("%s %v: %s: %s", name, args, err, stderr.String())
	}
	return stdout.String(), nil
}

func (*Native) Log(level LogLevel, format string, args ...interface{}) {
	switch level {
	case LogWarning:
		glog.Warningf(format, args...)
	case LogError:
		glog.Errorf(format, args...)
	default:
		glog.Infof(format, args...)
	}
}
