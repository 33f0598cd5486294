package supervisor

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"

	ps "github.com/mitchellh/go-ps"

	"github.com/teslashibe/activity-tracker/internal/log"
)

// ErrNotRunning is returned when stopping a process that no longer exists.
var ErrNotRunning = errors.New("process not running")

// Handle identifies a supervised process.
type Handle struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
}

// Controller finds, starts and stops the supervised process.
type Controller interface {
	// Running returns the handle of a matching process, if any
	Running() (Handle, bool, error)

	// Start launches the process without waiting for it to exit
	Start() (Handle, error)

	// Stop asks the process to terminate gracefully
	Stop(h Handle) error
}

// commLen is the Linux limit on the executable name reported by /proc.
const commLen = 15

// matchExecutable reports whether a process executable name matches the
// configured name, allowing for kernel truncation.
func matchExecutable(exe, name string) bool {
	if exe == "" || name == "" {
		return false
	}
	if exe == name {
		return true
	}
	return len(exe) == commLen && len(name) > commLen && strings.HasPrefix(name, exe)
}

// ProcessController manages an OS process matched by executable name.
type ProcessController struct {
	name    string
	command string
	self    int
	logger  *slog.Logger

	// list is ps.Processes, replaceable in tests
	list func() ([]ps.Process, error)
}

// NewProcessController creates a controller that matches processes named
// name and starts them with `sh -c command`.
func NewProcessController(name, command string) *ProcessController {
	return &ProcessController{
		name:    name,
		command: command,
		self:    os.Getpid(),
		logger:  log.Component("supervisor").With("process", name),
		list:    ps.Processes,
	}
}

// Running scans the process table. Processes that cannot be read are
// skipped, and a permission failure listing the table counts as not running.
func (c *ProcessController) Running() (Handle, bool, error) {
	procs, err := c.list()
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			c.logger.Warn("process table not readable, treating as not running", "error", err)
			return Handle{}, false, nil
		}
		return Handle{}, false, fmt.Errorf("list processes: %w", err)
	}

	for _, p := range procs {
		if p == nil || p.Pid() == c.self {
			continue
		}
		if matchExecutable(p.Executable(), c.name) {
			return Handle{PID: p.Pid(), Name: p.Executable()}, true, nil
		}
	}
	return Handle{}, false, nil
}

// Start runs the start command in a shell. The child is reaped in the
// background so it never lingers as a zombie.
func (c *ProcessController) Start() (Handle, error) {
	cmd := exec.Command("sh", "-c", c.command)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return Handle{}, fmt.Errorf("start %q: %w", c.command, err)
	}

	h := Handle{PID: cmd.Process.Pid, Name: c.name}
	go func() {
		err := cmd.Wait()
		c.logger.Info("supervised process exited", "pid", h.PID, "error", err)
	}()
	return h, nil
}

// Stop sends SIGTERM so the tracker can flush its log before exiting.
func (c *ProcessController) Stop(h Handle) error {
	if h.PID <= 0 {
		return fmt.Errorf("%w: invalid pid %d", ErrNotRunning, h.PID)
	}
	proc, err := os.FindProcess(h.PID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
			return fmt.Errorf("%w: pid %d", ErrNotRunning, h.PID)
		}
		return fmt.Errorf("signal pid %d: %w", h.PID, err)
	}
	return nil
}
