package supervisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charliek/devcli/internal/config"
	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/logs"
	"github.com/charmbracelet/log"
)

// ControllerConfig holds collaborators and settings for the controller.
// Nil collaborators are replaced by the platform implementations.
type ControllerConfig struct {
	Runner     ProcessRunner
	Terminator Terminator
	Lister     ProcessLister
	Containers ContainerRuntime

	ShutdownTimeout      time.Duration
	DrainTimeout         time.Duration
	StopContainersOnExit bool

	Logger *log.Logger
	Now    func() time.Time
}

// DefaultControllerConfig returns default configuration
func DefaultControllerConfig() ControllerConfig {
	return ControllerConfig{
		ShutdownTimeout: constants.DefaultShutdownTimeout,
		DrainTimeout:    constants.OutputDrainTimeout,
	}
}

// Controller starts, stops and adopts the services of one workspace.
// Operations that change the running set are serialized.
type Controller struct {
	opMu sync.Mutex

	workspace  *config.Workspace
	logs       *logs.Manager
	registry   *Registry
	runner     ProcessRunner
	terminator Terminator
	lister     ProcessLister
	containers ContainerRuntime
	config     ControllerConfig
	logger     *log.Logger
	now        func() time.Time
	selfPID    int

	// monitors tracks exit watchers of managed processes
	monitors sync.WaitGroup

	eventMu   sync.RWMutex
	eventSubs []chan Event
}

// New creates a controller for ws, dispatching captured output to logManager
func New(ws *config.Workspace, logManager *logs.Manager, cfg ControllerConfig) *Controller {
	defaults := DefaultControllerConfig()
	if cfg.Runner == nil {
		cfg.Runner = NewExecRunner()
	}
	if cfg.Terminator == nil {
		cfg.Terminator = NewTerminator()
	}
	if cfg.Lister == nil {
		cfg.Lister = NewProcessLister()
	}
	if cfg.Containers == nil {
		cfg.Containers = NewCLIRuntime("")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaults.DrainTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Controller{
		workspace:  ws,
		logs:       logManager,
		registry:   NewRegistry(),
		runner:     cfg.Runner,
		terminator: cfg.Terminator,
		lister:     cfg.Lister,
		containers: cfg.Containers,
		config:     cfg,
		logger:     cfg.Logger,
		now:        cfg.Now,
		selfPID:    os.Getpid(),
	}
}

// Workspace returns the workspace this controller operates on
func (c *Controller) Workspace() *config.Workspace {
	return c.workspace
}

// Running returns a snapshot of every running service
func (c *Controller) Running() map[string]RunningService {
	return c.registry.Snapshot()
}

// Get returns the running entry for id, or nil
func (c *Controller) Get(id string) RunningService {
	return c.registry.Get(id)
}

// resolve expands target, producing a failed result for unknown targets
func (c *Controller) resolve(action, target string) ([]string, Result, bool) {
	result := Result{Action: action, Target: target}
	ids, ok := c.workspace.Resolve(target)
	if !ok {
		result.Outcomes = append(result.Outcomes, Outcome{
			Service: target,
			Status:  OutcomeFailed,
			Err:     domain.ErrServiceNotFound,
			Message: fmt.Sprintf("%s: %v", target, domain.ErrServiceNotFound),
		})
	}
	return ids, result, ok
}

// Start starts a service or every member of a group, in order
func (c *Controller) Start(ctx context.Context, target string) Result {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	ids, result, ok := c.resolve("start", target)
	if !ok {
		return result
	}
	for _, id := range ids {
		result.Outcomes = append(result.Outcomes, c.startOne(ctx, id))
	}
	return result
}

func (c *Controller) startOne(ctx context.Context, id string) Outcome {
	def, ok := c.workspace.Service(id)
	if !ok {
		return failed(id, domain.ErrServiceNotFound)
	}

	switch rs := c.registry.Get(id).(type) {
	case *Managed:
		return Outcome{
			Service: id,
			Status:  OutcomeFailed,
			PID:     rs.PID(),
			Err:     domain.ErrServiceAlreadyRunning,
			Message: fmt.Sprintf("%s %v (pid %d)", id, domain.ErrServiceAlreadyRunning, rs.PID()),
		}
	case External:
		// Take ownership of a service we were only observing
		c.logger.Debug("replacing adopted service with a managed start", "service", id, "pid", rs.PID())
		c.registry.RemoveIf(id, rs)
	}

	if def.Command == "" {
		return failed(id, errors.New("no command configured"))
	}
	if info, err := os.Stat(def.Dir); err != nil || !info.IsDir() {
		return failed(id, fmt.Errorf("%w: %s", domain.ErrWorkingDirMissing, def.Dir))
	}

	env := config.MergeEnv(constants.ColorForceEnv, def.Env)
	proc, err := c.runner.Start(ctx, def, env)
	if err != nil {
		return failed(id, err)
	}

	m := newManaged(id, proc, c.now())
	c.registry.Put(m)
	c.capture(m, def)

	c.emit(Event{
		Type:      EventStarted,
		Service:   id,
		PID:       m.PID(),
		Message:   fmt.Sprintf("started %s (pid %d)", id, m.PID()),
		Timestamp: c.now(),
	})

	return Outcome{
		Service: id,
		Status:  OutcomeOK,
		PID:     m.PID(),
		Message: fmt.Sprintf("started %s (pid %d)", id, m.PID()),
		Process: m,
	}
}

func failed(id string, err error) Outcome {
	return Outcome{
		Service: id,
		Status:  OutcomeFailed,
		Err:     err,
		Message: fmt.Sprintf("%s: failed to start: %v", id, err),
	}
}

// Stop stops a service or every member of a group. A single id that is not
// running fails; group members that are not running are skipped, and
// adopted services are only stopped when they are container-backed.
func (c *Controller) Stop(ctx context.Context, target string) Result {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	ids, result, ok := c.resolve("stop", target)
	if !ok {
		return result
	}
	explicit := !c.workspace.IsGroup(target)
	for _, id := range ids {
		result.Outcomes = append(result.Outcomes, c.stopOne(ctx, id, explicit))
	}
	return result
}

func (c *Controller) stopOne(ctx context.Context, id string, explicit bool) Outcome {
	def, _ := c.workspace.Service(id)

	switch rs := c.registry.Get(id).(type) {
	case *Managed:
		c.registry.RemoveIf(id, rs)
		if err := c.terminator.TerminateGroup(rs.PID()); err != nil {
			return Outcome{
				Service: id,
				Status:  OutcomeFailed,
				PID:     rs.PID(),
				Err:     err,
				Message: fmt.Sprintf("%s: failed to stop pid %d: %v", id, rs.PID(), err),
			}
		}
		c.emitStopped(id, rs.PID())
		return Outcome{Service: id, Status: OutcomeOK, PID: rs.PID(), Message: fmt.Sprintf("stopped %s (pid %d)", id, rs.PID())}

	case External:
		var err error
		switch {
		case def.IsContainerBacked():
			err = c.containers.Stop(ctx, def.Container)
		case explicit:
			err = c.terminator.Terminate(rs.PID())
		default:
			return Outcome{
				Service: id,
				Status:  OutcomeSkipped,
				PID:     rs.PID(),
				Message: fmt.Sprintf("%s left running (pid %d, not started here)", id, rs.PID()),
			}
		}
		if err != nil {
			return Outcome{
				Service: id,
				Status:  OutcomeFailed,
				PID:     rs.PID(),
				Err:     err,
				Message: fmt.Sprintf("%s: failed to stop external pid %d: %v", id, rs.PID(), err),
			}
		}
		c.registry.RemoveIf(id, rs)
		c.emitStopped(id, rs.PID())
		return Outcome{Service: id, Status: OutcomeOK, PID: rs.PID(), Message: fmt.Sprintf("stopped %s (pid %d)", id, rs.PID())}

	default:
		if !explicit {
			return Outcome{Service: id, Status: OutcomeSkipped}
		}
		return Outcome{
			Service: id,
			Status:  OutcomeFailed,
			Err:     domain.ErrServiceNotRunning,
			Message: fmt.Sprintf("%s %v", id, domain.ErrServiceNotRunning),
		}
	}
}

func (c *Controller) emitStopped(id string, pid int) {
	c.emit(Event{
		Type:      EventStopped,
		Service:   id,
		PID:       pid,
		Requested: true,
		Message:   fmt.Sprintf("stopped %s (pid %d)", id, pid),
		Timestamp: c.now(),
	})
}

// Restart stops the target, waits for managed processes to exit, then
// starts it again. Services that were not running are simply started.
func (c *Controller) Restart(ctx context.Context, target string) Result {
	ids, result, ok := c.resolve("restart", target)
	if !ok {
		return result
	}

	var waiting []*Managed
	for _, rs := range c.registry.Snapshot() {
		if m, ok := rs.(*Managed); ok && contains(ids, m.id) {
			waiting = append(waiting, m)
		}
	}

	explicit := !c.workspace.IsGroup(target)
	c.opMu.Lock()
	for _, id := range ids {
		if c.registry.Get(id) == nil {
			continue
		}
		if o := c.stopOne(ctx, id, explicit); o.Status == OutcomeFailed {
			result.Outcomes = append(result.Outcomes, o)
		}
	}
	c.opMu.Unlock()

	c.awaitExit(ctx, waiting)

	started := c.Start(ctx, target)
	result.Outcomes = append(result.Outcomes, started.Outcomes...)
	return result
}

// awaitExit waits up to the shutdown timeout for procs to exit, then kills
// whatever is left.
func (c *Controller) awaitExit(ctx context.Context, procs []*Managed) {
	if len(procs) == 0 {
		return
	}
	waitCtx, cancel := context.WithTimeout(ctx, c.config.ShutdownTimeout)
	defer cancel()

	var survivors []*Managed
	for _, m := range procs {
		select {
		case <-m.Done():
		case <-waitCtx.Done():
			survivors = append(survivors, m)
		}
	}

	for _, m := range survivors {
		c.logger.Warn("graceful shutdown timed out, killing", "service", m.id, "pid", m.pid)
		if err := c.terminator.Kill(m.pid); err != nil {
			c.logger.Debug("kill failed", "service", m.id, "pid", m.pid, "err", err)
		}
	}
	for _, m := range survivors {
		select {
		case <-m.Done():
		case <-time.After(time.Second):
		}
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Hydrate adopts already-running instances of services that have no entry,
// returning the adopted ids. Discovery is advisory: failures mean no match.
func (c *Controller) Hydrate(ctx context.Context) []string {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, constants.DiscoveryTimeout)
	defer cancel()

	var (
		procs  []ProcessInfo
		listed bool
	)
	var adopted []string
	for _, def := range c.workspace.Definitions() {
		if c.registry.Get(def.ID) != nil {
			continue
		}

		var ext External
		if def.IsContainerBacked() {
			state, err := c.containers.Inspect(ctx, def.Container)
			if err != nil {
				c.logger.Debug("container inspect failed", "service", def.ID, "container", def.Container, "err", err)
				continue
			}
			if !state.Running || state.PID <= 0 {
				continue
			}
			ext = External{ID: def.ID, ProcessID: state.PID, Source: SourceContainer, Container: def.Container}
		} else {
			if !listed {
				listed = true
				var err error
				if procs, err = c.lister.List(ctx); err != nil {
					c.logger.Debug("process listing failed", "err", err)
				}
			}
			match, ok := MatchByWorkingDir(procs, def.Dir, c.selfPID)
			if !ok {
				continue
			}
			ext = External{ID: def.ID, ProcessID: match.PID, Source: SourceProcessTable, Cmdline: match.Cmdline}
		}

		if c.registry.PutIfAbsent(ext) {
			adopted = append(adopted, def.ID)
			c.emit(Event{
				Type:      EventAdopted,
				Service:   def.ID,
				PID:       ext.ProcessID,
				Message:   fmt.Sprintf("found %s already running (pid %d)", def.ID, ext.ProcessID),
				Timestamp: c.now(),
			})
		}
	}
	return adopted
}

// Shutdown stops every managed service and waits for them to exit,
// escalating to a kill after the shutdown timeout. Adopted services are
// left alone unless they are container-backed and the workspace asks for
// containers to be stopped on exit.
func (c *Controller) Shutdown(ctx context.Context) {
	c.opMu.Lock()
	var managed []*Managed
	for id, rs := range c.registry.Snapshot() {
		switch rs := rs.(type) {
		case *Managed:
			c.registry.RemoveIf(id, rs)
			if err := c.terminator.TerminateGroup(rs.PID()); err != nil {
				c.logger.Debug("terminate failed", "service", id, "pid", rs.PID(), "err", err)
			}
			managed = append(managed, rs)
		case External:
			if !c.config.StopContainersOnExit || rs.Container == "" {
				continue
			}
			if err := c.containers.Stop(ctx, rs.Container); err != nil {
				c.logger.Error("failed to stop container", "service", id, "container", rs.Container, "err", err)
				continue
			}
			c.registry.RemoveIf(id, rs)
		}
	}
	c.opMu.Unlock()

	c.awaitExit(ctx, managed)
	if n := c.registry.Len(); n > 0 {
		c.logger.Debug("adopted services left running", "count", n)
	}

	// Let exit watchers finish draining output before the caller exits
	drained := make(chan struct{})
	go func() {
		c.monitors.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(c.config.DrainTimeout + time.Second):
		c.logger.Warn("timed out waiting for output capture to finish")
	}
}

// Subscribe creates a channel for receiving controller events
func (c *Controller) Subscribe() <-chan Event {
	ch := make(chan Event, constants.DefaultEventBuffer)

	c.eventMu.Lock()
	c.eventSubs = append(c.eventSubs, ch)
	c.eventMu.Unlock()

	return ch
}

// emit sends an event to all subscribers
func (c *Controller) emit(event Event) {
	c.eventMu.RLock()
	defer c.eventMu.RUnlock()

	for _, ch := range c.eventSubs {
		select {
		case ch <- event:
		default:
			c.logger.Debug("event subscriber full, dropping event", "type", event.Type, "service", event.Service)
		}
	}
}
