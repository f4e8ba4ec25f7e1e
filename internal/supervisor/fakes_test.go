package supervisor

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charliek/devcli/internal/config"
	"github.com/charliek/devcli/internal/constants"
	"github.com/charliek/devcli/internal/domain"
	"github.com/charliek/devcli/internal/logs"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

// fakeProcess is a controllable Process backed by in-memory pipes
type fakeProcess struct {
	id     string
	pid    int
	outR   *io.PipeReader
	outW   *io.PipeWriter
	errR   *io.PipeReader
	errW   *io.PipeWriter
	exit   chan error
	once   sync.Once
	exited chan struct{}
}

func newFakeProcess(id string, pid int) *fakeProcess {
	outR, outW := io.Pipe()
	errR, errW := io.Pipe()
	return &fakeProcess{
		id: id, pid: pid,
		outR: outR, outW: outW,
		errR: errR, errW: errW,
		exit:   make(chan error, 1),
		exited: make(chan struct{}),
	}
}

func (p *fakeProcess) PID() int          { return p.pid }
func (p *fakeProcess) Wait() error       { return <-p.exit }
func (p *fakeProcess) Stdout() io.Reader { return p.outR }
func (p *fakeProcess) Stderr() io.Reader { return p.errR }
func (p *fakeProcess) Close() error {
	p.outR.Close()
	p.errR.Close()
	return nil
}

// finish closes the output streams and makes Wait return err
func (p *fakeProcess) finish(err error) {
	p.once.Do(func() {
		p.outW.Close()
		p.errW.Close()
		p.exit <- err
		close(p.exited)
	})
}

func (p *fakeProcess) alive() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

type fakeRunner struct {
	mu      sync.Mutex
	nextPID int
	fail    map[string]error
	procs   []*fakeProcess
	envs    map[string]map[string]string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{nextPID: 1000, fail: map[string]error{}, envs: map[string]map[string]string{}}
}

func (r *fakeRunner) Start(_ context.Context, def domain.ServiceDefinition, env map[string]string) (Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail[def.ID]; err != nil {
		return nil, err
	}
	r.nextPID++
	p := newFakeProcess(def.ID, r.nextPID)
	r.procs = append(r.procs, p)
	r.envs[def.ID] = env
	return p, nil
}

func (r *fakeRunner) byPID(pid int) *fakeProcess {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.procs {
		if p.pid == pid {
			return p
		}
	}
	return nil
}

func (r *fakeRunner) latest(id string) *fakeProcess {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.procs) - 1; i >= 0; i-- {
		if r.procs[i].id == id {
			return r.procs[i]
		}
	}
	return nil
}

func (r *fakeRunner) alive(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, p := range r.procs {
		if p.id == id && p.alive() {
			n++
		}
	}
	return n
}

func (r *fakeRunner) started() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.procs)
}

// fakeTerminator records calls and ends fake processes it is asked to stop
type fakeTerminator struct {
	mu         sync.Mutex
	runner     *fakeRunner
	terminated []int
	groups     []int
	killed     []int
	ignore     bool // leave processes running on terminate
	err        error
}

func (t *fakeTerminator) Terminate(pid int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.terminated = append(t.terminated, pid)
	return t.err
}

func (t *fakeTerminator) TerminateGroup(pid int) error {
	t.mu.Lock()
	t.groups = append(t.groups, pid)
	ignore, err := t.ignore, t.err
	t.mu.Unlock()
	if err != nil {
		return err
	}
	if !ignore {
		if p := t.runner.byPID(pid); p != nil {
			p.finish(errors.New("signal: terminated"))
		}
	}
	return nil
}

func (t *fakeTerminator) Kill(pid int) error {
	t.mu.Lock()
	t.killed = append(t.killed, pid)
	t.mu.Unlock()
	if p := t.runner.byPID(pid); p != nil {
		p.finish(errors.New("signal: killed"))
	}
	return nil
}

func (t *fakeTerminator) calls() (terminated, groups, killed []int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]int(nil), t.terminated...), append([]int(nil), t.groups...), append([]int(nil), t.killed...)
}

type fakeLister struct {
	procs []ProcessInfo
	err   error
	calls int
}

func (l *fakeLister) List(context.Context) ([]ProcessInfo, error) {
	l.calls++
	return l.procs, l.err
}

type fakeContainers struct {
	mu      sync.Mutex
	states  map[string]ContainerState
	stopped []string
	err     error
}

func (c *fakeContainers) Inspect(_ context.Context, name string) (ContainerState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return ContainerState{}, c.err
	}
	state, ok := c.states[name]
	if !ok {
		return ContainerState{}, errors.New("no such container")
	}
	return state, nil
}

func (c *fakeContainers) Stop(_ context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = append(c.stopped, name)
	return nil
}

type harness struct {
	ctl        *Controller
	ws         *config.Workspace
	runner     *fakeRunner
	terminator *fakeTerminator
	lister     *fakeLister
	containers *fakeContainers
	logs       *logs.Manager
	events     <-chan Event
}

// testWorkspace builds a workspace whose services each get a real directory
func testWorkspace(t *testing.T, ids ...string) *config.Workspace {
	t.Helper()
	ws := config.Empty(t.TempDir())
	for _, id := range ids {
		ws.ServiceOrder = append(ws.ServiceOrder, id)
		ws.Services[id] = domain.ServiceDefinition{
			ID:            id,
			Dir:           t.TempDir(),
			Command:       "svc-" + id,
			LogEnabled:    true,
			RetentionDays: constants.DefaultRetentionDays,
		}
	}
	ws.Groups[constants.TargetAll] = append([]string(nil), ids...)
	return ws
}

func newHarness(t *testing.T, ws *config.Workspace, writer logs.Writer) *harness {
	t.Helper()
	runner := newFakeRunner()
	h := &harness{
		ws:         ws,
		runner:     runner,
		terminator: &fakeTerminator{runner: runner},
		lister:     &fakeLister{},
		containers: &fakeContainers{states: map[string]ContainerState{}},
		logs:       logs.NewManager(logs.ManagerConfig{Writer: writer, Logger: log.New(io.Discard)}),
	}
	h.ctl = New(ws, h.logs, ControllerConfig{
		Runner:          h.runner,
		Terminator:      h.terminator,
		Lister:          h.lister,
		Containers:      h.containers,
		ShutdownTimeout: 200 * time.Millisecond,
		DrainTimeout:    200 * time.Millisecond,
		Logger:          log.New(io.Discard),
	})
	h.events = h.ctl.Subscribe()
	t.Cleanup(func() {
		h.ctl.Shutdown(context.Background())
		h.logs.Close()
	})
	return h
}

// waitEvent waits for the next event of typ for service
func waitEvent(t *testing.T, ch <-chan Event, typ EventType, service string) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e := <-ch:
			if e.Type == typ && e.Service == service {
				return e
			}
		case <-timeout:
			require.FailNowf(t, "timed out", "waiting for %s event for %s", typ, service)
			return Event{}
		}
	}
}
