package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// fakeHost is an in-memory host shared by the package, file, and service
// backend interfaces, so executor tests can verify real state transitions.
type fakeHost struct {
	mu sync.Mutex

	packages map[string]struct{}
	listErr  error

	links    map[string]string
	occupied map[string]struct{}

	services map[string]*fakeService

	// failures maps "op:name" to an injected error.
	failures map[string]error

	// calls records every mutating backend call in order.
	calls []string
}

type fakeService struct {
	enabled Flag
	running Flag
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		packages: make(map[string]struct{}),
		links:    make(map[string]string),
		occupied: make(map[string]struct{}),
		services: make(map[string]*fakeService),
		failures: make(map[string]error),
	}
}

func (h *fakeHost) backends() Backends {
	return Backends{Packages: h, Files: h, Services: h}
}

func (h *fakeHost) failOn(op Op, name string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures[string(op)+":"+name] = err
}

func (h *fakeHost) callLog() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.calls...)
}

// record logs a mutating call and returns any injected failure.
func (h *fakeHost) record(op Op, name string) error {
	h.calls = append(h.calls, fmt.Sprintf("%s %s", op, name))
	return h.failures[string(op)+":"+name]
}

func (h *fakeHost) ListInstalled(_ context.Context) (map[string]struct{}, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listErr != nil {
		return nil, h.listErr
	}
	installed := make(map[string]struct{}, len(h.packages))
	for name := range h.packages {
		installed[name] = struct{}{}
	}
	return installed, nil
}

func (h *fakeHost) Install(_ context.Context, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record(OpInstall, name); err != nil {
		return err
	}
	h.packages[name] = struct{}{}
	return nil
}

func (h *fakeHost) Remove(_ context.Context, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record(OpRemove, name); err != nil {
		return err
	}
	delete(h.packages, name)
	return nil
}

func (h *fakeHost) ResolveLink(_ context.Context, path string) (LinkProbe, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.failures["resolve:"+path]; err != nil {
		return LinkProbe{}, err
	}
	if _, ok := h.occupied[path]; ok {
		return LinkProbe{Exists: true, Occupied: true}, nil
	}
	if source, ok := h.links[path]; ok {
		return LinkProbe{Exists: true, Source: source}, nil
	}
	return LinkProbe{}, nil
}

func (h *fakeHost) CreateLink(_ context.Context, path, source string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record(OpCreateLink, path); err != nil {
		return err
	}
	if _, ok := h.occupied[path]; ok {
		return NewError(ErrLinkConflict,
			fmt.Sprintf("path %s is occupied by a non-symlink", path), nil)
	}
	h.links[path] = source
	return nil
}

func (h *fakeHost) RemoveLink(_ context.Context, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record(OpRemoveLink, path); err != nil {
		return err
	}
	delete(h.links, path)
	return nil
}

func (h *fakeHost) Query(_ context.Context, unit string) (ServiceStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.failures["query:"+unit]; err != nil {
		return ServiceStatus{}, err
	}
	svc, ok := h.services[unit]
	if !ok {
		return ServiceStatus{Exists: false, Enabled: FlagOff, Running: FlagOff}, nil
	}
	return ServiceStatus{Exists: true, Enabled: svc.enabled, Running: svc.running}, nil
}

func (h *fakeHost) service(unit string) *fakeService {
	svc, ok := h.services[unit]
	if !ok {
		svc = &fakeService{enabled: FlagOff, running: FlagOff}
		h.services[unit] = svc
	}
	return svc
}

func (h *fakeHost) Enable(_ context.Context, unit string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record(OpEnableService, unit); err != nil {
		return err
	}
	h.service(unit).enabled = FlagOn
	return nil
}

func (h *fakeHost) Disable(_ context.Context, unit string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record(OpDisableService, unit); err != nil {
		return err
	}
	h.service(unit).enabled = FlagOff
	return nil
}

func (h *fakeHost) Start(_ context.Context, unit string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record(OpStartService, unit); err != nil {
		return err
	}
	h.service(unit).running = FlagOn
	return nil
}

func (h *fakeHost) Stop(_ context.Context, unit string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record(OpStopService, unit); err != nil {
		return err
	}
	h.service(unit).running = FlagOff
	return nil
}

// recordingRecorder captures RecordRun calls for reconciler tests.
type recordingRecorder struct {
	plans   []*Plan
	reports []*Report
	err     error
}

func (r *recordingRecorder) RecordRun(_ context.Context, plan *Plan, report *Report) error {
	r.plans = append(r.plans, plan)
	r.reports = append(r.reports, report)
	return r.err
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
