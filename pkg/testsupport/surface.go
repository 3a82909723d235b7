package testsupport

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-formdispatch/pkg/render"
)

// RecordingSurface records every surface call as a compact string such as
// "show placementResult success {...}" and tracks the visible state.
type RecordingSurface struct {
	mu      sync.Mutex
	calls   []string
	banner  *render.Banner
	regions map[string]render.Result
}

// NewRecordingSurface returns an empty recorder.
func NewRecordingSurface() *RecordingSurface {
	return &RecordingSurface{regions: make(map[string]render.Result)}
}

func (s *RecordingSurface) ShowBanner(banner render.Banner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = &banner
	s.calls = append(s.calls, fmt.Sprintf("banner %s %s", banner.Kind, banner.Text))
}

func (s *RecordingSurface) HideBanner() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = nil
	s.calls = append(s.calls, "hide-banner")
}

func (s *RecordingSurface) ShowResult(region string, result render.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions[region] = result
	s.calls = append(s.calls, fmt.Sprintf("show %s %s %s", region, result.Kind, result.Text))
}

func (s *RecordingSurface) ClearResult(region string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regions, region)
	s.calls = append(s.calls, "clear "+region)
}

// Calls returns a copy of the recorded calls.
func (s *RecordingSurface) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Reset forgets recorded calls but keeps the visible state.
func (s *RecordingSurface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// Banner returns the visible banner.
func (s *RecordingSurface) Banner() (render.Banner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.banner == nil {
		return render.Banner{}, false
	}
	return *s.banner, true
}

// Region returns the visible content of region.
func (s *RecordingSurface) Region(region string) (render.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.regions[region]
	return r, ok
}
