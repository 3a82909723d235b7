package web

import (
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formdispatch/pkg/render"
)

var (
	bannerPolicyOnce sync.Once
	bannerPolicy     *bluemonday.Policy
)

// sanitizeBanner keeps inline emphasis from message templates and strips
// every other element. The result is safe to place as HTML.
func sanitizeBanner(raw string) string {
	bannerPolicyOnce.Do(func() {
		bannerPolicy = bluemonday.NewPolicy()
		bannerPolicy.AllowElements("b", "strong", "em", "i", "code")
	})
	return bannerPolicy.Sanitize(raw)
}

// escapeResult renders region content as literal text.
func escapeResult(raw string) string {
	return html.EscapeString(trimText(raw))
}

// Publisher receives surface events.
type Publisher interface {
	Broadcast(event Event)
}

// RegionView is the sanitized content of a region.
type RegionView struct {
	Region string `json:"region"`
	Kind   string `json:"kind"`
	Text   string `json:"text"`
}

// Surface keeps the page state and pushes each change to a publisher.
type Surface struct {
	mu        sync.Mutex
	publisher Publisher
	banner    *Event
	regions   map[string]RegionView
}

var _ render.Surface = (*Surface)(nil)

// NewSurface creates a surface publishing to p. p may be nil.
func NewSurface(p Publisher) *Surface {
	return &Surface{publisher: p, regions: make(map[string]RegionView)}
}

// SetPublisher swaps the event sink.
func (s *Surface) SetPublisher(p Publisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

func (s *Surface) ShowBanner(banner render.Banner) {
	event := Event{Type: EventBanner, Kind: string(banner.Kind), Text: sanitizeBanner(banner.Text)}
	s.mu.Lock()
	s.banner = &event
	s.mu.Unlock()
	s.publish(event)
}

func (s *Surface) HideBanner() {
	s.mu.Lock()
	s.banner = nil
	s.mu.Unlock()
	s.publish(Event{Type: EventBannerHide})
}

func (s *Surface) ShowResult(region string, result render.Result) {
	view := RegionView{Region: region, Kind: string(result.Kind), Text: escapeResult(result.Text)}
	s.mu.Lock()
	s.regions[region] = view
	s.mu.Unlock()
	s.publish(Event{Type: EventResult, Region: region, Kind: view.Kind, Text: view.Text})
}

func (s *Surface) ClearResult(region string) {
	s.mu.Lock()
	delete(s.regions, region)
	s.mu.Unlock()
	s.publish(Event{Type: EventClear, Region: region})
}

// Region returns the current view of region.
func (s *Surface) Region(region string) (RegionView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, ok := s.regions[region]
	return view, ok
}

// Banner returns the visible banner event.
func (s *Surface) Banner() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.banner == nil {
		return Event{}, false
	}
	return *s.banner, true
}

// Snapshot replays the current state as events, banner last.
func (s *Surface) Snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.regions))
	for name := range s.regions {
		names = append(names, name)
	}
	sort.Strings(names)

	events := make([]Event, 0, len(names)+1)
	for _, name := range names {
		view := s.regions[name]
		events = append(events, Event{Type: EventResult, Region: name, Kind: view.Kind, Text: view.Text})
	}
	if s.banner != nil {
		events = append(events, *s.banner)
	}
	return events
}

func (s *Surface) publish(event Event) {
	s.mu.Lock()
	p := s.publisher
	s.mu.Unlock()
	if p != nil {
		p.Broadcast(event)
	}
}

func trimText(text string) string {
	return strings.TrimRight(text, "\n")
}
