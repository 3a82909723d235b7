package render

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdispatch/pkg/outcome"
)

// DefaultBannerTTL is how long a banner stays visible.
const DefaultBannerTTL = 5 * time.Second

// RegionState tracks a result region through one submission cycle.
type RegionState string

const (
	RegionEmpty   RegionState = "empty"
	RegionLoading RegionState = "loading"
	RegionSuccess RegionState = "success"
	RegionError   RegionState = "error"
)

// Timer is the subset of *time.Timer the presenter relies on.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn after d. Tests replace it with a manual clock.
type AfterFunc func(d time.Duration, fn func()) Timer

func realAfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Ticket identifies one submission against a region. Only the most recently
// issued ticket for a region may render into it.
type Ticket struct {
	Region string
	Seq    uint64
}

type regionEntry struct {
	state RegionState
	seq   uint64
	// shown is true while the region displays content.
	shown bool
}

// Presenter drives a Surface: it owns the region state machine, replaces
// banners and hides them after the TTL, and drops outcomes from superseded
// submissions.
type Presenter struct {
	surface   Surface
	ttl       time.Duration
	afterFunc AfterFunc
	logger    *zap.Logger

	mu          sync.Mutex
	regions     map[string]*regionEntry
	bannerGen   uint64
	bannerTimer Timer
	banner      *Banner
}

// PresenterOption configures a Presenter.
type PresenterOption func(*Presenter)

// WithBannerTTL overrides the banner lifetime.
func WithBannerTTL(ttl time.Duration) PresenterOption {
	return func(p *Presenter) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithAfterFunc swaps the timer factory.
func WithAfterFunc(fn AfterFunc) PresenterOption {
	return func(p *Presenter) {
		if fn != nil {
			p.afterFunc = fn
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) PresenterOption {
	return func(p *Presenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPresenter wraps surface.
func NewPresenter(surface Surface, options ...PresenterOption) *Presenter {
	p := &Presenter{
		surface:   surface,
		ttl:       DefaultBannerTTL,
		afterFunc: realAfterFunc,
		logger:    zap.NewNop(),
		regions:   make(map[string]*regionEntry),
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Begin starts a submission: the region is cleared, moves to Loading and
// shows loadingText when set. The returned ticket supersedes older ones.
func (p *Presenter) Begin(region, loadingText string) Ticket {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := p.entry(region)
	entry.seq++
	p.surface.ClearResult(region)
	entry.state = RegionLoading
	entry.shown = loadingText != ""
	if entry.shown {
		p.surface.ShowResult(region, Result{Kind: ResultLoading, Text: loadingText})
	}
	return Ticket{Region: region, Seq: entry.seq}
}

// Complete renders the outcome for ticket. It returns false, leaving the
// region untouched, when a newer submission owns the region.
func (p *Presenter) Complete(ticket Ticket, out outcome.Outcome, bannerText string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := p.entry(ticket.Region)
	if ticket.Seq != entry.seq || entry.state != RegionLoading {
		p.logger.Debug("dropping superseded outcome",
			zap.String("region", ticket.Region),
			zap.Uint64("ticket", ticket.Seq),
			zap.Uint64("current", entry.seq),
		)
		return false
	}

	p.surface.ClearResult(ticket.Region)
	entry.shown = true
	if out.OK() {
		entry.state = RegionSuccess
		p.surface.ShowResult(ticket.Region, Result{Kind: ResultSuccess, Text: out.Detail()})
		p.showBannerLocked(Banner{Kind: BannerSuccess, Text: bannerText})
	} else {
		entry.state = RegionError
		p.surface.ShowResult(ticket.Region, Result{Kind: ResultError, Text: out.Detail()})
		p.showBannerLocked(Banner{Kind: BannerError, Text: bannerText})
	}
	return true
}

// Toggle hides a region that is showing something, a result or loading
// text, and reports whether it did. Hiding a loading region abandons the
// in-flight submission.
func (p *Presenter) Toggle(region string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry := p.entry(region)
	if !entry.shown {
		return false
	}
	entry.seq++
	entry.state = RegionEmpty
	entry.shown = false
	p.surface.ClearResult(region)
	return true
}

// Notify shows a banner without touching any region.
func (p *Presenter) Notify(kind BannerKind, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.showBannerLocked(Banner{Kind: kind, Text: text})
}

// State reports the region's current state.
func (p *Presenter) State(region string) RegionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	if entry, ok := p.regions[region]; ok {
		return entry.state
	}
	return RegionEmpty
}

// CurrentBanner returns the visible banner, if any.
func (p *Presenter) CurrentBanner() (Banner, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.banner == nil {
		return Banner{}, false
	}
	return *p.banner, true
}

func (p *Presenter) entry(region string) *regionEntry {
	entry, ok := p.regions[region]
	if !ok {
		entry = &regionEntry{state: RegionEmpty}
		p.regions[region] = entry
	}
	return entry
}

func (p *Presenter) showBannerLocked(banner Banner) {
	if p.bannerTimer != nil {
		p.bannerTimer.Stop()
	}
	p.bannerGen++
	gen := p.bannerGen
	p.banner = &banner
	p.surface.ShowBanner(banner)
	p.bannerTimer = p.afterFunc(p.ttl, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.bannerGen {
			return
		}
		p.banner = nil
		p.bannerTimer = nil
		p.surface.HideBanner()
	})
}
