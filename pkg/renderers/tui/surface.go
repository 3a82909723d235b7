package tui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/goliatone/go-formdispatch/pkg/render"
)

// Surface prints banners and region content to a terminal stream. Terminal
// output cannot be retracted, so hiding and clearing only update the state
// reported by Banner and Region.
type Surface struct {
	mu      sync.Mutex
	out     io.Writer
	theme   Theme
	banner  *render.Banner
	regions map[string]render.Result
}

// NewSurface writes to out using theme.
func NewSurface(out io.Writer, theme Theme) *Surface {
	return &Surface{out: out, theme: theme, regions: make(map[string]render.Result)}
}

var _ render.Surface = (*Surface)(nil)

func (s *Surface) ShowBanner(banner render.Banner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = &banner
	fmt.Fprintf(s.out, "%s %s\n", s.bannerPrefix(banner.Kind), banner.Text)
}

func (s *Surface) HideBanner() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = nil
}

func (s *Surface) ShowResult(region string, result render.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regions[region] = result

	prefix := s.theme.SuccessPrefix
	switch result.Kind {
	case render.ResultLoading:
		prefix = s.theme.LoadingPrefix
	case render.ResultError:
		prefix = s.theme.ErrorPrefix
	}
	fmt.Fprintf(s.out, "── %s %s\n", region, prefix)
	fmt.Fprintln(s.out, strings.TrimRight(result.Text, "\n"))
}

func (s *Surface) ClearResult(region string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regions, region)
}

// Banner returns the banner currently considered visible.
func (s *Surface) Banner() (render.Banner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.banner == nil {
		return render.Banner{}, false
	}
	return *s.banner, true
}

// Region returns the content last shown in region, if not cleared.
func (s *Surface) Region(region string) (render.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.regions[region]
	return result, ok
}

func (s *Surface) bannerPrefix(kind render.BannerKind) string {
	switch kind {
	case render.BannerSuccess:
		return s.theme.SuccessPrefix
	case render.BannerError:
		return s.theme.ErrorPrefix
	default:
		return s.theme.InfoPrefix
	}
}
