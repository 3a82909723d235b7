package render

// BannerKind classifies the transient status banner.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
	BannerInfo    BannerKind = "info"
)

// Banner is the transient status message shown after an action.
type Banner struct {
	Kind BannerKind
	Text string
}

// ResultKind classifies content written into a result region.
type ResultKind string

const (
	ResultLoading ResultKind = "loading"
	ResultSuccess ResultKind = "success"
	ResultError   ResultKind = "error"
)

// Result is the persistent content of a result region.
type Result struct {
	Kind ResultKind
	Text string
}

// Surface isolates the concrete UI toolkit. Implementations write to a
// terminal, a web page, or a test recorder.
//
// ClearResult must reset visibility and any error styling of the region;
// ShowResult replaces the region's content, it never appends.
type Surface interface {
	ShowBanner(banner Banner)
	HideBanner()
	ShowResult(region string, result Result)
	ClearResult(region string)
}
