package valueobjects

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"recipebook/domain/config"
	pkgerrors "recipebook/pkg/errors"
)

// SourceType discriminates the Source union
type SourceType string

const (
	SourceOnline  SourceType = "online"
	SourceOffline SourceType = "offline"
)

// Source tells where a recipe comes from. An online source carries a URL,
// an offline source carries a book title and page. Never both.
type Source struct {
	kind  SourceType
	url   string
	title string
	page  int
}

// NewOnlineSource creates a source pointing at a web page
func NewOnlineSource(rawURL string) (Source, error) {
	return NewOnlineSourceWithConfig(rawURL, config.DefaultDomainConfig())
}

// NewOnlineSourceWithConfig creates an online source with explicit limits
func NewOnlineSourceWithConfig(rawURL string, cfg *config.DomainConfig) (Source, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Source{}, pkgerrors.NewValidationError("source url cannot be empty")
	}
	if len(rawURL) > cfg.MaxSourceURLLength {
		return Source{}, pkgerrors.NewValidationErrorf("source url exceeds maximum length of %d characters", cfg.MaxSourceURLLength)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Source{}, pkgerrors.NewValidationErrorf("source url is malformed: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Source{}, pkgerrors.NewValidationError("source url must use http or https")
	}
	if u.Host == "" {
		return Source{}, pkgerrors.NewValidationError("source url must be absolute")
	}

	return Source{kind: SourceOnline, url: rawURL}, nil
}

// NewOfflineSource creates a source pointing at a page of a book
func NewOfflineSource(title string, page int) (Source, error) {
	return NewOfflineSourceWithConfig(title, page, config.DefaultDomainConfig())
}

// NewOfflineSourceWithConfig creates an offline source with explicit limits
func NewOfflineSourceWithConfig(title string, page int, cfg *config.DomainConfig) (Source, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return Source{}, pkgerrors.NewValidationError("source title cannot be empty")
	}
	if utf8.RuneCountInString(title) > cfg.MaxSourceTitleLength {
		return Source{}, pkgerrors.NewValidationErrorf("source title exceeds maximum length of %d characters", cfg.MaxSourceTitleLength)
	}
	if page < 1 {
		return Source{}, pkgerrors.NewValidationError("source page must be at least 1")
	}

	return Source{kind: SourceOffline, title: title, page: page}, nil
}

// NewSource builds either variant from its raw parts, rejecting mixed input
func NewSource(kind SourceType, rawURL, title string, page int, cfg *config.DomainConfig) (Source, error) {
	switch kind {
	case SourceOnline:
		if strings.TrimSpace(title) != "" || page != 0 {
			return Source{}, pkgerrors.NewValidationError("online source cannot have a title or page")
		}
		return NewOnlineSourceWithConfig(rawURL, cfg)
	case SourceOffline:
		if strings.TrimSpace(rawURL) != "" {
			return Source{}, pkgerrors.NewValidationError("offline source cannot have a url")
		}
		return NewOfflineSourceWithConfig(title, page, cfg)
	default:
		return Source{}, pkgerrors.NewValidationErrorf("invalid source type %q: must be online or offline", kind)
	}
}

// Type returns the variant of the source
func (s Source) Type() SourceType {
	return s.kind
}

// IsOnline reports whether the source is a URL
func (s Source) IsOnline() bool {
	return s.kind == SourceOnline
}

// IsZero reports whether the source was never set
func (s Source) IsZero() bool {
	return s.kind == ""
}

// URL returns the address of an online source, empty for offline sources
func (s Source) URL() string {
	return s.url
}

// Title returns the book title of an offline source, empty for online sources
func (s Source) Title() string {
	return s.title
}

// Page returns the book page of an offline source, 0 for online sources
func (s Source) Page() int {
	return s.page
}

// Equals checks if two sources are equal
func (s Source) Equals(other Source) bool {
	return s == other
}

// String renders the source for display
func (s Source) String() string {
	switch s.kind {
	case SourceOnline:
		return s.url
	case SourceOffline:
		return fmt.Sprintf("%s, p. %d", s.title, s.page)
	default:
		return ""
	}
}
