package opener

import (
	"fmt"
	"io"
	"net/url"

	"github.com/pkg/browser"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/ports"
)

// Browser opens URLs with the operating system's default handler
type Browser struct{}

func init() {
	// keep the launched handler's chatter off our stdout
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

func (Browser) OpenURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("invalid URL %q: missing scheme", rawURL)
	}
	return browser.OpenURL(u.String())
}

// Func adapts a plain function to ports.URLOpener
type Func func(url string) error

func (f Func) OpenURL(url string) error { return f(url) }

var (
	_ ports.URLOpener = Browser{}
	_ ports.URLOpener = Func(nil)
)
