package opener

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrowser_RejectsBadURLs(t *testing.T) {
	var b Browser

	assert.Error(t, b.OpenURL("no-scheme.test/path"))
	assert.Error(t, b.OpenURL("http://[::1"))
}

func TestFunc(t *testing.T) {
	var got string
	f := Func(func(url string) error {
		got = url
		return errors.New("boom")
	})

	err := f.OpenURL("https://a.test")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, "https://a.test", got)
}
