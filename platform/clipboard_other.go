//go:build !windows

package platform

import "github.com/atotto/clipboard"

type portableClipboard struct{}

// NewClipboard returns a clipboard backed by the portable atotto driver
// (pbcopy/xclip/xsel underneath).
func NewClipboard() Clipboard {
	return &portableClipboard{}
}

func (c *portableClipboard) Get() (string, error) {
	return clipboard.ReadAll()
}

func (c *portableClipboard) Set(text string) error {
	return clipboard.WriteAll(text)
}
