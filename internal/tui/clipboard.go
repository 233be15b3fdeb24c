package tui

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
)

var errClipboardUnsupported = errors.New("no clipboard utility found (install xclip, xsel or wl-clipboard)")

// writeClipboard is replaced in tests.
var writeClipboard = func(s string) error {
	if clipboard.Unsupported {
		return errClipboardUnsupported
	}
	return clipboard.WriteAll(s)
}

func copyToClipboard(s string) error {
	return writeClipboard(strings.ReplaceAll(s, "\r\n", "\n"))
}
