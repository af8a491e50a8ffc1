package utils

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// browserCommand returns the command that opens target on goos
func browserCommand(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "cmd", []string{"/c", "start", target}
	default:
		return "xdg-open", []string{target}
	}
}

// OpenBrowser opens an http(s) URL in the default browser
func OpenBrowser(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", rawURL)
	}
	name, args := browserCommand(runtime.GOOS, rawURL)
	return exec.Command(name, args...).Run()
}
