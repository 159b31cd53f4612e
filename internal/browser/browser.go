package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"hearsay/pkg/logging"
)

// SearchURL builds a web search URL for the given query, escaping it for use
// in a query string.
func SearchURL(query string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}

// Open launches the platform's default browser on rawURL and returns without
// waiting for it. Fire-and-forget: a browser that fails after starting is
// the user's problem, not the assistant's.
func Open(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("unable to launch browser: %w", err)
	}
	logging.Debug("opened browser on %s", rawURL)
	return nil
}
