// Package browser opens bookmarks in the configured web browser.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vannrr/fmark/internal/log"
)

// ErrNoBrowser is returned when no browser program is configured.
var ErrNoBrowser = errors.New("no browser configured")

// Opener opens a URL.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// Browser starts a browser program with the URL as its only argument and
// does not wait for it to exit.
type Browser struct {
	program string
	start   func(cmd *exec.Cmd) error
}

// New returns a Browser running program. The program may carry extra
// arguments, e.g. "firefox --new-window".
func New(program string) *Browser {
	return &Browser{
		program: strings.TrimSpace(program),
		start:   startDetached,
	}
}

// Open implements Opener. A cancelled ctx stops the launch; once started the
// browser outlives ctx.
func (b *Browser) Open(ctx context.Context, url string) error {
	fields := strings.Fields(b.program)
	if len(fields) == 0 {
		return ErrNoBrowser
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	args := append(fields[1:], url)
	cmd := exec.Command(fields[0], args...) //nolint:gosec // G204: browser comes from the user's config
	log.Debug(log.CatBrowser, "Opening bookmark", "browser", fields[0], "url", url)

	if err := b.start(cmd); err != nil {
		log.ErrorErr(log.CatBrowser, "Failed to open browser", err, "browser", fields[0])
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// startDetached starts cmd and releases it so fmark can exit while the
// browser keeps running.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
