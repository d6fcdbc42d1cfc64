package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/photowall/pkg/watcher"
)

// Run shows the gallery full screen until the user quits or ctx is
// cancelled. With opts.Watch the root directory is watched and changes are
// applied to the wall as they settle.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.Watch {
		w, err := watcher.New(opts.Root, watcher.WithLogger(m.logger))
		if err != nil {
			return err
		}
		wctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := w.Run(wctx); err != nil && !errors.Is(err, context.Canceled) {
				m.logger.Warn("watcher stopped", "err", err)
			}
		}()
		go func() {
			for b := range w.Events() {
				p.Send(batchMsg{b})
			}
		}()
	}

	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run gallery: %w", err)
	}
	return nil
}
