package tui

import (
	"context"
	stderrors "errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/stagegraph/pkg/diagram"
)

// eventBuffer bounds the events queued between the bus and the program.
const eventBuffer = 64

// Run shows d until the user quits or ctx is cancelled.
//
// Bus handlers run synchronously, often from inside Update, so events are
// queued and forwarded to the program from a separate goroutine.
func Run(ctx context.Context, d *diagram.Diagram, title string, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}, opts...)
	p := tea.NewProgram(New(d, title), opts...)

	events := make(chan diagram.Event, eventBuffer)
	done := make(chan struct{})
	unsubscribe := d.Bus().SubscribeAll(func(e diagram.Event) {
		select {
		case events <- e:
		case <-done:
		default:
			// Dropped; the next routing pass refreshes the status line.
		}
	})
	go func() {
		for {
			select {
			case e := <-events:
				p.Send(EventMsg{Event: e})
			case <-done:
				return
			}
		}
	}()
	defer func() {
		unsubscribe()
		close(done)
		d.Close()
	}()

	_, err := p.Run()
	if stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
