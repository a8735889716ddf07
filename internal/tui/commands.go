package tui

import (
	"context"

	"modelmind/internal/models"
	"modelmind/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

// Messages for the TUI

// connectionTestMsg is sent when connection test completes
type connectionTestMsg struct {
	results []service.ConnectionResult
}

// compareStartedMsg carries the channel a running comparison reports on
type compareStartedMsg struct {
	events <-chan tea.Msg
}

// compareEventMsg is sent for every stream item of every provider
type compareEventMsg struct {
	event service.Event
}

// compareDoneMsg is sent once every provider has reported its metrics
type compareDoneMsg struct {
	result models.ComparisonResult
}

// compareErrorMsg is sent when a comparison could not start
type compareErrorMsg struct {
	err error
}

func testConnections(ctx context.Context, svc *service.ComparisonService) tea.Cmd {
	return func() tea.Msg {
		return connectionTestMsg{results: svc.TestConnections(ctx)}
	}
}

// startComparison runs the comparison in the background. Events are delivered
// through the returned channel, which is closed after compareDoneMsg or
// compareErrorMsg.
func startComparison(ctx context.Context, svc *service.ComparisonService, prompt string, temperature float64, providers []models.ProviderSpec) tea.Cmd {
	return func() tea.Msg {
		events := make(chan tea.Msg, 64)

		go func() {
			defer close(events)

			send := func(msg tea.Msg) {
				select {
				case events <- msg:
				case <-ctx.Done():
				}
			}

			result, err := svc.RunComparison(ctx, prompt, temperature, providers, func(ev service.Event) {
				send(compareEventMsg{event: ev})
			})
			if err != nil {
				send(compareErrorMsg{err: err})
				return
			}
			send(compareDoneMsg{result: result})
		}()

		return compareStartedMsg{events: events}
	}
}

// waitForEvent reads the next message of a running comparison.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}
