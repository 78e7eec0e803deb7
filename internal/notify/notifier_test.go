package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMsg struct {
	event, title, message string
}

type fakeSender struct {
	name string
	err  error
	sent []sentMsg
}

func (f *fakeSender) Send(_ context.Context, event, title, message string) error {
	f.sent = append(f.sent, sentMsg{event, title, message})
	return f.err
}

func (f *fakeSender) Name() string { return f.name }

func TestNotify_FiltersDisallowedEvents(t *testing.T) {
	s := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{s}, []string{EventFill}, slog.Default())

	require.NoError(t, n.Notify(context.Background(), EventOpportunity, "t", "m"))
	assert.Empty(t, s.sent)

	require.NoError(t, n.Notify(context.Background(), EventFill, "t", "m"))
	require.Len(t, s.sent, 1)
	assert.Equal(t, EventFill, s.sent[0].event)
}

func TestNotify_EmptyEventListAllowsAll(t *testing.T) {
	s := &fakeSender{name: "fake"}
	n := NewNotifier([]Sender{s}, nil, slog.Default())

	for _, e := range []string{EventOpportunity, EventFill, EventImbalance, EventLimit} {
		require.NoError(t, n.Notify(context.Background(), e, "t", "m"))
	}
	assert.Len(t, s.sent, 4)
}

func TestNotify_SenderFailureDoesNotBlockOthers(t *testing.T) {
	broken := &fakeSender{name: "broken", err: errors.New("boom")}
	ok := &fakeSender{name: "ok"}
	n := NewNotifier([]Sender{broken, ok}, nil, slog.Default())

	err := n.Notify(context.Background(), EventImbalance, "t", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Len(t, ok.sent, 1)
}

func TestEventTag(t *testing.T) {
	assert.Equal(t, "[FILL]", eventTag(EventFill))
	assert.Equal(t, "[OPPORTUNITY]", eventTag(EventOpportunity))
}

func TestEventColor(t *testing.T) {
	assert.Equal(t, colorGreen, eventColor(EventOpportunity))
	assert.Equal(t, colorBlue, eventColor(EventFill))
	assert.Equal(t, colorOrange, eventColor(EventImbalance))
	assert.Equal(t, colorRed, eventColor(EventLimit))
	assert.Equal(t, colorGrey, eventColor("something-else"))
}
