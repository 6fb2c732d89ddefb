package browser

import (
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/uiharness/pkg/logging"
)

// DialogMessage is a captured JavaScript dialog.
type DialogMessage struct {
	Type       string
	Message    string
	ReceivedAt time.Time
}

// DialogQueue captures the dialogs opened by one page in arrival order.
// Every dialog is accepted as soon as it is recorded.
type DialogQueue struct {
	mu       sync.Mutex
	messages []DialogMessage
	notify   chan struct{}
	logger   *logging.Logger
}

func newDialogQueue(logger *logging.Logger) *DialogQueue {
	if logger == nil {
		logger = logging.Discard("dialogs")
	}
	return &DialogQueue{
		notify: make(chan struct{}, 1),
		logger: logger,
	}
}

// handle is registered as the page's dialog listener.
func (q *DialogQueue) handle(d playwright.Dialog) {
	msg := DialogMessage{
		Type:       d.Type(),
		Message:    d.Message(),
		ReceivedAt: time.Now(),
	}

	q.mu.Lock()
	q.messages = append(q.messages, msg)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}

	q.logger.Infof("dialog captured (%s): %s", msg.Type, msg.Message)
	if err := d.Accept(); err != nil {
		q.logger.Warnf("failed to accept dialog: %v", err)
	}
}

// Next removes and returns the oldest captured dialog, waiting up to
// timeout for one to arrive.
func (q *DialogQueue) Next(timeout time.Duration) (DialogMessage, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if msg, ok := q.pop(); ok {
			return msg, nil
		}
		select {
		case <-q.notify:
		case <-deadline.C:
			if msg, ok := q.pop(); ok {
				return msg, nil
			}
			return DialogMessage{}, &TimeoutError{
				Locator: "dialog",
				State:   "open",
				Timeout: timeout,
				Err:     fmt.Errorf("no dialog captured"),
			}
		}
	}
}

// Pending returns the captured dialogs that have not been consumed.
func (q *DialogQueue) Pending() []DialogMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]DialogMessage(nil), q.messages...)
}

// Last returns the most recent captured dialog without consuming it.
func (q *DialogQueue) Last() (DialogMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.messages) == 0 {
		return DialogMessage{}, false
	}
	return q.messages[len(q.messages)-1], true
}

func (q *DialogQueue) pop() (DialogMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.messages) == 0 {
		return DialogMessage{}, false
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return msg, true
}
