package console

import (
	"fmt"
	"io"

	"github.com/nekogravitycat/case-admin-backend/internal/logger"
)

// Notifier surfaces mutation outcomes to the operator.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Navigator moves the console to another view.
type Navigator interface {
	Navigate(view string, payload any)
}

// WriterNotifier prints outcomes to w and logs them.
type WriterNotifier struct {
	w      io.Writer
	logger *logger.Logger
}

func NewWriterNotifier(w io.Writer, log *logger.Logger) *WriterNotifier {
	return &WriterNotifier{w: w, logger: log}
}

func (n *WriterNotifier) Success(msg string) {
	n.logger.Info().Str("outcome", "success").Msg(msg)
	fmt.Fprintf(n.w, "ok: %s\n", msg)
}

func (n *WriterNotifier) Error(msg string) {
	n.logger.Warn().Str("outcome", "error").Msg(msg)
	fmt.Fprintf(n.w, "error: %s\n", msg)
}

// StateNavigator records navigation in the AppState.
type StateNavigator struct {
	state  *AppState
	logger *logger.Logger
}

func NewStateNavigator(state *AppState, log *logger.Logger) *StateNavigator {
	return &StateNavigator{state: state, logger: log}
}

func (n *StateNavigator) Navigate(view string, payload any) {
	n.logger.Debug().Str("view", view).Msg("navigate")
	n.state.SetView(view, payload)
}
