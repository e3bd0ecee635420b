package listing

import (
	"context"
	"log/slog"
)

// ActionPhase is the administrative action state of one list item.
type ActionPhase int

const (
	ActionNormal ActionPhase = iota
	ActionPending
	ActionResolved
)

func (p ActionPhase) String() string {
	switch p {
	case ActionPending:
		return "pending"
	case ActionResolved:
		return "resolved"
	default:
		return "normal"
	}
}

// ActionState is the phase of an item plus the outcome once resolved.
type ActionState struct {
	Phase   ActionPhase
	Outcome string
}

// Confirmer asks the user to approve a mutation. No mutation is sent
// without a true answer.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// Action describes a mutation on one item.
type Action[T any] struct {
	// Name is used in logs, e.g. "delete".
	Name string
	// Prompt is shown to the user before anything is sent.
	Prompt string
	// OneWay actions end in ActionResolved and cannot be repeated.
	// Bidirectional actions return the item to ActionNormal on success.
	OneWay bool
	// Done reports whether the item already carries this action's result.
	// Optional; only consulted for one-way actions.
	Done func(T) bool
	// Call performs the mutation against the backend.
	Call func(ctx context.Context, token string, item T) error
	// Patch is applied to the listed item after Call succeeds.
	Patch func(T) T
}

// ActionState returns the action state of the item with id.
func (s *Screen[T]) ActionState(id int64) ActionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actions[id]
}

// Perform runs act on the listed item with id.
//
// The user is asked first; a refusal returns ErrCancelled and nothing is
// sent. A failed call returns the item to ActionNormal and leaves the list
// untouched. On success the item is patched in place. Once an item is
// resolved, any further action returns ErrAlreadyResolved without prompting
// or calling the backend.
func (s *Screen[T]) Perform(ctx context.Context, id int64, act Action[T], confirm Confirmer) error {
	s.mu.Lock()
	item, ok := s.findLocked(id)
	if !ok {
		s.mu.Unlock()
		return ErrNotListed
	}
	state := s.actions[id]
	switch {
	case state.Phase == ActionPending:
		s.mu.Unlock()
		return ErrActionPending
	case state.Phase == ActionResolved:
		s.mu.Unlock()
		return ErrAlreadyResolved
	case act.OneWay && act.Done != nil && act.Done(item):
		s.actions[id] = ActionState{Phase: ActionResolved, Outcome: act.Name}
		s.mu.Unlock()
		return ErrAlreadyResolved
	}
	s.mu.Unlock()

	if confirm == nil {
		return ErrCancelled
	}
	approved, err := confirm.Confirm(act.Prompt)
	if err != nil {
		return err
	}
	if !approved {
		return ErrCancelled
	}

	s.mu.Lock()
	switch s.actions[id].Phase {
	case ActionPending:
		s.mu.Unlock()
		return ErrActionPending
	case ActionResolved:
		s.mu.Unlock()
		return ErrAlreadyResolved
	}
	s.actions[id] = ActionState{Phase: ActionPending}
	s.mu.Unlock()

	err = act.Call(ctx, s.session.Token(), item)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		delete(s.actions, id)
		s.logger.WarnContext(ctx, "action failed",
			slog.String("screen", s.name),
			slog.String("action", act.Name),
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		return s.loginRequired(err)
	}

	s.page.Items = ApplyMutation(s.page.Items, id, act.Patch)
	if act.OneWay {
		s.actions[id] = ActionState{Phase: ActionResolved, Outcome: act.Name}
	} else {
		delete(s.actions, id)
	}
	s.logger.InfoContext(ctx, "action applied",
		slog.String("screen", s.name),
		slog.String("action", act.Name),
		slog.Int64("id", id),
	)
	return nil
}
