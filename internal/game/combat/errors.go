package combat

import "errors"

var (
	// ErrIllegalAction reports a submitted action that failed validation.
	// The session state is unchanged when it is returned.
	ErrIllegalAction = errors.New("illegal action")
	// ErrInvalidState reports a call made in a session state that does not permit it.
	ErrInvalidState = errors.New("invalid battle state")
	// ErrNoActorAvailable reports that every combatant is defeated.
	ErrNoActorAvailable = errors.New("no actor available")
)
