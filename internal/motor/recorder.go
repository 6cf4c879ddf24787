package motor

import "sync"

// Action is one recorded actuator call.
type Action struct {
	Command float64
	Stopped bool
}

// Recorder captures every actuator call for assertions in tests.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
}

func (r *Recorder) Init() error { return nil }

func (r *Recorder) Drive(cmd float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, Action{Command: cmd})
	return nil
}

func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, Action{Stopped: true})
	return nil
}

// Actions returns a copy of everything recorded so far.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Last returns the most recent action, or a zero Action if none.
func (r *Recorder) Last() Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.actions) == 0 {
		return Action{}
	}
	return r.actions[len(r.actions)-1]
}
