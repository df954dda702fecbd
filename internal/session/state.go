package session

// Phase is the page navigation phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSaving
	PhaseSwitching
	PhaseLoading
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSaving:
		return "saving"
	case PhaseSwitching:
		return "switching"
	case PhaseLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// state is the navigation state machine. Idle is reached once the navigation
// lock is released and no load is pending, in either order. idle is closed
// while the machine is Idle.
type state struct {
	phase       Phase
	navigating  bool
	loadPending bool
	saving      bool
	idle        chan struct{}
}

func newState() state {
	idle := make(chan struct{})
	close(idle)
	return state{idle: idle}
}

// begin enters Saving. It reports false when a navigation is in flight.
func (s *state) begin() bool {
	if s.busy() {
		return false
	}
	s.phase = PhaseSaving
	s.navigating = true
	s.idle = make(chan struct{})
	return true
}

func (s *state) switching() {
	s.phase = PhaseSwitching
	s.loadPending = true
}

func (s *state) loading() {
	s.phase = PhaseLoading
}

func (s *state) loaded() {
	s.loadPending = false
	s.settle()
}

func (s *state) release() {
	s.navigating = false
	s.settle()
}

// abort returns to Idle without switching pages.
func (s *state) abort() {
	s.navigating = false
	s.loadPending = false
	s.settle()
}

func (s *state) settle() {
	if s.navigating || s.loadPending || s.phase == PhaseIdle {
		return
	}
	s.phase = PhaseIdle
	close(s.idle)
}

func (s *state) busy() bool {
	return s.navigating || s.loadPending
}

func (s *state) done() <-chan struct{} {
	return s.idle
}
