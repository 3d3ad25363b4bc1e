package discovery

import (
	"sync"

	"github.com/arthur-debert/remnant/pkg/types"
)

// Mode selects how an asynchronous run delivers its result. The two
// implementations are Interactive and Headless.
type Mode interface {
	progress(step int)
	deliver(result types.Result)
}

// Interactive delivers into caller-owned State and then calls OnComplete
type Interactive struct {
	State *State
	// Undo keeps the current selection instead of selecting every item
	Undo       bool
	OnComplete func(types.Result)
}

func (m Interactive) progress(step int) {
	if m.State != nil {
		m.State.setStep(step)
	}
}

func (m Interactive) deliver(result types.Result) {
	if m.State != nil {
		m.State.apply(result, m.Undo)
	}
	if m.OnComplete != nil {
		m.OnComplete(result)
	}
}

// Headless only calls OnComplete
type Headless struct {
	OnComplete func(types.Result)
}

func (Headless) progress(int) {}

func (m Headless) deliver(result types.Result) {
	if m.OnComplete != nil {
		m.OnComplete(result)
	}
}

// State is the interactive view of a run: the latest result, the selected
// paths and the current progress step. All access goes through its lock.
type State struct {
	mu       sync.Mutex
	result   types.Result
	selected map[string]bool
	step     int
}

// NewState creates an empty State
func NewState() *State {
	return &State{selected: make(map[string]bool)}
}

// Result returns the last delivered result
func (s *State) Result() types.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Step returns the current progress step; 0 means idle
func (s *State) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Selected returns the selected paths in result order
func (s *State) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, item := range s.result.Items {
		if s.selected[item.Path] {
			out = append(out, item.Path)
		}
	}
	return out
}

// Select marks a path as selected or not
func (s *State) Select(path string, selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if selected {
		s.selected[path] = true
	} else {
		delete(s.selected, path)
	}
}

func (s *State) setStep(step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = step
}

func (s *State) apply(result types.Result, undo bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	if !undo {
		s.selected = make(map[string]bool, len(result.Items))
		for _, item := range result.Items {
			s.selected[item.Path] = true
		}
	}
	s.step = 0
}
