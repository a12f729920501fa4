package session

import (
	"sync"
	"time"
)

// Phase is the position of a try-on session in its lifecycle.
type Phase string

const (
	PhaseEmpty         Phase = "empty"
	PhaseModelSelected Phase = "model_selected"
	PhaseReadyToStyle  Phase = "ready_to_style"
	PhaseGenerating    Phase = "generating"
	PhaseResultReady   Phase = "result_ready"
)

// UserProfile mirrors the identity provider's view of the signed-in user.
type UserProfile struct {
	UID     string `json:"uid"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// Session holds the state of one customer's styling flow. All image fields
// carry data URIs. The lookbook survives resets; everything else is cleared
// when the flow returns to PhaseEmpty.
type Session struct {
	mu sync.Mutex

	ID        string
	Phase     Phase
	CreatedAt time.Time
	UpdatedAt time.Time

	ModelImage   string
	GarmentImage string

	TrendName       string
	Backgrounds     []string
	AnalysisWarning string

	Refinements []string
	Background  string

	Result   string
	Lookbook []string
}

// View is the lock-free snapshot handed to the HTTP layer.
type View struct {
	ID              string   `json:"id"`
	Phase           Phase    `json:"phase"`
	HasModelImage   bool     `json:"hasModelImage"`
	HasGarmentImage bool     `json:"hasGarmentImage"`
	TrendName       string   `json:"trendName,omitempty"`
	Backgrounds     []string `json:"backgrounds,omitempty"`
	AnalysisWarning string   `json:"analysisWarning,omitempty"`
	Refinements     []string `json:"refinements"`
	Background      string   `json:"background,omitempty"`
	Result          string   `json:"result,omitempty"`
	Lookbook        []string `json:"lookbook"`
}

func (s *Session) snapshot() View {
	v := View{
		ID:              s.ID,
		Phase:           s.Phase,
		HasModelImage:   s.ModelImage != "",
		HasGarmentImage: s.GarmentImage != "",
		TrendName:       s.TrendName,
		Backgrounds:     append([]string(nil), s.Backgrounds...),
		AnalysisWarning: s.AnalysisWarning,
		Refinements:     append([]string{}, s.Refinements...),
		Background:      s.Background,
		Result:          s.Result,
		Lookbook:        append([]string{}, s.Lookbook...),
	}
	return v
}

// View returns a consistent snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// touch bumps the idle timestamp. Callers hold the lock.
func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

// reset clears selections and refinement state. The lookbook is kept. Callers
// hold the lock.
func (s *Session) reset() {
	s.Phase = PhaseEmpty
	s.ModelImage = ""
	s.GarmentImage = ""
	s.TrendName = ""
	s.Backgrounds = nil
	s.AnalysisWarning = ""
	s.Refinements = nil
	s.Background = ""
	s.Result = ""
}

// recomputePhase derives the selection phase from the held images. Callers
// hold the lock; generating and result phases are managed explicitly.
func (s *Session) recomputePhase() {
	switch {
	case s.ModelImage != "" && s.GarmentImage != "":
		s.Phase = PhaseReadyToStyle
	case s.ModelImage != "":
		s.Phase = PhaseModelSelected
	default:
		s.Phase = PhaseEmpty
	}
}
