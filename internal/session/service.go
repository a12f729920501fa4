package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/1Welcorn/Estilista-Virtual/internal/imaging"
	"github.com/1Welcorn/Estilista-Virtual/internal/infra"
)

var (
	// ErrGenerationInFlight rejects a second submission while one is pending.
	ErrGenerationInFlight = errors.New("session: generation already in flight")
	// ErrNotReady is returned when generation is requested before both
	// images are selected.
	ErrNotReady = errors.New("session: model and garment images are required")
	// ErrNoResult is returned when there is no generated result to act on.
	ErrNoResult = errors.New("session: no result available")
)

// Stylist is the generation surface the controller drives. Satisfied by
// *stylist.Service.
type Stylist interface {
	ComposeOutfit(ctx context.Context, personURI, garmentURI, refinements string) (string, error)
	SuggestTrendName(ctx context.Context, garmentURI string) (string, error)
	SuggestBackgrounds(ctx context.Context, garmentURI string) ([]string, error)
}

// ImageFetcher turns a remote image URL into a data URI. Satisfied by
// *imaging.Fetcher.
type ImageFetcher interface {
	EncodeRemote(ctx context.Context, url string) (string, error)
}

// Service drives the try-on flow on top of the in-memory store.
type Service struct {
	store   *Store
	stylist Stylist
	fetcher ImageFetcher
	logger  *infra.Logger
}

func NewService(store *Store, stylist Stylist, fetcher ImageFetcher, logger *infra.Logger) *Service {
	return &Service{store: store, stylist: stylist, fetcher: fetcher, logger: logger}
}

// Create starts a fresh session.
func (svc *Service) Create() View {
	return svc.store.Create().View()
}

// Get returns the current snapshot for id.
func (svc *Service) Get(id string) (View, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return View{}, err
	}
	return s.View(), nil
}

// SetModelImage replaces the person photo. The previous image and any stale
// result are superseded in the same step.
func (svc *Service) SetModelImage(ctx context.Context, id, dataURI string) (View, error) {
	if _, err := imaging.Decode(dataURI); err != nil {
		return View{}, fmt.Errorf("model image: %w", err)
	}
	s, err := svc.store.Get(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase == PhaseGenerating {
		return View{}, ErrGenerationInFlight
	}
	s.ModelImage = dataURI
	s.Result = ""
	s.recomputePhase()
	s.touch()
	return s.snapshot(), nil
}

// SetGarmentImage replaces the garment photo and kicks off the side analysis:
// a trend name suggestion and background suggestions run concurrently, and a
// failure in one never discards the other's success. Analysis failures
// degrade to a warning on the session; they never block ReadyToStyle.
func (svc *Service) SetGarmentImage(ctx context.Context, id, dataURI string) (View, error) {
	if _, err := imaging.Decode(dataURI); err != nil {
		return View{}, fmt.Errorf("garment image: %w", err)
	}
	s, err := svc.store.Get(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	if s.Phase == PhaseGenerating {
		s.mu.Unlock()
		return View{}, ErrGenerationInFlight
	}
	s.GarmentImage = dataURI
	s.TrendName = ""
	s.Backgrounds = nil
	s.AnalysisWarning = ""
	s.Result = ""
	s.recomputePhase()
	s.touch()
	s.mu.Unlock()

	name, backgrounds, warning := svc.analyzeGarment(ctx, dataURI)

	s.mu.Lock()
	defer s.mu.Unlock()
	// A newer garment may have superseded this one while the analysis ran.
	if s.GarmentImage == dataURI {
		s.TrendName = name
		s.Backgrounds = backgrounds
		s.AnalysisWarning = warning
	}
	return s.snapshot(), nil
}

func (svc *Service) analyzeGarment(ctx context.Context, garmentURI string) (name string, backgrounds []string, warning string) {
	var (
		wg      sync.WaitGroup
		nameErr error
		bgErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		name, nameErr = svc.stylist.SuggestTrendName(ctx, garmentURI)
	}()
	go func() {
		defer wg.Done()
		backgrounds, bgErr = svc.stylist.SuggestBackgrounds(ctx, garmentURI)
	}()
	wg.Wait()

	if nameErr != nil {
		svc.logger.Warn().Err(nameErr).Msg("trend name suggestion failed")
		warning = "garment analysis was incomplete"
	} else {
		name = cases.Title(language.Und).String(strings.ToLower(name))
	}
	if bgErr != nil {
		svc.logger.Warn().Err(bgErr).Msg("background suggestion failed")
		warning = "garment analysis was incomplete"
	}
	return name, backgrounds, warning
}

// ToggleRefinement adds the phrase to the active set or removes it when
// already present. Insertion order of the survivors is preserved.
func (svc *Service) ToggleRefinement(id, phrase string) (View, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return View{}, errors.New("session: refinement phrase is required")
	}
	s, err := svc.store.Get(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.Refinements[:0]
	removed := false
	for _, p := range s.Refinements {
		if p == phrase {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	s.Refinements = kept
	if !removed {
		s.Refinements = append(s.Refinements, phrase)
	}
	s.touch()
	return s.snapshot(), nil
}

// SelectBackground picks a background phrase. Selecting the current one again
// deselects it.
func (svc *Service) SelectBackground(id, phrase string) (View, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Background == phrase {
		s.Background = ""
	} else {
		s.Background = phrase
	}
	s.touch()
	return s.snapshot(), nil
}

// SelectPresetGarment resolves a catalog variant to a garment image. Remote
// URLs are fetched and embedded first, then the normal garment path runs.
func (svc *Service) SelectPresetGarment(ctx context.Context, id, value string) (View, error) {
	if !imaging.IsDataURI(value) {
		encoded, err := svc.fetcher.EncodeRemote(ctx, value)
		if err != nil {
			return View{}, err
		}
		value = encoded
	}
	return svc.SetGarmentImage(ctx, id, value)
}

// Generate submits the composition. The session moves to PhaseGenerating for
// the duration of the remote call; failure returns it to ReadyToStyle with
// the error surfaced to the caller.
func (svc *Service) Generate(ctx context.Context, id string) (View, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	if s.Phase == PhaseGenerating {
		s.mu.Unlock()
		return View{}, ErrGenerationInFlight
	}
	if s.ModelImage == "" || s.GarmentImage == "" {
		s.mu.Unlock()
		return View{}, ErrNotReady
	}
	person, garment := s.ModelImage, s.GarmentImage
	instruction := buildInstruction(s.Refinements, s.Background)
	s.Phase = PhaseGenerating
	s.touch()
	s.mu.Unlock()

	result, genErr := svc.stylist.ComposeOutfit(ctx, person, garment, instruction)

	s.mu.Lock()
	defer s.mu.Unlock()
	if genErr != nil {
		s.recomputePhase()
		s.touch()
		return View{}, genErr
	}
	s.Result = result
	s.Phase = PhaseResultReady
	s.touch()
	svc.logger.Info().Str("session", s.ID).Msg("outfit generated")
	return s.snapshot(), nil
}

// SaveToLookbook keeps the result as the newest lookbook entry and resets the
// selection state.
func (svc *Service) SaveToLookbook(id string) (View, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Phase != PhaseResultReady || s.Result == "" {
		return View{}, ErrNoResult
	}
	s.Lookbook = append([]string{s.Result}, s.Lookbook...)
	s.reset()
	s.touch()
	return s.snapshot(), nil
}

// Discard drops the current result and selections without saving.
func (svc *Service) Discard(id string) (View, error) {
	s, err := svc.store.Get(id)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.touch()
	return s.snapshot(), nil
}

// Clear removes the session entirely, lookbook included.
func (svc *Service) Clear(id string) {
	svc.store.Delete(id)
}

// buildInstruction joins the active refinement phrases and the chosen
// background into the free-form instruction text sent to the model.
func buildInstruction(refinements []string, background string) string {
	parts := append([]string{}, refinements...)
	if background != "" {
		parts = append(parts, "The background should be "+background+".")
	}
	return strings.Join(parts, " ")
}
