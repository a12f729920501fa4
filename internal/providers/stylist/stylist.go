package stylist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/1Welcorn/Estilista-Virtual/internal/imaging"
	"github.com/1Welcorn/Estilista-Virtual/internal/infra"
	"github.com/1Welcorn/Estilista-Virtual/internal/providers/genai"
)

// ErrNoImageProduced is returned when the model answered without an image
// part. This is terminal for the attempt; the caller may resubmit.
var ErrNoImageProduced = errors.New("stylist: no image was produced by the model")

// Generator is the remote multimodal surface the service needs. Satisfied by
// *genai.Client; tests substitute a fake.
type Generator interface {
	GenerateImage(ctx context.Context, parts []genai.Part) (*genai.Blob, error)
	GenerateText(ctx context.Context, parts []genai.Part) (string, error)
}

// Service orchestrates outfit composition and garment analysis calls.
type Service struct {
	gen    Generator
	logger *infra.Logger
}

// NewService builds a stylist service on top of a generator.
func NewService(gen Generator, logger *infra.Logger) *Service {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Service{gen: gen, logger: logger}
}

// ComposeOutfit dresses the person with the garment and returns the generated
// picture as a data URI. Both inputs must be valid data URIs; malformed data
// fails with imaging.ErrInvalidImageData before any remote call.
func (s *Service) ComposeOutfit(ctx context.Context, personURI, garmentURI, refinements string) (string, error) {
	person, err := imaging.Decode(personURI)
	if err != nil {
		return "", fmt.Errorf("person image: %w", err)
	}
	garment, err := imaging.Decode(garmentURI)
	if err != nil {
		return "", fmt.Errorf("garment image: %w", err)
	}

	parts := []genai.Part{
		genai.Text(PersonMarker),
		genai.Image(person.MIME, person.Data),
		genai.Text(GarmentMarker),
		genai.Image(garment.MIME, garment.Data),
		genai.Text(buildComposeInstruction(refinements)),
	}

	blob, err := s.gen.GenerateImage(ctx, parts)
	if err != nil {
		if errors.Is(err, genai.ErrNoImage) {
			return "", ErrNoImageProduced
		}
		return "", err
	}

	s.logger.Info().Str("mime", blob.MIME).Int("bytes", len(blob.Data)).Msg("stylist: outfit composed")
	return imaging.Encode(blob.Data, blob.MIME), nil
}

// SuggestTrendName proposes a short catalog name for the garment. Quoting and
// markup characters are stripped from the raw model output.
func (s *Service) SuggestTrendName(ctx context.Context, garmentURI string) (string, error) {
	garment, err := imaging.Decode(garmentURI)
	if err != nil {
		return "", fmt.Errorf("garment image: %w", err)
	}

	raw, err := s.gen.GenerateText(ctx, []genai.Part{
		genai.Image(garment.MIME, garment.Data),
		genai.Text(trendNamePrompt),
	})
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', '*':
			return -1
		}
		return r
	}, raw))
	return name, nil
}

// SuggestBackgrounds proposes photoshoot backdrops matching the garment. The
// model answers with a comma-separated list; entries are trimmed and empties
// dropped. An empty answer yields an empty slice, not an error.
func (s *Service) SuggestBackgrounds(ctx context.Context, garmentURI string) ([]string, error) {
	garment, err := imaging.Decode(garmentURI)
	if err != nil {
		return nil, fmt.Errorf("garment image: %w", err)
	}

	raw, err := s.gen.GenerateText(ctx, []genai.Part{
		genai.Image(garment.MIME, garment.Data),
		genai.Text(backgroundsPrompt),
	})
	if err != nil {
		return nil, err
	}

	var suggestions []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			suggestions = append(suggestions, part)
		}
	}
	return suggestions, nil
}
