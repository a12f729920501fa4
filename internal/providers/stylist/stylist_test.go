package stylist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/1Welcorn/Estilista-Virtual/internal/imaging"
	"github.com/1Welcorn/Estilista-Virtual/internal/providers/genai"
)

type fakeGenerator struct {
	imageParts []genai.Part
	textParts  []genai.Part
	image      *genai.Blob
	imageErr   error
	text       string
	textErr    error
}

func (f *fakeGenerator) GenerateImage(_ context.Context, parts []genai.Part) (*genai.Blob, error) {
	f.imageParts = parts
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return f.image, nil
}

func (f *fakeGenerator) GenerateText(_ context.Context, parts []genai.Part) (string, error) {
	f.textParts = parts
	return f.text, f.textErr
}

var (
	personURI  = imaging.Encode([]byte("person-bytes"), "image/jpeg")
	garmentURI = imaging.Encode([]byte("garment-bytes"), "image/png")
)

func TestComposeOutfitPartLayout(t *testing.T) {
	fake := &fakeGenerator{image: &genai.Blob{MIME: "image/png", Data: []byte{9, 9}}}
	svc := NewService(fake, nil)

	out, err := svc.ComposeOutfit(context.Background(), personURI, garmentURI, "")
	if err != nil {
		t.Fatalf("ComposeOutfit: %v", err)
	}
	if !imaging.IsDataURI(out) {
		t.Errorf("result is not a data URI: %q", out)
	}

	// Exactly one marker per image, each immediately followed by its payload.
	var personMarkers, garmentMarkers int
	for i, p := range fake.imageParts {
		switch p.Text {
		case PersonMarker:
			personMarkers++
			if i+1 >= len(fake.imageParts) || fake.imageParts[i+1].Inline == nil {
				t.Errorf("person marker not followed by an image part")
			} else if string(fake.imageParts[i+1].Inline.Data) != "person-bytes" {
				t.Errorf("person marker followed by wrong payload")
			}
		case GarmentMarker:
			garmentMarkers++
			if i+1 >= len(fake.imageParts) || fake.imageParts[i+1].Inline == nil {
				t.Errorf("garment marker not followed by an image part")
			} else if string(fake.imageParts[i+1].Inline.Data) != "garment-bytes" {
				t.Errorf("garment marker followed by wrong payload")
			}
		}
	}
	if personMarkers != 1 || garmentMarkers != 1 {
		t.Errorf("markers = %d person, %d garment; want 1 and 1", personMarkers, garmentMarkers)
	}
}

func TestComposeOutfitEmbedsRefinements(t *testing.T) {
	fake := &fakeGenerator{image: &genai.Blob{MIME: "image/png", Data: []byte{1}}}
	svc := NewService(fake, nil)

	refinements := "Add a fashionable bag. Use a neutral studio backdrop."
	if _, err := svc.ComposeOutfit(context.Background(), personURI, garmentURI, refinements); err != nil {
		t.Fatalf("ComposeOutfit: %v", err)
	}

	instruction := fake.imageParts[len(fake.imageParts)-1].Text
	if !strings.Contains(instruction, refinements) {
		t.Errorf("instruction missing verbatim refinements: %s", instruction)
	}
	if !strings.Contains(instruction, "4:5 portrait") {
		t.Errorf("instruction missing aspect ratio mandate")
	}
}

func TestComposeOutfitRejectsMalformedInput(t *testing.T) {
	fake := &fakeGenerator{}
	svc := NewService(fake, nil)

	_, err := svc.ComposeOutfit(context.Background(), "not-a-data-uri", garmentURI, "")
	if !errors.Is(err, imaging.ErrInvalidImageData) {
		t.Fatalf("err = %v, want ErrInvalidImageData", err)
	}
	if fake.imageParts != nil {
		t.Error("remote call should not happen for malformed input")
	}
}

func TestComposeOutfitNoImageProduced(t *testing.T) {
	fake := &fakeGenerator{imageErr: genai.ErrNoImage}
	svc := NewService(fake, nil)

	_, err := svc.ComposeOutfit(context.Background(), personURI, garmentURI, "")
	if !errors.Is(err, ErrNoImageProduced) {
		t.Fatalf("err = %v, want ErrNoImageProduced", err)
	}
}

func TestSuggestTrendNameStripsMarkup(t *testing.T) {
	fake := &fakeGenerator{text: `"'Quantum Weave' *Jacket*"`}
	svc := NewService(fake, nil)

	name, err := svc.SuggestTrendName(context.Background(), garmentURI)
	if err != nil {
		t.Fatalf("SuggestTrendName: %v", err)
	}
	if name != "Quantum Weave Jacket" {
		t.Errorf("name = %q", name)
	}
}

func TestSuggestBackgroundsParsing(t *testing.T) {
	fake := &fakeGenerator{text: "a, b ,c"}
	svc := NewService(fake, nil)

	got, err := svc.SuggestBackgrounds(context.Background(), garmentURI)
	if err != nil {
		t.Fatalf("SuggestBackgrounds: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSuggestBackgroundsEmptyAnswer(t *testing.T) {
	fake := &fakeGenerator{text: "   "}
	svc := NewService(fake, nil)

	got, err := svc.SuggestBackgrounds(context.Background(), garmentURI)
	if err != nil {
		t.Fatalf("SuggestBackgrounds: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
