package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/1Welcorn/Estilista-Virtual/internal/imaging"
	"github.com/1Welcorn/Estilista-Virtual/internal/infra"
	"github.com/1Welcorn/Estilista-Virtual/internal/storage"
)

// Sentinel errors exposed to the HTTP layer. Callers match with errors.Is.
var (
	ErrAddOutfit            = errors.New("catalog: could not add outfit")
	ErrRemoveOutfit         = errors.New("catalog: could not remove outfit")
	ErrUpdateOutfit         = errors.New("catalog: could not update outfit")
	ErrStorageQuotaExceeded = errors.New("catalog: storage quota exceeded")
)

// Service manages the trends catalog. Image payloads arriving as data URIs
// are uploaded to object storage before the document is persisted, so stored
// outfits only ever reference durable URLs.
type Service struct {
	docs    DocumentStore
	objects storage.ObjectStore
	logger  *infra.Logger
}

func NewService(docs DocumentStore, objects storage.ObjectStore, logger *infra.Logger) *Service {
	return &Service{docs: docs, objects: objects, logger: logger}
}

// List returns all outfits sorted by name. A storage failure degrades to an
// empty catalog instead of breaking the page.
func (s *Service) List(ctx context.Context) []PresetOutfit {
	outfits, err := s.docs.List(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("catalog list failed, serving empty")
		return []PresetOutfit{}
	}
	sort.Slice(outfits, func(i, j int) bool {
		return strings.ToLower(outfits[i].Name) < strings.ToLower(outfits[j].Name)
	})
	if outfits == nil {
		outfits = []PresetOutfit{}
	}
	return outfits
}

// Add uploads every embedded image and persists the outfit document. Objects
// uploaded before a failure are removed again on a best effort basis.
func (s *Service) Add(ctx context.Context, outfit PresetOutfit) (PresetOutfit, error) {
	outfit.Name = strings.TrimSpace(outfit.Name)
	if outfit.ID == "" {
		outfit.ID = ulid.Make().String()
	}
	if err := outfit.Validate(); err != nil {
		return PresetOutfit{}, fmt.Errorf("%w: %v", ErrAddOutfit, err)
	}

	uploaded, err := s.uploadImages(ctx, outfit.ID, outfit.Images)
	if err != nil {
		if errors.Is(err, storage.ErrQuotaExceeded) {
			return PresetOutfit{}, fmt.Errorf("%w: %v", ErrStorageQuotaExceeded, err)
		}
		return PresetOutfit{}, fmt.Errorf("%w: %v", ErrAddOutfit, err)
	}

	if err := s.docs.Insert(ctx, outfit); err != nil {
		s.cleanup(ctx, uploaded)
		return PresetOutfit{}, fmt.Errorf("%w: %v", ErrAddOutfit, err)
	}
	return outfit, nil
}

// Remove deletes the outfit document and its stored images. A missing
// document or missing objects are not errors, so retries stay idempotent.
// Any other object deletion failure aborts before the document is touched,
// so the catalog never references images we failed to release.
func (s *Service) Remove(ctx context.Context, id string) error {
	outfit, err := s.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOutfitNotFound) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRemoveOutfit, err)
	}
	for _, img := range outfit.Images {
		if img.URL == "" {
			continue
		}
		if err := s.objects.Delete(ctx, img.URL); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %v", ErrRemoveOutfit, err)
		}
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrRemoveOutfit, err)
	}
	return nil
}

// UpdateParams carries a partial edit; nil fields stay untouched. Images
// replaces the whole image set, with embedded data URIs going through the
// same upload path as Add.
type UpdateParams struct {
	Name           *string
	MainImageIndex *int
	Images         *[]OutfitImage
}

// Update applies a partial edit with last writer wins semantics. A replaced
// image set releases the objects it no longer references.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams) (PresetOutfit, error) {
	outfit, err := s.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOutfitNotFound) {
			return PresetOutfit{}, err
		}
		return PresetOutfit{}, fmt.Errorf("%w: %v", ErrUpdateOutfit, err)
	}
	// A blank rename is a no-op, matching the inline edit's cancel behavior.
	if params.Name != nil {
		if name := strings.TrimSpace(*params.Name); name != "" {
			outfit.Name = name
		}
	}
	if params.MainImageIndex != nil {
		outfit.MainImageIndex = *params.MainImageIndex
	}
	var uploaded, stale []string
	if params.Images != nil {
		images := append([]OutfitImage(nil), (*params.Images)...)
		uploaded, err = s.uploadImages(ctx, outfit.ID, images)
		if err != nil {
			if errors.Is(err, storage.ErrQuotaExceeded) {
				return PresetOutfit{}, fmt.Errorf("%w: %v", ErrStorageQuotaExceeded, err)
			}
			return PresetOutfit{}, fmt.Errorf("%w: %v", ErrUpdateOutfit, err)
		}
		retained := make(map[string]bool, len(images))
		for _, img := range images {
			retained[img.URL] = true
		}
		for _, img := range outfit.Images {
			if img.URL != "" && !retained[img.URL] {
				stale = append(stale, img.URL)
			}
		}
		outfit.Images = images
	}
	if err := outfit.Validate(); err != nil {
		s.cleanup(ctx, uploaded)
		return PresetOutfit{}, fmt.Errorf("%w: %v", ErrUpdateOutfit, err)
	}
	if err := s.docs.Update(ctx, outfit); err != nil {
		s.cleanup(ctx, uploaded)
		if errors.Is(err, ErrOutfitNotFound) {
			return PresetOutfit{}, err
		}
		return PresetOutfit{}, fmt.Errorf("%w: %v", ErrUpdateOutfit, err)
	}
	s.cleanup(ctx, stale)
	return outfit, nil
}

// uploadImages pushes every embedded data URI to object storage, filling in
// URL and MIMEType in place and clearing the inline payload. On failure the
// uploads made so far are removed again and the raw error is returned for
// the caller to wrap.
func (s *Service) uploadImages(ctx context.Context, outfitID string, images []OutfitImage) ([]string, error) {
	var uploaded []string
	for i := range images {
		img := &images[i]
		if img.ID == "" {
			img.ID = ulid.Make().String()
		}
		if !imaging.IsDataURI(img.Data) {
			continue
		}
		decoded, err := imaging.Decode(img.Data)
		if err != nil {
			s.cleanup(ctx, uploaded)
			return nil, err
		}
		key := fmt.Sprintf("trends/%s/%s%s", outfitID, img.ID, extensionFor(decoded.MIME))
		url, err := s.objects.Put(ctx, key, decoded.Data, decoded.MIME)
		if err != nil {
			s.cleanup(ctx, uploaded)
			return nil, err
		}
		uploaded = append(uploaded, url)
		img.URL = url
		img.MIMEType = decoded.MIME
		img.Data = ""
	}
	return uploaded, nil
}

func (s *Service) cleanup(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.objects.Delete(ctx, url); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn().Err(err).Str("url", url).Msg("orphaned trend image left behind")
		}
	}
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
