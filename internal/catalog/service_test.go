package catalog

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/1Welcorn/Estilista-Virtual/internal/infra"
	"github.com/1Welcorn/Estilista-Virtual/internal/storage"
)

type memDocs struct {
	outfits map[string]PresetOutfit
	listErr error
}

func newMemDocs() *memDocs {
	return &memDocs{outfits: map[string]PresetOutfit{}}
}

func (m *memDocs) List(ctx context.Context) ([]PresetOutfit, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []PresetOutfit
	for _, o := range m.outfits {
		out = append(out, o)
	}
	return out, nil
}

func (m *memDocs) Get(ctx context.Context, id string) (PresetOutfit, error) {
	o, ok := m.outfits[id]
	if !ok {
		return PresetOutfit{}, ErrOutfitNotFound
	}
	return o, nil
}

func (m *memDocs) Insert(ctx context.Context, outfit PresetOutfit) error {
	m.outfits[outfit.ID] = outfit
	return nil
}

func (m *memDocs) Update(ctx context.Context, outfit PresetOutfit) error {
	if _, ok := m.outfits[outfit.ID]; !ok {
		return ErrOutfitNotFound
	}
	m.outfits[outfit.ID] = outfit
	return nil
}

func (m *memDocs) Delete(ctx context.Context, id string) error {
	delete(m.outfits, id)
	return nil
}

type memObjects struct {
	objects   map[string][]byte
	putErr    error
	deleteErr error
	puts      int
}

func newMemObjects() *memObjects {
	return &memObjects{objects: map[string][]byte{}}
}

func (m *memObjects) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.puts++
	if m.putErr != nil && m.puts > 1 {
		return "", m.putErr
	}
	url := "https://cdn.test/" + key
	m.objects[url] = data
	return url, nil
}

func (m *memObjects) Delete(ctx context.Context, url string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.objects[url]; !ok {
		return storage.ErrNotFound
	}
	delete(m.objects, url)
	return nil
}

func newTestService(docs DocumentStore, objects storage.ObjectStore) *Service {
	logger := infra.Logger(zerolog.Nop())
	return NewService(docs, objects, &logger)
}

func dataURI(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestAddUploadsImagesAndPersists(t *testing.T) {
	docs := newMemDocs()
	objects := newMemObjects()
	svc := newTestService(docs, objects)

	saved, err := svc.Add(context.Background(), PresetOutfit{
		Name: "Linen Set",
		Images: []OutfitImage{
			{Data: dataURI("front"), Angle: "front"},
			{Data: dataURI("back"), Angle: "back"},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)
	require.Len(t, objects.objects, 2)
	for _, img := range saved.Images {
		require.Empty(t, img.Data)
		require.True(t, strings.HasPrefix(img.URL, "https://cdn.test/trends/"+saved.ID+"/"))
		require.Equal(t, "image/png", img.MIMEType)
	}
	stored, err := docs.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved, stored)
}

func TestAddCleansUpOnPartialFailure(t *testing.T) {
	docs := newMemDocs()
	objects := newMemObjects()
	objects.putErr = errors.New("backend down")
	svc := newTestService(docs, objects)

	_, err := svc.Add(context.Background(), PresetOutfit{
		Name: "Linen Set",
		Images: []OutfitImage{
			{Data: dataURI("front")},
			{Data: dataURI("back")},
		},
	})
	require.ErrorIs(t, err, ErrAddOutfit)
	require.Empty(t, objects.objects)
	require.Empty(t, docs.outfits)
}

func TestAddQuotaExceeded(t *testing.T) {
	docs := newMemDocs()
	objects := newMemObjects()
	objects.putErr = storage.ErrQuotaExceeded
	svc := newTestService(docs, objects)

	_, err := svc.Add(context.Background(), PresetOutfit{
		Name: "Linen Set",
		Images: []OutfitImage{
			{Data: dataURI("front")},
			{Data: dataURI("back")},
		},
	})
	require.ErrorIs(t, err, ErrStorageQuotaExceeded)
}

func TestAddRejectsInvalidOutfit(t *testing.T) {
	svc := newTestService(newMemDocs(), newMemObjects())
	_, err := svc.Add(context.Background(), PresetOutfit{Name: "  "})
	require.ErrorIs(t, err, ErrAddOutfit)
}

func TestListSortsByNameAndDegrades(t *testing.T) {
	docs := newMemDocs()
	svc := newTestService(docs, newMemObjects())
	for _, name := range []string{"zebra print", "Boho Dress", "monochrome"} {
		require.NoError(t, docs.Insert(context.Background(), PresetOutfit{
			ID: name, Name: name, Images: []OutfitImage{{ID: "i", URL: "https://cdn.test/x"}},
		}))
	}

	outfits := svc.List(context.Background())
	require.Equal(t, []string{"Boho Dress", "monochrome", "zebra print"}, []string{
		outfits[0].Name, outfits[1].Name, outfits[2].Name,
	})

	docs.listErr = errors.New("db gone")
	outfits = svc.List(context.Background())
	require.NotNil(t, outfits)
	require.Empty(t, outfits)
}

func TestRemoveDeletesObjectsAndIgnoresMissing(t *testing.T) {
	docs := newMemDocs()
	objects := newMemObjects()
	svc := newTestService(docs, objects)

	saved, err := svc.Add(context.Background(), PresetOutfit{
		Name:   "Linen Set",
		Images: []OutfitImage{{Data: dataURI("front")}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), saved.ID))
	require.Empty(t, objects.objects)
	require.Empty(t, docs.outfits)

	// second delete of the same id stays silent
	require.NoError(t, svc.Remove(context.Background(), saved.ID))
}

func TestRemovePropagatesObjectDeleteFailure(t *testing.T) {
	docs := newMemDocs()
	objects := newMemObjects()
	svc := newTestService(docs, objects)

	saved, err := svc.Add(context.Background(), PresetOutfit{
		Name:   "Linen Set",
		Images: []OutfitImage{{Data: dataURI("front")}},
	})
	require.NoError(t, err)

	objects.deleteErr = errors.New("backend down")
	err = svc.Remove(context.Background(), saved.ID)
	require.ErrorIs(t, err, ErrRemoveOutfit)
	// the document survives so a retry can release the objects later
	require.Contains(t, docs.outfits, saved.ID)
}

func TestUpdateReplacesImageSet(t *testing.T) {
	docs := newMemDocs()
	objects := newMemObjects()
	svc := newTestService(docs, objects)

	saved, err := svc.Add(context.Background(), PresetOutfit{
		Name: "Linen Set",
		Images: []OutfitImage{
			{Data: dataURI("front"), Angle: "front"},
			{Data: dataURI("back"), Angle: "back"},
		},
	})
	require.NoError(t, err)
	kept := saved.Images[0]

	images := []OutfitImage{kept, {Data: dataURI("detail"), Angle: "detail"}}
	updated, err := svc.Update(context.Background(), saved.ID, UpdateParams{Images: &images})
	require.NoError(t, err)
	require.Len(t, updated.Images, 2)
	require.Equal(t, kept.URL, updated.Images[0].URL)
	require.Empty(t, updated.Images[1].Data)
	require.NotEmpty(t, updated.Images[1].URL)

	// the replaced object is released, the kept and new ones remain
	require.Len(t, objects.objects, 2)
	require.Contains(t, objects.objects, kept.URL)
	require.NotContains(t, objects.objects, saved.Images[1].URL)

	stored, err := docs.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	require.Equal(t, updated, stored)
}

func TestUpdatePartialEdit(t *testing.T) {
	docs := newMemDocs()
	svc := newTestService(docs, newMemObjects())
	require.NoError(t, docs.Insert(context.Background(), PresetOutfit{
		ID:   "t1",
		Name: "Old Name",
		Images: []OutfitImage{
			{ID: "a", URL: "https://cdn.test/a"},
			{ID: "b", URL: "https://cdn.test/b"},
		},
	}))

	name := "New Name"
	updated, err := svc.Update(context.Background(), "t1", UpdateParams{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)
	require.Equal(t, 0, updated.MainImageIndex)

	idx := 1
	updated, err = svc.Update(context.Background(), "t1", UpdateParams{MainImageIndex: &idx})
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)
	require.Equal(t, 1, updated.MainImageIndex)

	blank := "   "
	updated, err = svc.Update(context.Background(), "t1", UpdateParams{Name: &blank})
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)

	idx = 9
	_, err = svc.Update(context.Background(), "t1", UpdateParams{MainImageIndex: &idx})
	require.ErrorIs(t, err, ErrUpdateOutfit)

	_, err = svc.Update(context.Background(), "missing", UpdateParams{Name: &name})
	require.ErrorIs(t, err, ErrOutfitNotFound)
}
