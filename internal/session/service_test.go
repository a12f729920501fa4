package session

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/1Welcorn/Estilista-Virtual/internal/infra"
)

type fakeStylist struct {
	composeResult string
	composeErr    error
	composeGate   chan struct{}
	instruction   string

	name    string
	nameErr error
	bgs     []string
	bgErr   error
}

func (f *fakeStylist) ComposeOutfit(ctx context.Context, personURI, garmentURI, refinements string) (string, error) {
	f.instruction = refinements
	if f.composeGate != nil {
		<-f.composeGate
	}
	return f.composeResult, f.composeErr
}

func (f *fakeStylist) SuggestTrendName(ctx context.Context, garmentURI string) (string, error) {
	return f.name, f.nameErr
}

func (f *fakeStylist) SuggestBackgrounds(ctx context.Context, garmentURI string) ([]string, error) {
	return f.bgs, f.bgErr
}

type fakeFetcher struct {
	encoded string
	err     error
	url     string
}

func (f *fakeFetcher) EncodeRemote(ctx context.Context, url string) (string, error) {
	f.url = url
	return f.encoded, f.err
}

func newTestService(stylist *fakeStylist, fetcher *fakeFetcher) *Service {
	if fetcher == nil {
		fetcher = &fakeFetcher{}
	}
	logger := infra.Logger(zerolog.Nop())
	return NewService(NewStore(0), stylist, fetcher, &logger)
}

func uri(payload string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestSelectionPhases(t *testing.T) {
	svc := newTestService(&fakeStylist{name: "Linen Set", bgs: []string{"a sunny beach"}}, nil)
	v := svc.Create()
	require.Equal(t, PhaseEmpty, v.Phase)

	v, err := svc.SetModelImage(context.Background(), v.ID, uri("model"))
	require.NoError(t, err)
	require.Equal(t, PhaseModelSelected, v.Phase)

	v, err = svc.SetGarmentImage(context.Background(), v.ID, uri("garment"))
	require.NoError(t, err)
	require.Equal(t, PhaseReadyToStyle, v.Phase)
	require.Equal(t, "Linen Set", v.TrendName)
	require.Equal(t, []string{"a sunny beach"}, v.Backgrounds)
	require.Empty(t, v.AnalysisWarning)
}

func TestSetModelImageRejectsMalformed(t *testing.T) {
	svc := newTestService(&fakeStylist{}, nil)
	v := svc.Create()
	_, err := svc.SetModelImage(context.Background(), v.ID, "not-a-data-uri")
	require.Error(t, err)
}

func TestAnalysisPartialFailureKeepsSuccess(t *testing.T) {
	svc := newTestService(&fakeStylist{
		name:  "quantum weave jacket",
		bgErr: errors.New("model unavailable"),
	}, nil)
	v := svc.Create()
	_, err := svc.SetModelImage(context.Background(), v.ID, uri("model"))
	require.NoError(t, err)

	v, err = svc.SetGarmentImage(context.Background(), v.ID, uri("garment"))
	require.NoError(t, err)
	require.Equal(t, PhaseReadyToStyle, v.Phase)
	require.Equal(t, "Quantum Weave Jacket", v.TrendName)
	require.Empty(t, v.Backgrounds)
	require.NotEmpty(t, v.AnalysisWarning)
}

func TestToggleRefinementTwiceRestoresSet(t *testing.T) {
	svc := newTestService(&fakeStylist{}, nil)
	v := svc.Create()

	for _, phrase := range []string{"add a stylish handbag", "add sunglasses", "add a hat"} {
		var err error
		v, err = svc.ToggleRefinement(v.ID, phrase)
		require.NoError(t, err)
	}
	require.Equal(t, []string{"add a stylish handbag", "add sunglasses", "add a hat"}, v.Refinements)

	v, err := svc.ToggleRefinement(v.ID, "add sunglasses")
	require.NoError(t, err)
	require.Equal(t, []string{"add a stylish handbag", "add a hat"}, v.Refinements)

	v, err = svc.ToggleRefinement(v.ID, "add sunglasses")
	require.NoError(t, err)
	require.Equal(t, []string{"add a stylish handbag", "add a hat", "add sunglasses"}, v.Refinements)
}

func TestSelectBackgroundSingleSelect(t *testing.T) {
	svc := newTestService(&fakeStylist{}, nil)
	v := svc.Create()

	v, err := svc.SelectBackground(v.ID, "a neutral studio backdrop")
	require.NoError(t, err)
	require.Equal(t, "a neutral studio backdrop", v.Background)

	v, err = svc.SelectBackground(v.ID, "a sunny beach")
	require.NoError(t, err)
	require.Equal(t, "a sunny beach", v.Background)

	v, err = svc.SelectBackground(v.ID, "a sunny beach")
	require.NoError(t, err)
	require.Empty(t, v.Background)
}

func TestGenerateRequiresBothImages(t *testing.T) {
	svc := newTestService(&fakeStylist{}, nil)
	v := svc.Create()
	_, err := svc.Generate(context.Background(), v.ID)
	require.ErrorIs(t, err, ErrNotReady)
}

func TestGenerateFailureReturnsToReadyToStyle(t *testing.T) {
	stylist := &fakeStylist{composeErr: errors.New("quota exhausted")}
	svc := newTestService(stylist, nil)
	v := svc.Create()
	_, err := svc.SetModelImage(context.Background(), v.ID, uri("model"))
	require.NoError(t, err)
	_, err = svc.SetGarmentImage(context.Background(), v.ID, uri("garment"))
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), v.ID)
	require.Error(t, err)

	v, err = svc.Get(v.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseReadyToStyle, v.Phase)
	require.Empty(t, v.Result)
}

func TestGenerateRejectsConcurrentSubmission(t *testing.T) {
	stylist := &fakeStylist{composeResult: uri("result"), composeGate: make(chan struct{})}
	svc := newTestService(stylist, nil)
	v := svc.Create()
	_, err := svc.SetModelImage(context.Background(), v.ID, uri("model"))
	require.NoError(t, err)
	_, err = svc.SetGarmentImage(context.Background(), v.ID, uri("garment"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(context.Background(), v.ID)
		done <- err
	}()

	require.Eventually(t, func() bool {
		current, err := svc.Get(v.ID)
		return err == nil && current.Phase == PhaseGenerating
	}, time.Second, time.Millisecond)

	_, err = svc.Generate(context.Background(), v.ID)
	require.ErrorIs(t, err, ErrGenerationInFlight)

	close(stylist.composeGate)
	require.NoError(t, <-done)
}

func TestSelectPresetGarmentFetchesRemoteURL(t *testing.T) {
	fetcher := &fakeFetcher{encoded: uri("fetched-garment")}
	svc := newTestService(&fakeStylist{name: "Boho Dress"}, fetcher)
	v := svc.Create()
	_, err := svc.SetModelImage(context.Background(), v.ID, uri("model"))
	require.NoError(t, err)

	v, err = svc.SelectPresetGarment(context.Background(), v.ID, "https://cdn.test/trends/t1/a.png")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/trends/t1/a.png", fetcher.url)
	require.Equal(t, PhaseReadyToStyle, v.Phase)
	require.True(t, v.HasGarmentImage)
	require.Equal(t, "Boho Dress", v.TrendName)
}

func TestFullFlowSaveToLookbook(t *testing.T) {
	result := uri("composited")
	stylist := &fakeStylist{composeResult: result, bgs: []string{"studio"}}
	svc := newTestService(stylist, nil)
	v := svc.Create()

	_, err := svc.SetModelImage(context.Background(), v.ID, uri("model"))
	require.NoError(t, err)
	v, err = svc.SetGarmentImage(context.Background(), v.ID, uri("garment"))
	require.NoError(t, err)
	require.Equal(t, PhaseReadyToStyle, v.Phase)

	_, err = svc.ToggleRefinement(v.ID, "add a stylish handbag")
	require.NoError(t, err)
	_, err = svc.SelectBackground(v.ID, "studio")
	require.NoError(t, err)

	v, err = svc.Generate(context.Background(), v.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseResultReady, v.Phase)
	require.Equal(t, result, v.Result)
	require.Contains(t, stylist.instruction, "handbag")
	require.Contains(t, stylist.instruction, "studio")

	v, err = svc.SaveToLookbook(v.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseEmpty, v.Phase)
	require.Len(t, v.Lookbook, 1)
	require.Equal(t, result, v.Lookbook[0])
	require.Empty(t, v.Refinements)
	require.False(t, v.HasModelImage)
	require.False(t, v.HasGarmentImage)
}

func TestDiscardKeepsLookbook(t *testing.T) {
	result := uri("composited")
	stylist := &fakeStylist{composeResult: result}
	svc := newTestService(stylist, nil)
	v := svc.Create()

	_, err := svc.SetModelImage(context.Background(), v.ID, uri("model"))
	require.NoError(t, err)
	_, err = svc.SetGarmentImage(context.Background(), v.ID, uri("garment"))
	require.NoError(t, err)
	_, err = svc.Generate(context.Background(), v.ID)
	require.NoError(t, err)
	_, err = svc.SaveToLookbook(v.ID)
	require.NoError(t, err)

	_, err = svc.SetModelImage(context.Background(), v.ID, uri("model-2"))
	require.NoError(t, err)
	v, err = svc.Discard(v.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseEmpty, v.Phase)
	require.Len(t, v.Lookbook, 1)
}

func TestSaveWithoutResult(t *testing.T) {
	svc := newTestService(&fakeStylist{}, nil)
	v := svc.Create()
	_, err := svc.SaveToLookbook(v.ID)
	require.ErrorIs(t, err, ErrNoResult)
}

func TestUnknownSession(t *testing.T) {
	svc := newTestService(&fakeStylist{}, nil)
	_, err := svc.Get("nope")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestBuildInstruction(t *testing.T) {
	got := buildInstruction([]string{"add a hat", "add sunglasses"}, "a sunny beach")
	require.True(t, strings.Contains(got, "add a hat"))
	require.True(t, strings.Contains(got, "add sunglasses"))
	require.True(t, strings.Contains(got, "The background should be a sunny beach."))
}
