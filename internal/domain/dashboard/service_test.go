package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ari-dashboard/backend/internal/domain/feed"
	"github.com/ari-dashboard/backend/internal/domain/preset"
	"github.com/ari-dashboard/backend/internal/domain/status"
	"github.com/ari-dashboard/backend/internal/domain/widget"
	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
	"github.com/ari-dashboard/backend/internal/infrastructure/storage"
	"github.com/ari-dashboard/backend/internal/shared/clock"
	apperrors "github.com/ari-dashboard/backend/internal/shared/errors"
	"github.com/ari-dashboard/backend/internal/shared/types"
)

type recorder struct {
	mu     sync.Mutex
	events []types.Event
}

func (r *recorder) Publish(e types.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) names() []types.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func (r *recorder) last() types.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type fixture struct {
	svc   *Service
	rec   *recorder
	blobs *storage.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), time.Second)
	blobs := storage.NewMemoryStore()
	logger := logging.NewNop()

	widgets := widget.NewStore(blobs, logger).WithClock(clk)
	require.NoError(t, widgets.Load(ctx))
	presets := preset.NewStore(blobs, logger).WithClock(clk)
	require.NoError(t, presets.Load(ctx))

	rec := &recorder{}
	svc := NewService(Stores{
		Widgets: widgets,
		Presets: presets,
		Status:  status.NewStore(clk, logger),
		Feed:    feed.NewStore(clk, logger),
	}, rec, logger)
	return &fixture{svc: svc, rec: rec, blobs: blobs}
}

func textTemplate(title, content string) types.WidgetTemplate {
	return types.WidgetTemplate{Type: types.WidgetText, Title: title, Data: &types.TextData{Content: content}}
}

func weatherTemplate() types.WidgetTemplate {
	return types.WidgetTemplate{
		Type:     types.WidgetWeather,
		Title:    "Weather",
		Data:     &types.WeatherData{Location: "Berlin", ZipCode: "10115"},
		Position: &types.Position{X: 6, Y: 0, W: 6, H: 4},
	}
}

func repeat(t types.EventType, n int) []types.EventType {
	out := make([]types.EventType, n)
	for i := range out {
		out[i] = t
	}
	return out
}

func TestCreateUpdateDeletePublish(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	w, err := f.svc.CreateWidget(ctx, textTemplate("Notes", "a"))
	require.NoError(t, err)
	assert.Equal(t, types.WidgetCreatedEvent(w), f.rec.last())

	title := "Renamed"
	updated, err := f.svc.UpdateWidget(ctx, w.ID, types.WidgetPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, types.WidgetUpdatedEvent(updated), f.rec.last())

	require.NoError(t, f.svc.DeleteWidget(ctx, w.ID))
	assert.Equal(t, types.Event{Type: types.EventWidgetDeleted, Data: types.WidgetDeleted{ID: w.ID}}, f.rec.last())

	assert.Equal(t, []types.EventType{
		types.EventWidgetCreated, types.EventWidgetUpdated, types.EventWidgetDeleted,
	}, f.rec.names())
}

func TestFailedOperationsPublishNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateWidget(ctx, types.WidgetTemplate{Type: types.WidgetText})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	_, err = f.svc.UpdateWidget(ctx, "missing", types.WidgetPatch{})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	assert.True(t, apperrors.Is(f.svc.DeleteWidget(ctx, "missing"), apperrors.CodeNotFound))

	f.blobs.FailWrites(errors.New("disk full"))
	_, err = f.svc.CreateWidget(ctx, textTemplate("Notes", "a"))
	assert.True(t, apperrors.Is(err, apperrors.CodePersistence))

	assert.Empty(t, f.rec.names())
}

func TestCreatedIDsAreUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	seen := map[string]bool{widget.SeedID: true}
	for i := 0; i < 50; i++ {
		w, err := f.svc.CreateWidget(ctx, textTemplate("Notes", "x"))
		require.NoError(t, err)
		assert.False(t, seen[w.ID], "duplicate id %s", w.ID)
		seen[w.ID] = true
	}
}

func TestActivatePresetSequence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.CreateWidget(ctx, textTemplate("A", "a"))
	require.NoError(t, err)
	_, err = f.svc.CreateWidget(ctx, textTemplate("B", "b"))
	require.NoError(t, err)
	require.Equal(t, 3, f.svc.WidgetCount())

	_, err = f.svc.SavePreset(ctx, types.SavePresetRequest{
		Name:        "p",
		DisplayName: "Preset P",
		Widgets:     []types.WidgetTemplate{textTemplate("w1", "one"), weatherTemplate()},
	})
	require.NoError(t, err)
	f.rec.reset()

	activated, err := f.svc.ActivatePreset(ctx, "p")
	require.NoError(t, err)

	want := append(repeat(types.EventWidgetDeleted, 3), repeat(types.EventWidgetCreated, 2)...)
	want = append(want, types.EventPresetActivated)
	assert.Equal(t, want, f.rec.names())
	assert.Equal(t, types.PresetActivated{
		PresetName:        "p",
		PresetDisplayName: "Preset P",
		WidgetCount:       2,
	}, f.rec.last().Data)

	require.Len(t, activated.Widgets, 2)
	live := f.svc.ListWidgets()
	require.Len(t, live, 2)
	for i, w := range activated.Widgets {
		assert.Equal(t, live[i].ID, w.ID)
	}
	assert.Equal(t, "w1", live[0].Title)
	assert.Equal(t, types.DefaultPosition, live[0].Position)
	assert.Equal(t, types.Position{X: 6, Y: 0, W: 6, H: 4}, live[1].Position)
}

func TestActivateUnknownPresetHasNoSideEffects(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ActivatePreset(context.Background(), "missing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.Equal(t, 1, f.svc.WidgetCount())
	assert.Empty(t, f.rec.names())
}

func TestActivateDefaultPreset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.ActivateDefaultPreset(ctx)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	_, err = f.svc.SavePreset(ctx, types.SavePresetRequest{
		Name: "briefing", DisplayName: "Briefing", IsDefault: true,
		Widgets: []types.WidgetTemplate{textTemplate("Agenda", "9:00")},
	})
	require.NoError(t, err)

	activated, err := f.svc.ActivateDefaultPreset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "briefing", activated.Name)
	assert.Equal(t, 1, f.svc.WidgetCount())
}

func TestFocusUnfocusRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.svc.DeleteWidget(ctx, widget.SeedID))
	a := textTemplate("A", "alpha")
	a.Position = &types.Position{X: 0, Y: 0, W: 4, H: 2}
	b := weatherTemplate()
	wa, err := f.svc.CreateWidget(ctx, a)
	require.NoError(t, err)
	wb, err := f.svc.CreateWidget(ctx, b)
	require.NoError(t, err)
	f.rec.reset()

	focused, err := f.svc.Focus(ctx, wa.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FullscreenPosition, focused.Position)
	assert.True(t, f.svc.Focused())

	live := f.svc.ListWidgets()
	require.Len(t, live, 1)
	assert.Equal(t, wa.ID, live[0].ID)
	assert.Equal(t, types.FullscreenPosition, live[0].Position)
	assert.Equal(t, []types.EventType{types.EventWidgetDeleted, types.EventWidgetUpdated}, f.rec.names())
	f.rec.reset()

	restored, err := f.svc.Unfocus(ctx)
	require.NoError(t, err)
	assert.False(t, f.svc.Focused())
	assert.Equal(t, []types.EventType{
		types.EventWidgetDeleted, types.EventWidgetCreated, types.EventWidgetCreated,
	}, f.rec.names())

	live = f.svc.ListWidgets()
	require.Len(t, live, 2)
	assert.Len(t, restored, 2)
	originals := []*types.Widget{wa, wb}
	for i, w := range live {
		o := originals[i]
		assert.NotEqual(t, o.ID, w.ID)
		assert.Equal(t, o.Type, w.Type)
		assert.Equal(t, o.Title, w.Title)
		assert.Equal(t, o.Data, w.Data)
		assert.Equal(t, o.Position, w.Position)
	}
}

func TestFocusTwiceKeepsLatestBackup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	w, err := f.svc.CreateWidget(ctx, textTemplate("A", "a"))
	require.NoError(t, err)

	_, err = f.svc.Focus(ctx, w.ID)
	require.NoError(t, err)
	_, err = f.svc.Focus(ctx, w.ID)
	require.NoError(t, err)

	restored, err := f.svc.Unfocus(ctx)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, types.FullscreenPosition, restored[0].Position)
}

func TestFocusUnknownWidget(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Focus(context.Background(), "missing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.False(t, f.svc.Focused())
	assert.Empty(t, f.rec.names())
}

func TestUnfocusWithoutBackup(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Unfocus(ctx)
	assert.True(t, apperrors.Is(err, apperrors.CodeNoBackup))
	assert.Equal(t, 1, f.svc.WidgetCount())

	_, err = f.svc.Focus(ctx, widget.SeedID)
	require.NoError(t, err)
	_, err = f.svc.Unfocus(ctx)
	require.NoError(t, err)

	before := f.svc.ListWidgets()
	_, err = f.svc.Unfocus(ctx)
	assert.True(t, apperrors.Is(err, apperrors.CodeNoBackup))
	assert.Equal(t, before, f.svc.ListWidgets())
}

func TestEndToEndBriefing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	seeded := f.svc.ListWidgets()
	require.Len(t, seeded, 1)
	assert.Equal(t, types.WidgetHome, seeded[0].Type)

	_, err := f.svc.SavePreset(ctx, types.SavePresetRequest{
		Name:        "briefing",
		DisplayName: "Briefing",
		Widgets:     []types.WidgetTemplate{textTemplate("Agenda", "9:00 standup"), weatherTemplate()},
	})
	require.NoError(t, err)

	_, err = f.svc.ActivatePreset(ctx, "briefing")
	require.NoError(t, err)

	live := f.svc.ListWidgets()
	require.Len(t, live, 2)
	assert.Equal(t, types.WidgetText, live[0].Type)
	assert.Equal(t, types.WidgetWeather, live[1].Type)
	assert.NotEqual(t, widget.SeedID, live[0].ID)
	assert.Equal(t, []types.EventType{
		types.EventWidgetDeleted,
		types.EventWidgetCreated,
		types.EventWidgetCreated,
		types.EventPresetActivated,
	}, f.rec.names())
}

func TestConcurrentActivationsDoNotInterleave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, name := range []string{"one", "two"} {
		_, err := f.svc.SavePreset(ctx, types.SavePresetRequest{
			Name:        name,
			DisplayName: name,
			Widgets:     []types.WidgetTemplate{textTemplate(name+"-a", "a"), textTemplate(name+"-b", "b")},
		})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for _, name := range []string{"one", "two", "one", "two"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := f.svc.ActivatePreset(ctx, name)
			assert.NoError(t, err)
		}(name)
	}
	wg.Wait()

	live := f.svc.ListWidgets()
	require.Len(t, live, 2)
	assert.Equal(t, live[0].Title[:3], live[1].Title[:3])

	// Each activation is a contiguous run ending in preset:activated.
	creates := 0
	for _, name := range f.rec.names() {
		switch name {
		case types.EventWidgetDeleted:
			assert.Equal(t, 0, creates)
		case types.EventWidgetCreated:
			creates++
		case types.EventPresetActivated:
			assert.Equal(t, 2, creates)
			creates = 0
		}
	}
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(e types.Event) {
	m.Called(e)
}

func TestStatusAndFeedPublish(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC), time.Second)
	logger := logging.NewNop()
	pub := &mockPublisher{}
	svc := NewService(Stores{
		Status: status.NewStore(clk, logger),
		Feed:   feed.NewStore(clk, logger),
	}, pub, logger)

	pub.On("Publish", mock.MatchedBy(func(e types.Event) bool {
		st, ok := e.Data.(*types.AriStatus)
		return e.Type == types.EventStatusUpdated && ok && st.State == types.StateWorking
	})).Once()
	pub.On("Publish", mock.MatchedBy(func(e types.Event) bool {
		entry, ok := e.Data.(*types.FeedEntry)
		return e.Type == types.EventFeedNew && ok && entry.Message == "Reading mail"
	})).Once()

	working := types.StateWorking
	st, err := svc.UpdateStatus(types.StatusPatch{State: &working})
	require.NoError(t, err)
	assert.Equal(t, types.StateWorking, svc.Status().State)
	assert.Equal(t, st.UpdatedAt, svc.Status().UpdatedAt)

	_, err = svc.AddFeedEntry(types.FeedEntryRequest{Type: types.FeedTaskStarted, Message: "Reading mail"})
	require.NoError(t, err)
	assert.Len(t, svc.FeedEntries(50), 1)

	_, err = svc.AddFeedEntry(types.FeedEntryRequest{Type: "bogus", Message: "x"})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	pub.AssertExpectations(t)
}
