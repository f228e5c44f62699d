// internal/core/wizard/engine_test.go
package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal-bot/internal/core/domain/journal"
	"trading-journal-bot/internal/core/domain/sessions"
	"trading-journal-bot/internal/infrastructure/persistence/in_memory_storage"
)

// fakeLedger - управляемый из теста журнал вместо Notion
type fakeLedger struct {
	maxSeq      int
	maxErr      error
	pageID      string
	createErr   error
	createCalls int
	computed    *journal.ComputedFields
	computedErr error
	recent      []journal.RecordSummary
	recentErr   error
	rootID      string
	dbID        string
	discoverErr error
}

func (f *fakeLedger) CreatePage(ctx context.Context, token, databaseID string, fields map[string]journal.FieldValue, seq int) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.pageID, nil
}

func (f *fakeLedger) MaxSequence(ctx context.Context, token, databaseID string) (int, error) {
	return f.maxSeq, f.maxErr
}

func (f *fakeLedger) ComputedFields(ctx context.Context, token, pageID string) (*journal.ComputedFields, error) {
	return f.computed, f.computedErr
}

func (f *fakeLedger) ListRecent(ctx context.Context, token, databaseID string, limit int) ([]journal.RecordSummary, error) {
	return f.recent, f.recentErr
}

func (f *fakeLedger) Discover(ctx context.Context, token string) (string, string, error) {
	return f.rootID, f.dbID, f.discoverErr
}

// capturedDeferred копит отложенные задачи; тест запускает их сам,
// уже после возврата HandleEvent
type capturedDeferred struct {
	fns []func()
}

func (d *capturedDeferred) After(_ time.Duration, _ string, fn func()) {
	d.fns = append(d.fns, fn)
}

func (d *capturedDeferred) runAll() {
	for _, fn := range d.fns {
		fn()
	}
	d.fns = nil
}

// recordingNotifier запоминает отправленные уведомления
type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Notify(identity, text string) error {
	n.messages = append(n.messages, text)
	return nil
}

type testEnv struct {
	engine   *Engine
	store    *in_memory_storage.SessionStore
	ledger   *fakeLedger
	deferred *capturedDeferred
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := in_memory_storage.NewSessionStore()
	ledger := &fakeLedger{pageID: "page-1"}
	deferred := &capturedDeferred{}
	notifier := &recordingNotifier{}
	engine := NewEngine(store, ledger, deferred, Options{
		AuthURL: func(identity string) string { return "https://notion.example/authorize?state=" + identity },
	})
	engine.SetNotifier(notifier)
	return &testEnv{engine: engine, store: store, ledger: ledger, deferred: deferred, notifier: notifier}
}

// linkSession кладет в хранилище сессию с привязанным Notion
func (env *testEnv) linkSession(t *testing.T, identity string) {
	t.Helper()
	s := sessions.NewSession(identity)
	s.NotionToken = "secret-token"
	s.RootPageID = "root-1"
	s.DatabaseID = "db-1"
	require.NoError(t, env.store.Put(context.Background(), s))
}

func (env *testEnv) handle(t *testing.T, identity string, ev Event) Prompt {
	t.Helper()
	prompt, err := env.engine.HandleEvent(context.Background(), identity, ev)
	require.NoError(t, err)
	return prompt
}

func (env *testEnv) session(t *testing.T, identity string) *sessions.Session {
	t.Helper()
	s, err := env.store.Get(context.Background(), identity)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

// walkToReview доводит черновик до сводки через все тринадцать шагов
func (env *testEnv) walkToReview(t *testing.T, identity string) {
	t.Helper()
	env.handle(t, identity, Start())
	env.handle(t, identity, Select(journal.StepInstrument, "EURUSD"))
	env.handle(t, identity, Select(journal.StepSessionWindow, "London"))
	env.handle(t, identity, Select(journal.StepMarketContext, "Trend"))
	env.handle(t, identity, Select(journal.StepPOIQuality, "Fresh"))
	env.handle(t, identity, Select(journal.StepDeliveryStyle, "Fast"))
	env.handle(t, identity, Select(journal.StepAnchorPoint, "PDH/PDL"))
	env.handle(t, identity, Select(journal.StepTrigger, "Sweep"))
	env.handle(t, identity, Confirm())
	env.handle(t, identity, Select(journal.StepConfirmationSignal, "FVG"))
	env.handle(t, identity, Confirm())
	env.handle(t, identity, Select(journal.StepEntryModel, "Limit"))
	env.handle(t, identity, Select(journal.StepEntryTimeframe, "5m"))
	env.handle(t, identity, Select(journal.StepExitAnchor, "Imbalance"))
	env.handle(t, identity, Select(journal.StepStopLossContext, "Structure"))
	env.handle(t, identity, FreeText("2.5"))
}

func TestUnlinkedUserGetsAuthPrompt(t *testing.T) {
	env := newTestEnv(t)

	prompt := env.handle(t, "42", Start())

	assert.Contains(t, prompt.Text, "підключіть свій Notion")
	require.Len(t, prompt.Buttons, 1)
	assert.Equal(t, "https://notion.example/authorize?state=42", prompt.Buttons[0][0].URL)

	s := env.session(t, "42")
	assert.Equal(t, journal.StepMenu, s.Cursor, "курсор не двигается без привязки")
	assert.Nil(t, s.Draft)
}

func TestSelectAdvancesCursorAndWritesDraft(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")

	env.handle(t, "42", Start())
	prompt := env.handle(t, "42", Select(journal.StepInstrument, "EURUSD"))

	assert.Equal(t, "Session?", prompt.Text)

	s := env.session(t, "42")
	assert.Equal(t, journal.StepSessionWindow, s.Cursor)
	fv, ok := s.Draft.Get("Pair")
	require.True(t, ok)
	assert.Equal(t, "EURUSD", fv.Option)
	assert.Len(t, s.Draft.Values, 1)
}

func TestSelectRejectsStaleStepAndUnknownOption(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.handle(t, "42", Start())

	// Кнопка от другого шага
	env.handle(t, "42", Select(journal.StepSessionWindow, "London"))
	s := env.session(t, "42")
	assert.Equal(t, journal.StepInstrument, s.Cursor)
	assert.Empty(t, s.Draft.Values)

	// Вариант не из списка шага
	env.handle(t, "42", Select(journal.StepInstrument, "DOGEUSD"))
	s = env.session(t, "42")
	assert.Equal(t, journal.StepInstrument, s.Cursor)
	assert.Empty(t, s.Draft.Values)
}

func TestConfirmRejectsEmptySet(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.handle(t, "42", Start())
	env.handle(t, "42", Select(journal.StepInstrument, "EURUSD"))
	env.handle(t, "42", Select(journal.StepSessionWindow, "London"))
	env.handle(t, "42", Select(journal.StepMarketContext, "Trend"))
	env.handle(t, "42", Select(journal.StepPOIQuality, "Fresh"))
	env.handle(t, "42", Select(journal.StepDeliveryStyle, "Fast"))
	env.handle(t, "42", Select(journal.StepAnchorPoint, "PDH/PDL"))

	// Курсор на Trigger, набор пуст
	prompt := env.handle(t, "42", Confirm())
	assert.Contains(t, prompt.Text, textEmptySet)
	assert.Equal(t, journal.StepTrigger, env.session(t, "42").Cursor)

	env.handle(t, "42", Select(journal.StepTrigger, "Sweep"))
	env.handle(t, "42", Confirm())
	assert.Equal(t, journal.StepConfirmationSignal, env.session(t, "42").Cursor)
}

func TestToggleTwiceEmptiesSet(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.handle(t, "42", Start())
	env.handle(t, "42", Select(journal.StepInstrument, "EURUSD"))
	env.handle(t, "42", Select(journal.StepSessionWindow, "London"))
	env.handle(t, "42", Select(journal.StepMarketContext, "Trend"))
	env.handle(t, "42", Select(journal.StepPOIQuality, "Fresh"))
	env.handle(t, "42", Select(journal.StepDeliveryStyle, "Fast"))
	env.handle(t, "42", Select(journal.StepAnchorPoint, "PDH/PDL"))

	env.handle(t, "42", Select(journal.StepTrigger, "Sweep"))
	env.handle(t, "42", Select(journal.StepTrigger, "Sweep"))

	s := env.session(t, "42")
	assert.False(t, s.Draft.Has("Trigger"))

	prompt := env.handle(t, "42", Confirm())
	assert.Contains(t, prompt.Text, textEmptySet)
}

func TestFreeTextRejectsGarbageWithoutMutation(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.handle(t, "42", Start())
	env.handle(t, "42", Select(journal.StepInstrument, "EURUSD"))
	env.handle(t, "42", Select(journal.StepSessionWindow, "London"))
	env.handle(t, "42", Select(journal.StepMarketContext, "Trend"))
	env.handle(t, "42", Select(journal.StepPOIQuality, "Fresh"))
	env.handle(t, "42", Select(journal.StepDeliveryStyle, "Fast"))
	env.handle(t, "42", Select(journal.StepAnchorPoint, "PDH/PDL"))
	env.handle(t, "42", Select(journal.StepTrigger, "Sweep"))
	env.handle(t, "42", Confirm())
	env.handle(t, "42", Select(journal.StepConfirmationSignal, "FVG"))
	env.handle(t, "42", Confirm())
	env.handle(t, "42", Select(journal.StepEntryModel, "Limit"))
	env.handle(t, "42", Select(journal.StepEntryTimeframe, "5m"))
	env.handle(t, "42", Select(journal.StepExitAnchor, "Imbalance"))
	env.handle(t, "42", Select(journal.StepStopLossContext, "Structure"))

	prompt := env.handle(t, "42", FreeText("abc"))
	assert.Equal(t, textBadNumber, prompt.Text)

	s := env.session(t, "42")
	assert.Equal(t, journal.StepRiskReward, s.Cursor)
	assert.False(t, s.Draft.Has("RR"))

	prompt = env.handle(t, "42", FreeText("2.5"))
	assert.Contains(t, prompt.Text, textReviewHeader)

	s = env.session(t, "42")
	assert.Equal(t, journal.StepReview, s.Cursor)
	fv, ok := s.Draft.Get("RR")
	require.True(t, ok)
	assert.Equal(t, "2.5", fv.Number.String())
}

func TestFreeTextReportsMissingFields(t *testing.T) {
	env := newTestEnv(t)

	s := sessions.NewSession("42")
	s.NotionToken = "secret-token"
	s.DatabaseID = "db-1"
	s.Cursor = journal.StepRiskReward
	s.Draft = journal.NewDraft()
	s.Draft.Set("Pair", "EURUSD")
	require.NoError(t, env.store.Put(context.Background(), s))

	prompt := env.handle(t, "42", FreeText("2.5"))
	assert.Contains(t, prompt.Text, "бракує полів")
	assert.Contains(t, prompt.Text, "Session")
	assert.NotContains(t, prompt.Text, "Pair,")

	assert.Equal(t, journal.StepRiskReward, env.session(t, "42").Cursor)
}

func TestBackClearsPreviousField(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.handle(t, "42", Start())
	env.handle(t, "42", Select(journal.StepInstrument, "EURUSD"))
	env.handle(t, "42", Select(journal.StepSessionWindow, "London"))

	// Курсор на Context, назад: Session очищается, Pair остается
	prompt := env.handle(t, "42", Back())
	assert.Equal(t, "Session?", prompt.Text)

	s := env.session(t, "42")
	assert.Equal(t, journal.StepSessionWindow, s.Cursor)
	assert.False(t, s.Draft.Has("Session"))
	assert.True(t, s.Draft.Has("Pair"))
}

func TestBackFromFirstStepIsNoop(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.handle(t, "42", Start())

	prompt := env.handle(t, "42", Back())
	assert.Equal(t, "Pair?", prompt.Text)
	assert.Equal(t, journal.StepInstrument, env.session(t, "42").Cursor)
}

func TestEditFieldReturnsToReview(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.walkToReview(t, "42")

	prompt := env.handle(t, "42", EditMenu())
	assert.Equal(t, textEditMenu, prompt.Text)

	prompt = env.handle(t, "42", EditField("Session"))
	assert.Equal(t, "Session?", prompt.Text)
	assert.True(t, env.session(t, "42").Editing)

	prompt = env.handle(t, "42", Select(journal.StepSessionWindow, "Asia"))
	assert.Contains(t, prompt.Text, textReviewHeader)

	s := env.session(t, "42")
	assert.Equal(t, journal.StepReview, s.Cursor)
	assert.False(t, s.Editing)
	fv, _ := s.Draft.Get("Session")
	assert.Equal(t, "Asia", fv.Option)
	// Остальные поля не тронуты
	fv, _ = s.Draft.Get("Pair")
	assert.Equal(t, "EURUSD", fv.Option)
	assert.Empty(t, s.Draft.Missing())
}

func TestBackDuringEditReturnsToReviewWithoutClearing(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.walkToReview(t, "42")
	env.handle(t, "42", EditMenu())
	env.handle(t, "42", EditField("Trigger"))

	prompt := env.handle(t, "42", Back())
	assert.Contains(t, prompt.Text, textReviewHeader)

	s := env.session(t, "42")
	assert.Equal(t, journal.StepReview, s.Cursor)
	assert.True(t, s.Draft.Has("Trigger"), "назад из правки не очищает поле")
}

func TestCancelKeepsTokenAndHistory(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.walkToReview(t, "42")
	env.handle(t, "42", Submit())
	env.handle(t, "42", Start())
	env.handle(t, "42", Select(journal.StepInstrument, "GBPUSD"))

	prompt := env.handle(t, "42", Cancel())
	assert.Equal(t, textCancelled, prompt.Text)

	s := env.session(t, "42")
	assert.Nil(t, s.Draft)
	assert.Equal(t, journal.StepMenu, s.Cursor)
	assert.Equal(t, "secret-token", s.NotionToken)
	assert.Len(t, s.History, 1)
}

func TestUnknownEventRepeatsCurrentPrompt(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.handle(t, "42", Start())
	env.handle(t, "42", Select(journal.StepInstrument, "EURUSD"))

	prompt := env.handle(t, "42", Event{Kind: EventUnknown})
	assert.Equal(t, "Session?", prompt.Text)
	assert.Equal(t, journal.StepSessionWindow, env.session(t, "42").Cursor)
}

func TestSubmitSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.ledger.maxSeq = 4
	env.walkToReview(t, "42")

	prompt := env.handle(t, "42", Submit())
	assert.Equal(t, textSubmitOK, prompt.Text)

	s := env.session(t, "42")
	assert.Nil(t, s.Draft)
	assert.Equal(t, journal.StepMenu, s.Cursor)
	require.Len(t, s.History, 1)
	assert.Equal(t, 5, s.History[0].Seq, "номер записи max+1")
	assert.Equal(t, "page-1", s.History[0].PageID)
	assert.NotEmpty(t, s.History[0].Key)
	assert.Nil(t, s.History[0].Computed)
	assert.Len(t, env.deferred.fns, 1, "запрос оценки отложен")
}

func TestSubmitFailureKeepsDraftAtReview(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.ledger.createErr = errors.New("notion: 502")
	env.walkToReview(t, "42")

	prompt := env.handle(t, "42", Submit())
	assert.Contains(t, prompt.Text, textSubmitFail)

	s := env.session(t, "42")
	assert.Equal(t, journal.StepReview, s.Cursor)
	require.NotNil(t, s.Draft)
	assert.Empty(t, s.Draft.Missing(), "черновик цел, отправку можно повторить")
	assert.Empty(t, s.History)
	assert.Empty(t, env.deferred.fns)
}

func TestSubmitTreatsMaxSequenceErrorAsEmptyBase(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.ledger.maxErr = errors.New("notion: timeout")
	env.walkToReview(t, "42")

	env.handle(t, "42", Submit())

	s := env.session(t, "42")
	require.Len(t, s.History, 1)
	assert.Equal(t, 1, s.History[0].Seq)
}

func TestDeferredFetchNotifiesAndAttachesScore(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	score := 8.0
	risk := 1.5
	env.ledger.computed = &journal.ComputedFields{Score: &score, Class: "A", SuggestedRisk: &risk}
	env.walkToReview(t, "42")
	env.handle(t, "42", Submit())

	env.deferred.runAll()

	require.Len(t, env.notifier.messages, 1)
	assert.Contains(t, env.notifier.messages[0], "Трейд #1 оцінено!")
	assert.Contains(t, env.notifier.messages[0], "Score: 8.0")
	assert.Contains(t, env.notifier.messages[0], "Class: A")
	assert.Contains(t, env.notifier.messages[0], "Risk: 1.50%")

	s := env.session(t, "42")
	require.NotNil(t, s.History[0].Computed)
	assert.Equal(t, 8.0, *s.History[0].Computed.Score)
}

func TestDeferredFetchFailureNotifiesSavedWithoutScore(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.ledger.computedErr = errors.New("notion: 404")
	env.walkToReview(t, "42")
	env.handle(t, "42", Submit())

	env.deferred.runAll()

	require.Len(t, env.notifier.messages, 1)
	assert.Equal(t, textSavedNoScore, env.notifier.messages[0])
	assert.Nil(t, env.session(t, "42").History[0].Computed)
}

func TestHistoryBoundedByLimit(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")

	for i := 0; i < 7; i++ {
		env.ledger.maxSeq = i
		env.walkToReview(t, "42")
		env.handle(t, "42", Submit())
	}

	s := env.session(t, "42")
	require.Len(t, s.History, journal.DefaultHistoryLimit)
	assert.Equal(t, 7, s.History[0].Seq)
	assert.Equal(t, 3, s.History[4].Seq)
}

func TestShowLast(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")

	prompt := env.handle(t, "42", ShowLast())
	assert.Equal(t, textNoTrades, prompt.Text)

	env.walkToReview(t, "42")
	env.handle(t, "42", Submit())

	prompt = env.handle(t, "42", ShowLast())
	assert.Contains(t, prompt.Text, "Трейд #1")
	assert.Contains(t, prompt.Text, "Pair: EURUSD")
}

func TestShowRecentReadsLedger(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	score := 7.5
	env.ledger.recent = []journal.RecordSummary{
		{Seq: 3, Pair: "EURUSD", RR: "2.5", Score: &score},
		{Seq: 2, Pair: "GBPUSD", RR: "3"},
	}

	prompt := env.handle(t, "42", ShowRecent(0))
	assert.Contains(t, prompt.Text, "#3 EURUSD RR=2.5 Score=7.5")
	assert.Contains(t, prompt.Text, "#2 GBPUSD RR=3")
}

func TestShowRecentFailure(t *testing.T) {
	env := newTestEnv(t)
	env.linkSession(t, "42")
	env.ledger.recentErr = errors.New("notion: 500")

	prompt := env.handle(t, "42", ShowRecent(0))
	assert.Equal(t, textListFail, prompt.Text)
}

func TestDiscoveryFlow(t *testing.T) {
	env := newTestEnv(t)

	// Токен есть, база еще не найдена
	s := sessions.NewSession("42")
	s.NotionToken = "secret-token"
	require.NoError(t, env.store.Put(context.Background(), s))

	env.ledger.discoverErr = errors.New("notion: no access")
	prompt := env.handle(t, "42", Discover())
	assert.Contains(t, prompt.Text, "не знайдена")

	env.ledger.discoverErr = nil
	env.ledger.rootID = "root-1"
	env.ledger.dbID = "db-1"
	prompt = env.handle(t, "42", Discover())
	assert.Equal(t, textMenu, prompt.Text)

	got := env.session(t, "42")
	assert.Equal(t, "root-1", got.RootPageID)
	assert.Equal(t, "db-1", got.DatabaseID)
}
