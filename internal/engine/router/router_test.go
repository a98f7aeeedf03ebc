package router

import (
	"context"
	"testing"
	"time"

	"gastino/internal/ai"
	"gastino/internal/alert"
	apperrors "gastino/internal/common/errors"
	"gastino/internal/common/logger"
	"gastino/internal/engine/classifier"
	"gastino/internal/engine/handlers/autoreply"
	"gastino/internal/engine/handlers/escalation"
	"gastino/internal/engine/handlers/orders"
	"gastino/internal/engine/handlers/reservations"
	"gastino/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeResolver struct {
	snap *models.TenantSnapshot
	err  error
}

func (f *fakeResolver) Resolve(context.Context, string) (*models.TenantSnapshot, error) {
	return f.snap, f.err
}

type fakeGuests struct {
	guest       *models.Guest
	langUpdates []string
	locUpdates  []string
}

func (f *fakeGuests) GetOrCreateGuest(context.Context, string, string, string) (*models.Guest, error) {
	return f.guest, nil
}

func (f *fakeGuests) GuestByID(context.Context, string) (*models.Guest, error) {
	return f.guest, nil
}

func (f *fakeGuests) UpdateGuestLanguage(_ context.Context, _ string, lang string) error {
	f.langUpdates = append(f.langUpdates, lang)
	return nil
}

func (f *fakeGuests) UpdateGuestLocation(_ context.Context, _ string, room, table string) error {
	f.locUpdates = append(f.locUpdates, room+"/"+table)
	return nil
}

type fakeMessages struct {
	saved   []*models.MessageRecord
	history []models.MessageRecord
}

func (f *fakeMessages) SaveMessage(_ context.Context, m *models.MessageRecord) error {
	f.saved = append(f.saved, m)
	return nil
}

func (f *fakeMessages) History(context.Context, string, string, int) ([]models.MessageRecord, error) {
	return f.history, nil
}

type fakeConfirmer struct {
	order *models.Order
	err   error
	calls int
}

func (f *fakeConfirmer) ConfirmLatestPending(context.Context, string, string) (*models.Order, error) {
	f.calls++
	return f.order, f.err
}

type fakeStates struct {
	state *models.ConversationState
	puts  []*models.ConversationState
}

func (f *fakeStates) Get(_ context.Context, tenantID, guestID, defaultLanguage string) (*models.ConversationState, error) {
	if f.state == nil {
		f.state = &models.ConversationState{TenantID: tenantID, GuestID: guestID, Language: defaultLanguage}
	}
	return f.state, nil
}

func (f *fakeStates) Put(_ context.Context, st *models.ConversationState) error {
	f.puts = append(f.puts, st)
	return nil
}

type fakeClassifier struct {
	intent *models.Intent
	err    error
}

func (f *fakeClassifier) Classify(context.Context, classifier.Input) (*models.Intent, error) {
	return f.intent, f.err
}

type fakeOrderStore struct {
	orders []*models.Order
}

func (f *fakeOrderStore) CreateOrder(_ context.Context, o *models.Order) error {
	f.orders = append(f.orders, o)
	return nil
}

type fakeReservationStore struct {
	reservations []*models.Reservation
}

func (f *fakeReservationStore) CreateReservation(_ context.Context, r *models.Reservation) error {
	f.reservations = append(f.reservations, r)
	return nil
}

type fakeSender struct {
	to    []string
	texts []string
}

func (f *fakeSender) SendText(_ context.Context, to, text string) error {
	f.to = append(f.to, to)
	f.texts = append(f.texts, text)
	return nil
}

type providerFunc func(ctx context.Context, req ai.Request) (string, error)

func (f providerFunc) Complete(ctx context.Context, req ai.Request) (string, error) {
	return f(ctx, req)
}

// --- fixture ---

type fixture struct {
	router    *Router
	resolver  *fakeResolver
	guests    *fakeGuests
	messages  *fakeMessages
	confirmer *fakeConfirmer
	states    *fakeStates
	intents   *fakeClassifier
	sender    *fakeSender
	alerts    *alert.Recorder
	ordersDB  *fakeOrderStore
}

func testSnapshot() *models.TenantSnapshot {
	return &models.TenantSnapshot{
		Tenant: models.Tenant{ID: "tenant-1", Name: "Hotel Sonnenhof", ChannelID: "channel-1", Languages: []string{"de", "it", "en"}},
		Departments: []models.Department{
			{ID: "dept-kitchen", Name: "Küche", GroupChannelID: "group-kitchen", Position: 1, Active: true},
			{ID: "dept-bar", Name: "Bar", GroupChannelID: "group-bar", Position: 2, Active: true},
			{ID: "dept-reception", Name: "Rezeption", GroupChannelID: "group-reception", Position: 3, IsEscalation: true, Active: true},
		},
	}
}

func newFixture(t *testing.T, intent *models.Intent, classifyErr error) *fixture {
	t.Helper()
	log := logger.NewTestLogger(t)

	f := &fixture{
		resolver:  &fakeResolver{snap: testSnapshot()},
		guests:    &fakeGuests{guest: &models.Guest{ID: "guest-1", TenantID: "tenant-1", ChannelID: "+4912345", Name: "Anna"}},
		messages:  &fakeMessages{},
		confirmer: &fakeConfirmer{},
		states:    &fakeStates{},
		intents:   &fakeClassifier{intent: intent, err: classifyErr},
		sender:    &fakeSender{},
		alerts:    &alert.Recorder{},
		ordersDB:  &fakeOrderStore{},
	}

	provider := providerFunc(func(_ context.Context, _ ai.Request) (string, error) {
		return "Das Frühstück gibt es bis 10:30 Uhr.", nil
	})

	handlers := Handlers{
		AutoReply:    autoreply.NewHandler(provider, autoreply.DefaultConfig(), log),
		Orders:       orders.NewHandler(f.ordersDB, f.sender, f.alerts, log),
		Reservations: reservations.NewHandler(&fakeReservationStore{}, f.sender, f.alerts, log),
		Escalation:   escalation.NewHandler(f.sender, f.alerts, log),
	}

	f.router = New(
		Config{MessageTimeout: 25 * time.Second, HistoryLimit: 20, ConfirmEmoji: "\U0001F44D"},
		f.resolver, f.guests, f.messages, f.confirmer, f.states, f.intents,
		handlers, f.sender, nil, f.alerts, nil, log,
	)
	return f
}

func inbound(text string) *models.InboundMessage {
	return &models.InboundMessage{
		ChannelID:  "channel-1",
		From:       "+4912345",
		Text:       text,
		ReceivedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

// --- tests ---

func TestProcessDropsUnknownTenantWithoutReply(t *testing.T) {
	f := newFixture(t, &models.Intent{Category: models.IntentGeneralQuestion, Language: "de"}, nil)
	f.resolver.snap = nil
	f.resolver.err = apperrors.NewTenantNotFoundError("channel-x")

	f.router.Process(context.Background(), inbound("Hallo?"))

	assert.Empty(t, f.sender.to, "no guest reply for an unresolvable tenant")
	assert.Empty(t, f.messages.saved)
	require.Len(t, f.alerts.Subjects, 1)
	assert.Equal(t, "message dropped: unresolvable tenant", f.alerts.Subjects[0])
}

func TestProcessRoutesUnknownToEscalation(t *testing.T) {
	f := newFixture(t, &models.Intent{Category: models.IntentUnknown, Language: "de"}, nil)

	f.router.Process(context.Background(), inbound("askdjhasd"))

	require.Len(t, f.sender.to, 2)
	assert.Equal(t, "group-reception", f.sender.to[0], "verbatim forward to the escalation group first")
	assert.Contains(t, f.sender.texts[0], "askdjhasd")
	assert.Equal(t, "+4912345", f.sender.to[1])
	assert.Contains(t, f.sender.texts[1], "Team")
}

func TestProcessAnswersGeneralQuestion(t *testing.T) {
	f := newFixture(t, &models.Intent{Category: models.IntentGeneralQuestion, Language: "de"}, nil)

	f.router.Process(context.Background(), inbound("Bis wann gibt es Frühstück?"))

	require.Len(t, f.sender.to, 1)
	assert.Equal(t, "+4912345", f.sender.to[0])
	assert.Equal(t, "Das Frühstück gibt es bis 10:30 Uhr.", f.sender.texts[0])
}

func TestProcessLogsInboundAndOutbound(t *testing.T) {
	f := newFixture(t, &models.Intent{Category: models.IntentGeneralQuestion, Language: "de"}, nil)

	f.router.Process(context.Background(), inbound("Bis wann gibt es Frühstück?"))

	require.Len(t, f.messages.saved, 2)
	assert.Equal(t, models.DirectionInbound, f.messages.saved[0].Direction)
	assert.Equal(t, "Bis wann gibt es Frühstück?", f.messages.saved[0].Content)
	assert.Equal(t, string(models.IntentGeneralQuestion), f.messages.saved[0].Intent)
	assert.Equal(t, models.DirectionOutbound, f.messages.saved[1].Direction)
}

func TestProcessOrderItemUpdatesDraftAndState(t *testing.T) {
	f := newFixture(t, &models.Intent{
		Category: models.IntentOrderItem,
		Language: "de",
		Items:    []models.OrderItem{{Name: "Aperol Spritz", Quantity: 2}},
	}, nil)

	f.router.Process(context.Background(), inbound("Zwei Aperol Spritz bitte"))

	require.Len(t, f.states.puts, 1)
	st := f.states.puts[0]
	require.NotNil(t, st.Order)
	require.Len(t, st.Order.Items, 1)
	assert.Equal(t, "Aperol Spritz", st.Order.Items[0].Name)

	require.Len(t, f.sender.texts, 1)
	assert.Contains(t, f.sender.texts[0], "2x Aperol Spritz")
}

func TestProcessSubmitWithoutDraftDemotesToGeneralQuestion(t *testing.T) {
	f := newFixture(t, &models.Intent{Category: models.IntentOrderSubmit, Language: "de"}, nil)

	f.router.Process(context.Background(), inbound("Das wärs, danke"))

	assert.Empty(t, f.ordersDB.orders, "nothing persisted without a draft")
	require.Len(t, f.sender.to, 1)
	assert.Equal(t, "+4912345", f.sender.to[0])
	assert.Equal(t, "Das Frühstück gibt es bis 10:30 Uhr.", f.sender.texts[0], "answered as a general question")
}

func TestProcessSubmitWithoutOrderableDepartmentEscalates(t *testing.T) {
	f := newFixture(t, &models.Intent{Category: models.IntentOrderSubmit, Language: "de"}, nil)
	f.resolver.snap = &models.TenantSnapshot{
		Tenant: models.Tenant{ID: "tenant-1", Name: "Hotel Sonnenhof", ChannelID: "channel-1", Languages: []string{"de"}},
		Departments: []models.Department{
			{ID: "dept-reception", Name: "Rezeption", GroupChannelID: "group-reception", Position: 1, IsEscalation: true, Active: true},
		},
	}
	f.states.state = &models.ConversationState{
		TenantID: "tenant-1", GuestID: "guest-1", Language: "de",
		Order: &models.OrderDraft{Items: []models.OrderItem{{Name: "Pizza", Quantity: 1}}},
	}

	f.router.Process(context.Background(), inbound("Das wärs, bitte eine Pizza"))

	assert.Empty(t, f.ordersDB.orders, "nothing to persist without a target department")
	require.Len(t, f.sender.to, 2)
	assert.Equal(t, "group-reception", f.sender.to[0], "order text reaches staff via escalation")
	assert.Contains(t, f.sender.texts[0], "Das wärs, bitte eine Pizza")
	assert.Equal(t, "+4912345", f.sender.to[1])
}

func TestProcessSubmitPersistsThenNotifiesThenReplies(t *testing.T) {
	f := newFixture(t, &models.Intent{Category: models.IntentOrderSubmit, Language: "de"}, nil)
	f.states.state = &models.ConversationState{
		TenantID: "tenant-1", GuestID: "guest-1", Language: "de",
		Order:        &models.OrderDraft{Items: []models.OrderItem{{Name: "Pizza", Quantity: 1}}},
		LastActivity: time.Date(2026, 5, 1, 11, 59, 0, 0, time.UTC),
	}

	f.router.Process(context.Background(), inbound("Das wärs"))

	require.Len(t, f.ordersDB.orders, 1)
	require.Len(t, f.sender.to, 2)
	assert.Equal(t, "group-kitchen", f.sender.to[0])
	assert.Equal(t, "+4912345", f.sender.to[1])

	require.Len(t, f.states.puts, 1)
	assert.Nil(t, f.states.puts[0].Order, "draft cleared after submit")
}

func TestProcessPinsDetectedLanguage(t *testing.T) {
	f := newFixture(t, &models.Intent{Category: models.IntentGeneralQuestion, Language: "it"}, nil)

	f.router.Process(context.Background(), inbound("A che ora è la colazione?"))

	require.Len(t, f.states.puts, 1)
	assert.Equal(t, "it", f.states.puts[0].Language)
	assert.Equal(t, []string{"it"}, f.guests.langUpdates)
}

func TestProcessAdoptsMentionedRoomNumber(t *testing.T) {
	f := newFixture(t, &models.Intent{
		Category:   models.IntentOrderItem,
		Language:   "de",
		Items:      []models.OrderItem{{Name: "Pizza", Quantity: 1}},
		RoomNumber: "312",
	}, nil)

	f.router.Process(context.Background(), inbound("Eine Pizza auf Zimmer 312"))

	assert.Equal(t, []string{"312/"}, f.guests.locUpdates)
}

func TestProcessStaffConfirmationNotifiesGuest(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.confirmer.order = &models.Order{ID: "order-1", GuestID: "guest-1", DepartmentID: "dept-kitchen", Status: models.OrderStatusConfirmed}
	f.states.state = &models.ConversationState{TenantID: "tenant-1", GuestID: "guest-1", Language: "it"}

	msg := inbound("\U0001F44D")
	msg.GroupID = "group-kitchen"
	f.router.Process(context.Background(), msg)

	assert.Equal(t, 1, f.confirmer.calls)
	require.Len(t, f.sender.to, 1)
	assert.Equal(t, "+4912345", f.sender.to[0])
	assert.Contains(t, f.sender.texts[0], "in preparazione", "guest notified in their pinned language")
}

func TestProcessStaffMessageWithoutEmojiIgnored(t *testing.T) {
	f := newFixture(t, nil, nil)

	msg := inbound("ok machen wir")
	msg.GroupID = "group-kitchen"
	f.router.Process(context.Background(), msg)

	assert.Zero(t, f.confirmer.calls)
	assert.Empty(t, f.sender.to)
}

func TestProcessClassifierFailureStillEscalates(t *testing.T) {
	f := newFixture(t,
		&models.Intent{Category: models.IntentUnknown, Language: "de"},
		apperrors.NewClassificationTimeoutError(),
	)

	f.router.Process(context.Background(), inbound("Hilfe!"))

	require.Len(t, f.sender.to, 2)
	assert.Equal(t, "group-reception", f.sender.to[0])
	assert.Contains(t, f.sender.texts[0], "Hilfe!")
}
