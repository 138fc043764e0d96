package chat

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/shopsense/plugin/ai/classifier"
	"github.com/hrygo/shopsense/plugin/ai/routing"
	"github.com/hrygo/shopsense/plugin/ai/tools"
	"github.com/hrygo/shopsense/server/handoff"
	"github.com/hrygo/shopsense/store"
)

// memoryDriver is an in-memory store.Driver for exercising the persistence
// path without a database.
type memoryDriver struct {
	conversations map[string]*store.Conversation
	entries       map[string]*store.HandoffEntry
	staff         map[string]*store.StaffPresence
	decisions     []*store.RoutingDecision
	nextEntryID   int64
}

func newMemoryDriver() *memoryDriver {
	return &memoryDriver{
		conversations: make(map[string]*store.Conversation),
		entries:       make(map[string]*store.HandoffEntry),
		staff:         make(map[string]*store.StaffPresence),
	}
}

func (d *memoryDriver) GetDB() *sql.DB                              { return nil }
func (d *memoryDriver) Close() error                                { return nil }
func (d *memoryDriver) IsInitialized(context.Context) (bool, error) { return true, nil }
func (d *memoryDriver) Migrate(context.Context) error               { return nil }

func (d *memoryDriver) UpsertConversation(_ context.Context, upsert *store.Conversation) (*store.Conversation, error) {
	cp := *upsert
	d.conversations[upsert.ID] = &cp
	return upsert, nil
}

func (d *memoryDriver) ListConversations(_ context.Context, find *store.FindConversation) ([]*store.Conversation, error) {
	list := []*store.Conversation{}
	for _, c := range d.conversations {
		if find.ExcludeClosed && c.Status == "CLOSED" {
			continue
		}
		if find.ID != nil && c.ID != *find.ID {
			continue
		}
		cp := *c
		list = append(list, &cp)
	}
	return list, nil
}

func (d *memoryDriver) UpsertHandoffEntry(_ context.Context, upsert *store.HandoffEntry) (*store.HandoffEntry, error) {
	if upsert.ResolvedTs != nil {
		delete(d.entries, upsert.ConversationID)
		return upsert, nil
	}
	if _, ok := d.entries[upsert.ConversationID]; !ok {
		d.nextEntryID++
		upsert.ID = d.nextEntryID
	}
	cp := *upsert
	d.entries[upsert.ConversationID] = &cp
	return upsert, nil
}

func (d *memoryDriver) ListHandoffEntries(_ context.Context, find *store.FindHandoffEntry) ([]*store.HandoffEntry, error) {
	list := []*store.HandoffEntry{}
	for _, e := range d.entries {
		if find.ConversationID != nil && e.ConversationID != *find.ConversationID {
			continue
		}
		cp := *e
		list = append(list, &cp)
	}
	return list, nil
}

func (d *memoryDriver) UpsertStaffPresence(_ context.Context, upsert *store.StaffPresence) (*store.StaffPresence, error) {
	cp := *upsert
	d.staff[upsert.StaffID] = &cp
	return upsert, nil
}

func (d *memoryDriver) ListStaffPresence(_ context.Context, find *store.FindStaffPresence) ([]*store.StaffPresence, error) {
	list := []*store.StaffPresence{}
	for _, s := range d.staff {
		if find.StaffID != nil && s.StaffID != *find.StaffID {
			continue
		}
		if find.OnlineOnly && !s.Online {
			continue
		}
		cp := *s
		list = append(list, &cp)
	}
	return list, nil
}

func (d *memoryDriver) CreateRoutingDecision(_ context.Context, create *store.RoutingDecision) (*store.RoutingDecision, error) {
	create.ID = int64(len(d.decisions) + 1)
	cp := *create
	d.decisions = append(d.decisions, &cp)
	return create, nil
}

func (d *memoryDriver) ListRoutingDecisions(_ context.Context, find *store.FindRoutingDecision) ([]*store.RoutingDecision, error) {
	list := []*store.RoutingDecision{}
	for _, dec := range d.decisions {
		if find.ConversationID != nil && dec.ConversationID != *find.ConversationID {
			continue
		}
		if find.HandoffOnly && !dec.Handoff {
			continue
		}
		cp := *dec
		list = append(list, &cp)
	}
	return list, nil
}

func (d *memoryDriver) ApplyAssignment(ctx context.Context, conversation *store.Conversation, entry *store.HandoffEntry, staff *store.StaffPresence) error {
	if existing, ok := d.conversations[conversation.ID]; ok {
		existing.Status = conversation.Status
		existing.AssignedStaffID = conversation.AssignedStaffID
		existing.WaitTimeSeconds = conversation.WaitTimeSeconds
	}
	if existing, ok := d.entries[entry.ConversationID]; ok {
		existing.AssignedStaffID = entry.AssignedStaffID
		existing.AssignedTs = entry.AssignedTs
		existing.WaitTimeSeconds = entry.WaitTimeSeconds
	}
	if existing, ok := d.staff[staff.StaffID]; ok {
		existing.Workload = staff.Workload
		existing.LastActivityTs = staff.LastActivityTs
	}
	return nil
}

var _ store.Driver = (*memoryDriver)(nil)

func newPersistedService(driver *memoryDriver, mock classifier.Classifier) *ChatService {
	return NewChatService(Config{
		Classifier: mock,
		Policy:     routing.NewPolicy(0.75, tools.NewMockRunner()),
		Store:      store.New(driver, nil),
		Logger:     slog.Default(),
	})
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	driver := newMemoryDriver()
	mock := classifier.NewMockClassifier()
	mock.Result = &classifier.ClassificationResult{
		Intent:      classifier.IntentHumanRequest,
		Confidence:  0.99,
		NeedHandoff: true,
	}
	svc := newPersistedService(driver, mock)

	require.NoError(t, svc.StaffLogin(ctx, "s1", 1))
	outcome, err := svc.RouteMessage(ctx, "c1", "human please")
	require.NoError(t, err)
	require.True(t, outcome.HandedOff)

	// The assignment landed in the store as one unit.
	assert.Equal(t, "ASSIGNED", driver.conversations["c1"].Status)
	assert.Equal(t, "s1", driver.conversations["c1"].AssignedStaffID)
	assert.Equal(t, "s1", driver.entries["c1"].AssignedStaffID)
	assert.NotNil(t, driver.entries["c1"].AssignedTs)
	assert.Equal(t, 1, driver.staff["s1"].Workload)
	require.Len(t, driver.decisions, 1)
	assert.Equal(t, "EXPLICIT_REQUEST", driver.decisions[0].HandoffReason)
}

func TestRecoverRequeuesInService(t *testing.T) {
	ctx := context.Background()
	driver := newMemoryDriver()
	mock := classifier.NewMockClassifier()
	mock.Result = &classifier.ClassificationResult{
		Intent:      classifier.IntentHumanRequest,
		Confidence:  0.99,
		NeedHandoff: true,
	}

	first := newPersistedService(driver, mock)
	require.NoError(t, first.StaffLogin(ctx, "s1", 1))
	_, err := first.RouteMessage(ctx, "c1", "human please")
	require.NoError(t, err)

	// Simulated restart: a fresh service recovers from the same store.
	second := newPersistedService(driver, mock)
	require.NoError(t, second.Recover(ctx))

	conv, err := second.Engine().Conversation("c1")
	require.NoError(t, err)
	assert.Equal(t, handoff.ConversationOpen, conv.Status)
	assert.Empty(t, conv.AssignedStaffID)
	assert.Equal(t, 1, second.Engine().QueueDepth())

	staff := second.Engine().StaffSnapshot()
	require.Len(t, staff, 1)
	assert.False(t, staff[0].Online)
	assert.Equal(t, 0, staff[0].Workload)

	// The recovered staff member logs back in and immediately receives
	// the requeued conversation.
	require.NoError(t, second.StaffLogin(ctx, "s1", 1))
	conv, err = second.Engine().Conversation("c1")
	require.NoError(t, err)
	assert.Equal(t, handoff.ConversationAssigned, conv.Status)
}
