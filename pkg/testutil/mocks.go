// Package testutil provides in-memory fakes shared across test files. The
// fakes keep real state, so tests can assert on outcomes rather than calls.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"aaronromeo.com/inboxpilot/pkg/models/credentials"
	"aaronromeo.com/inboxpilot/pkg/models/message"
	"aaronromeo.com/inboxpilot/pkg/provider"
)

// SentMessage is one SendRaw call observed by FakeMailbox.
type SentMessage struct {
	ThreadID string
	Raw      []byte
}

// FakeMailbox is a provider.Client over an in-memory label store. Inbox order
// is the order messages were added. It is safe for concurrent use.
type FakeMailbox struct {
	mu       sync.Mutex
	order    []message.ID
	messages map[message.ID]message.Detail

	ListErr   error
	GetErrs   map[message.ID]error
	SendErr   error
	ModifyErr error

	Sent        []SentMessage
	ListCalls   int
	GetCalls    int
	ModifyCalls int
}

// NewFakeMailbox creates a new FakeMailbox holding msgs.
func NewFakeMailbox(msgs ...message.Detail) *FakeMailbox {
	f := &FakeMailbox{
		messages: make(map[message.ID]message.Detail),
		GetErrs:  make(map[message.ID]error),
	}
	for _, m := range msgs {
		f.Add(m)
	}
	return f
}

// Add stores m, deriving the starred and spam flags from its labels.
func (f *FakeMailbox) Add(m message.Detail) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[m.ID]; !ok {
		f.order = append(f.order, m.ID)
	}
	m.Starred = message.HasLabel(m.Labels, message.LabelStarred)
	m.Spam = message.HasLabel(m.Labels, message.LabelSpam)
	f.messages[m.ID] = m
}

// Labels returns the current labels of id.
func (f *FakeMailbox) Labels(id message.ID) []message.Label {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]message.Label(nil), f.messages[id].Labels...)
}

// Calls returns how many provider calls of any kind were made.
func (f *FakeMailbox) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ListCalls + f.GetCalls + f.ModifyCalls + len(f.Sent)
}

func (f *FakeMailbox) ListInbox(_ context.Context, max int) ([]message.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}

	ids := make([]message.ID, 0, len(f.order))
	for _, id := range f.order {
		if message.HasLabel(f.messages[id].Labels, message.LabelSpam) {
			continue
		}
		if len(ids) == max {
			break
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *FakeMailbox) GetMessage(_ context.Context, id message.ID, _ provider.Format) (message.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetCalls++
	if err := f.GetErrs[id]; err != nil {
		return message.Detail{}, err
	}
	m, ok := f.messages[id]
	if !ok {
		return message.Detail{}, &provider.Error{Op: "get message", StatusCode: 404, Message: "Requested entity was not found."}
	}
	return m, nil
}

func (f *FakeMailbox) SendRaw(_ context.Context, threadID string, raw []byte) (message.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return "", f.SendErr
	}
	f.Sent = append(f.Sent, SentMessage{ThreadID: threadID, Raw: raw})
	return message.ID(fmt.Sprintf("sent-%d", len(f.Sent))), nil
}

func (f *FakeMailbox) ModifyLabels(_ context.Context, id message.ID, add, remove []message.Label) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ModifyCalls++
	if f.ModifyErr != nil {
		return f.ModifyErr
	}
	m, ok := f.messages[id]
	if !ok {
		return &provider.Error{Op: "modify labels", StatusCode: 404, Message: "Requested entity was not found."}
	}

	labels := make([]message.Label, 0, len(m.Labels)+len(add))
	for _, l := range m.Labels {
		if !message.HasLabel(remove, l) {
			labels = append(labels, l)
		}
	}
	for _, l := range add {
		if !message.HasLabel(labels, l) {
			labels = append(labels, l)
		}
	}
	m.Labels = labels
	m.Starred = message.HasLabel(labels, message.LabelStarred)
	m.Spam = message.HasLabel(labels, message.LabelSpam)
	f.messages[id] = m
	return nil
}

// FakeFactory hands out the same client for every credential set and
// records the sets it was asked to build with.
type FakeFactory struct {
	mu       sync.Mutex
	Client   provider.Client
	BuildErr error
	Builds   []credentials.Set
}

func (f *FakeFactory) Build(_ context.Context, creds credentials.Set) (provider.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Builds = append(f.Builds, creds)
	if f.BuildErr != nil {
		return nil, f.BuildErr
	}
	return f.Client, nil
}

// BuildCount returns how many clients were built.
func (f *FakeFactory) BuildCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Builds)
}

// MemoryMirror is a repositories.MetadataRepository backed by a map, with the
// same upsert semantics as the DynamoDB implementation.
type MemoryMirror struct {
	mu      sync.Mutex
	records map[message.ID]message.MetadataRecord

	UpsertErr   error
	FailIDs     map[message.ID]bool
	UpsertCalls int
}

// NewMemoryMirror creates an empty MemoryMirror.
func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{
		records: make(map[message.ID]message.MetadataRecord),
		FailIDs: make(map[message.ID]bool),
	}
}

func (m *MemoryMirror) Upsert(_ context.Context, id message.ID, fields message.MetadataFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	if m.FailIDs[id] {
		return errors.Errorf("upserting metadata for %s: injected failure", id)
	}

	rec, ok := m.records[id]
	if !ok {
		rec = message.MetadataRecord{ID: id}
	}
	m.records[id] = fields.Apply(rec)
	return nil
}

func (m *MemoryMirror) Get(_ context.Context, id message.ID) (message.MetadataRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	return rec, ok, nil
}

func (m *MemoryMirror) EnsureTable(context.Context) error {
	return nil
}

// Len returns the number of stored records.
func (m *MemoryMirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// Calls returns how many upserts were attempted.
func (m *MemoryMirror) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.UpsertCalls
}
