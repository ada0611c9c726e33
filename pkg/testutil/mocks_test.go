package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aaronromeo.com/inboxpilot/pkg/models/message"
	"aaronromeo.com/inboxpilot/pkg/provider"
)

func TestFakeMailbox_ListSkipsSpamAndHonoursMax(t *testing.T) {
	fake := NewFakeMailbox(
		message.Detail{ID: "a", Labels: []message.Label{message.LabelInbox}},
		message.Detail{ID: "b", Labels: []message.Label{message.LabelSpam}},
		message.Detail{ID: "c", Labels: []message.Label{message.LabelInbox}},
		message.Detail{ID: "d", Labels: []message.Label{message.LabelInbox}},
	)

	ids, err := fake.ListInbox(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []message.ID{"a", "c"}, ids)
}

func TestFakeMailbox_ModifyLabels(t *testing.T) {
	ctx := context.Background()
	fake := NewFakeMailbox(message.Detail{ID: "a", Labels: []message.Label{message.LabelInbox}})

	require.NoError(t, fake.ModifyLabels(ctx, "a", []message.Label{message.LabelSpam}, nil))
	m, err := fake.GetMessage(ctx, "a", provider.FormatMetadata)
	require.NoError(t, err)
	assert.True(t, m.Spam)

	require.NoError(t, fake.ModifyLabels(ctx, "a", nil, []message.Label{message.LabelSpam}))
	assert.Equal(t, []message.Label{message.LabelInbox}, fake.Labels("a"))

	err = fake.ModifyLabels(ctx, "missing", []message.Label{message.LabelStarred}, nil)
	var perr *provider.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 404, perr.StatusCode)
}

func TestMemoryMirror_UpsertSetsOnlyGivenFields(t *testing.T) {
	ctx := context.Background()
	mirror := NewMemoryMirror()

	require.NoError(t, mirror.Upsert(ctx, "a", message.MetadataFields{
		Sender:  message.String("ann@example.com"),
		Starred: message.Bool(false),
		Spam:    message.Bool(true),
	}))
	require.NoError(t, mirror.Upsert(ctx, "a", message.MetadataFields{Starred: message.Bool(true)}))

	rec, ok, err := mirror.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, message.MetadataRecord{ID: "a", Sender: "ann@example.com", Starred: true, Spam: true}, rec)
	assert.Equal(t, 1, mirror.Len())
	assert.Equal(t, 2, mirror.Calls())
}

func TestMemoryMirror_InjectedFailure(t *testing.T) {
	mirror := NewMemoryMirror()
	mirror.FailIDs["a"] = true

	err := mirror.Upsert(context.Background(), "a", message.MetadataFields{Spam: message.Bool(true)})
	assert.EqualError(t, err, "upserting metadata for a: injected failure")
	assert.Equal(t, 0, mirror.Len())
}
