package models_test

import (
	"testing"
	"time"

	"educhat/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestPrincipalKind_Valid(t *testing.T) {
	assert.True(t, models.KindUser.Valid())
	assert.True(t, models.KindInstructor.Valid())
	assert.False(t, models.PrincipalKind("robot").Valid())
	assert.False(t, models.PrincipalKind("").Valid())
}

func TestChat_BeforeCreateAssignsID(t *testing.T) {
	c := models.Chat{}
	assert.NoError(t, c.BeforeCreate(nil))
	assert.NotEmpty(t, c.ID)

	keep := models.Chat{ID: "fixed"}
	assert.NoError(t, keep.BeforeCreate(nil))
	assert.Equal(t, "fixed", keep.ID)
}

// The join and read-marker timestamps come from the database clock, the
// same one GREATEST(last_read_at, NOW()) advances against. The hook only
// assigns the ID.
func TestParticipant_BeforeCreateLeavesTimestampsToDatabase(t *testing.T) {
	p := models.Participant{}
	assert.NoError(t, p.BeforeCreate(nil))
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.JoinedAt.IsZero())
	assert.True(t, p.LastReadAt.IsZero())
}

func TestMessage_BeforeCreateLeavesTimestampToDatabase(t *testing.T) {
	m := models.Message{}
	assert.NoError(t, m.BeforeCreate(nil))
	assert.NotEmpty(t, m.ID)
	assert.True(t, m.Timestamp.IsZero())
}

func TestParticipant_Ref(t *testing.T) {
	p := models.Participant{PrincipalID: "u1", PrincipalKind: models.KindInstructor}
	assert.Equal(t, models.PrincipalRef{ID: "u1", Kind: models.KindInstructor}, p.Ref())
}

func TestNewMessageEvent(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := &models.Message{ID: "m1", ChatID: "c1", SenderParticipantID: "p1", Content: "hello", Timestamp: ts}

	ev := models.NewMessageEvent(m)
	assert.Equal(t, models.EventNewMessage, ev.Event)
	assert.Equal(t, "c1", ev.ChatID)
	assert.Equal(t, "m1", ev.MessageID)
	assert.Equal(t, "p1", ev.SenderID)
	assert.Equal(t, "hello", ev.Content)
	if assert.NotNil(t, ev.Timestamp) {
		assert.Equal(t, ts, *ev.Timestamp)
	}
}

func TestErrorEventKeepsChatScope(t *testing.T) {
	ev := models.ErrorEvent("c1", "Content must be a string")
	assert.Equal(t, models.EventError, ev.Event)
	assert.Equal(t, "c1", ev.ChatID)
	assert.Equal(t, "Content must be a string", ev.Message)
}
