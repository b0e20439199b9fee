package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-sync/internal/models"
)

func TestDMIDSymmetric(t *testing.T) {
	assert.Equal(t, "u1_u2", DMID("u1", "u2"))
	assert.Equal(t, "u1_u2", DMID("u2", "u1"))
	assert.Equal(t, DMID("alice", "bob"), DMID("bob", "alice"))
}

func TestDMIDDegenerate(t *testing.T) {
	// Not expected in practice, but must stay well-defined and stable.
	assert.Equal(t, "u1_u1", DMID("u1", "u1"))
}

func TestDMParticipants(t *testing.T) {
	a, b, ok := DMParticipants("u1_u2")
	require.True(t, ok)
	assert.Equal(t, "u1", a)
	assert.Equal(t, "u2", b)

	_, _, ok = DMParticipants("nodm")
	assert.False(t, ok)
	_, _, ok = DMParticipants("_u2")
	assert.False(t, ok)
}

func TestChannelID(t *testing.T) {
	assert.Equal(t, "general", ChannelID("General"))
	assert.Equal(t, "campus-events", ChannelID("Campus Events"))
	assert.Equal(t, "lost-found", ChannelID("  Lost & Found  "))

	// A channel id must never contain the DM separator, or the stream
	// authorizer would treat it as a direct message.
	assert.NotContains(t, ChannelID("exam_prep"), dmSeparator)
	assert.Equal(t, "exam-prep", ChannelID("exam_prep"))
}

func TestIsDMParticipant(t *testing.T) {
	id := DMID("u1", "u2")
	assert.True(t, IsDMParticipant(id, "u1"))
	assert.True(t, IsDMParticipant(id, "u2"))
	assert.False(t, IsDMParticipant(id, "u3"))
}

func TestCanAccess(t *testing.T) {
	channel := models.Conversation{ID: "general", Kind: models.KindChannel}
	assert.True(t, CanAccess(channel, nil, "anyone"))

	group := models.Conversation{ID: "g1", Kind: models.KindGroup, AdminID: "u1"}
	assert.True(t, CanAccess(group, []string{"u1", "u2"}, "u2"))
	assert.False(t, CanAccess(group, []string{"u1", "u2"}, "u3"))

	dm := models.Conversation{ID: DMID("u1", "u2"), Kind: models.KindDM}
	assert.True(t, CanAccess(dm, nil, "u1"))
	assert.False(t, CanAccess(dm, nil, "u9"))
}

func TestCanDeleteMessage(t *testing.T) {
	group := models.Conversation{ID: "g1", Kind: models.KindGroup, AdminID: "admin"}
	channel := models.Conversation{ID: "general", Kind: models.KindChannel}
	msg := models.Message{ID: "m1", SenderID: "member"}

	assert.True(t, CanDeleteMessage(group, msg, "member"))
	assert.True(t, CanDeleteMessage(group, msg, "admin"))
	assert.False(t, CanDeleteMessage(group, msg, "other"))

	// Channel and DM deletion stays sender-only.
	assert.False(t, CanDeleteMessage(channel, msg, "admin"))
}

func TestValidGroupName(t *testing.T) {
	assert.True(t, ValidGroupName("study group"))
	assert.False(t, ValidGroupName("   "))
	assert.False(t, ValidGroupName(""))
}
