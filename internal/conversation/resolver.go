package conversation

import (
	"strings"

	"campus-sync/internal/models"
)

// dmSeparator joins the two sorted participant ids of a direct message.
const dmSeparator = "_"

// DMID derives the canonical conversation id for a 1:1 direct message. The two
// ids are sorted lexicographically before joining, so any two clients compute
// the same id with no lookup. Pure and symmetric: DMID(a,b) == DMID(b,a).
func DMID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + dmSeparator + b
}

// DMParticipants splits a DM conversation id back into its two participant ids.
func DMParticipants(dmID string) (string, string, bool) {
	parts := strings.SplitN(dmID, dmSeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// ChannelID derives a channel's conversation id from its display name. The
// slug keeps lowercase letters and digits and collapses runs of anything else
// to a single hyphen, so a channel id never takes the underscore-joined DM
// form.
func ChannelID(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}

// IsDMParticipant reports whether userID is one of the two ids embedded in dmID.
func IsDMParticipant(dmID, userID string) bool {
	a, b, ok := DMParticipants(dmID)
	if !ok {
		return false
	}
	return a == userID || b == userID
}

// CanAccess applies the membership rule for each conversation kind. Channels
// are public; groups require membership; DMs require participation.
func CanAccess(conv models.Conversation, members []string, userID string) bool {
	switch conv.Kind {
	case models.KindChannel:
		return true
	case models.KindGroup:
		for _, m := range members {
			if m == userID {
				return true
			}
		}
		return false
	case models.KindDM:
		return IsDMParticipant(conv.ID, userID)
	}
	return false
}

// CanDeleteMessage: the sender may always delete their own message; the group
// admin may additionally delete any member's message in a group conversation.
func CanDeleteMessage(conv models.Conversation, msg models.Message, userID string) bool {
	if msg.SenderID == userID {
		return true
	}
	return conv.Kind == models.KindGroup && conv.AdminID == userID
}

// ValidGroupName rejects names that are empty after trimming.
func ValidGroupName(name string) bool {
	return strings.TrimSpace(name) != ""
}
