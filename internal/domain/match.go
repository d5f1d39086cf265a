package domain

import "time"

// Match records a confirmed mutual like. The table is keyed by PairKey, the
// canonicalized unordered pair, so a pair can only ever hold one match row
// even when opposite-direction likes land concurrently.
type Match struct {
	PairKey   string    `json:"-" dynamodbav:"pair_key"`
	MatchID   string    `json:"id" dynamodbav:"match_id"`
	User1ID   string    `json:"user1_id" dynamodbav:"user1_id"`
	User2ID   string    `json:"user2_id" dynamodbav:"user2_id"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

// HasParticipant reports whether userID is one of the two matched users.
func (m *Match) HasParticipant(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// OtherUser returns the participant that is not userID.
func (m *Match) OtherUser(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// PairKeyFor canonicalizes an unordered user pair into the match table key.
func PairKeyFor(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "#" + b
}

// MatchSummary is one entry of the match list: the match enriched with the
// other participant's profile and conversation state.
type MatchSummary struct {
	MatchID     string      `json:"match_id"`
	User        *PublicUser `json:"user"`
	LastMessage *Message    `json:"last_message"`
	UnreadCount int         `json:"unread_count"`
	MatchedAt   time.Time   `json:"matched_at"`
}
