package domain

import "time"

// Swipe actions.
const (
	SwipeLike = "like"
	SwipePass = "pass"
)

// Swipe is an immutable, append-only record of a directional preference.
// Repeated swipes on the same target are permitted; match detection only
// cares whether any reciprocal like row exists.
type Swipe struct {
	SwipeID    string    `json:"id" dynamodbav:"swipe_id"`
	FromUserID string    `json:"from_user_id" dynamodbav:"from_user_id"`
	ToUserID   string    `json:"to_user_id" dynamodbav:"to_user_id"`
	Action     string    `json:"action" dynamodbav:"action"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}

type SwipeRequest struct {
	ToUserID string `json:"to_user_id" validate:"required"`
	Action   string `json:"action" validate:"required,oneof=like pass"`
}

// SwipeResult is the response to a recorded swipe. MatchID is null unless
// the swipe completed a mutual like.
type SwipeResult struct {
	Success bool    `json:"success"`
	IsMatch bool    `json:"is_match"`
	MatchID *string `json:"match_id"`
}

// Liker pairs a public profile with the moment of its like, for likes-me lists.
type Liker struct {
	User    *PublicUser `json:"user"`
	LikedAt time.Time   `json:"liked_at"`
}
