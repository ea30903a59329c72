// Package apperr defines the error kinds surfaced by the relationship and
// messaging core. Every failure carries a stable machine reason so callers
// can branch on it without parsing messages.
package apperr

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindForbidden  Kind = "forbidden"
	KindValidation Kind = "validation"
	KindSelfTarget Kind = "self_target"
)

type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Reason so that sentinels still match after WithDetails.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Reason == t.Reason
}

func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

func New(kind Kind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

var (
	ErrSelfTarget           = New(KindSelfTarget, "self_target", "cannot target yourself")
	ErrUserNotFound         = New(KindNotFound, "user_not_found", "user not found")
	ErrAlreadyFriends       = New(KindConflict, "already_friends", "users are already friends")
	ErrBlockedByTarget      = New(KindForbidden, "blocked_by_target", "the user has blocked you")
	ErrSenderHasBlocked     = New(KindForbidden, "sender_has_blocked", "you have blocked this user, unblock first")
	ErrDuplicatePending     = New(KindConflict, "duplicate_pending", "pending friend request already exists")
	ErrReverseRequestExists = New(KindConflict, "reverse_request_exists", "this user already sent you a request, respond to it instead")
	ErrRequestNotFound      = New(KindNotFound, "request_not_found", "friend request not found or already processed")
	ErrFriendshipNotFound   = New(KindNotFound, "friendship_not_found", "friendship not found")
	ErrAlreadyBlocked       = New(KindConflict, "already_blocked", "user is already blocked")
	ErrBlockNotFound        = New(KindNotFound, "block_not_found", "user is not in your blacklist")

	ErrReceiverNotFound      = New(KindNotFound, "receiver_not_found", "receiver not found")
	ErrNotFriends            = New(KindForbidden, "not_friends", "messages can only be sent to friends")
	ErrBlockedByReceiver     = New(KindForbidden, "blocked_by_receiver", "the receiver has blocked you")
	ErrContentRejected       = New(KindValidation, "content_rejected", "message content rejected")
	ErrConversationNotFound  = New(KindNotFound, "conversation_not_found", "conversation not found")
	ErrRelationshipChanged   = New(KindForbidden, "relationship_changed", "relationship changed while sending, retry")
	ErrInvalidMessageRequest = New(KindValidation, "invalid_request_message", "request message must be at most 100 characters")
)

// KindOf reports the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindValidation, KindSelfTarget:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
