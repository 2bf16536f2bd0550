// Package identity maps the local session onto the chat system's identity
// and keeps the two in step.
package identity

import (
	"errors"
	"strconv"
)

var (
	// ErrMissingUserID is returned when there is no local user id to map.
	ErrMissingUserID = errors.New("local user id is missing")
	// ErrEmptyID is returned when a conversation member id is empty.
	ErrEmptyID = errors.New("foreign id is empty")
	// ErrIdentityMismatch is returned when the chat system is signed in as
	// someone other than the expected foreign id.
	ErrIdentityMismatch = errors.New("chat identity does not match local session")
	// ErrNotReady is returned by calls that need an established chat identity.
	ErrNotReady = errors.New("chat bridge not ready")
)

// ForeignIDPrefix is prepended to local user ids.
const ForeignIDPrefix = "app_"

// DeriveForeignID returns the chat system's id for a local user id.
func DeriveForeignID(localUserID int64) (string, error) {
	if localUserID <= 0 {
		return "", ErrMissingUserID
	}
	return ForeignIDPrefix + strconv.FormatInt(localUserID, 10), nil
}

// DeriveConversationKey returns the id of the conversation between a and b.
// The ids are ordered first, so both peers resolve to the same key.
func DeriveConversationKey(a, b string) (string, error) {
	if a == "" || b == "" {
		return "", ErrEmptyID
	}
	if b < a {
		a, b = b, a
	}
	return a + "_" + b, nil
}
