package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesReasonThroughWrapping(t *testing.T) {
	err := fmt.Errorf("send: %w", ErrNotFriends)
	assert.True(t, errors.Is(err, ErrNotFriends))
	assert.False(t, errors.Is(err, ErrBlockedByReceiver))
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestWithDetailsKeepsIdentity(t *testing.T) {
	err := ErrContentRejected.WithDetails(map[string]any{"matched_terms": []string{"spam"}})
	assert.True(t, errors.Is(err, ErrContentRejected))
	assert.Nil(t, ErrContentRejected.Details)
	assert.Equal(t, []string{"spam"}, err.Details["matched_terms"])
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:   http.StatusNotFound,
		KindConflict:   http.StatusConflict,
		KindForbidden:  http.StatusForbidden,
		KindValidation: http.StatusBadRequest,
		KindSelfTarget: http.StatusBadRequest,
		"":             http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), "kind %q", kind)
	}
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
}
