package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanakk365/ysntest-sub001/internal/api/handler"
	"github.com/kanakk365/ysntest-sub001/internal/backend"
)

type mockMinter struct {
	uid    string
	claims map[string]any
	err    error
}

func (m *mockMinter) Mint(uid string, claims map[string]any) (string, error) {
	m.uid = uid
	m.claims = claims
	if m.err != nil {
		return "", m.err
	}
	return "custom-" + uid, nil
}

func exchangeBody(userID int64, token string) []byte {
	b, _ := json.Marshal(map[string]any{"userId": userID, "name": "Coach", "email": "coach@ysn.com", "token": token})
	return b
}

func verifierFor(token string, user *backend.User) *mockBackend {
	return &mockBackend{currentUserFn: func(_ context.Context, got string) (*backend.User, error) {
		if got != token {
			return nil, &backend.APIError{StatusCode: http.StatusUnauthorized}
		}
		return user, nil
	}}
}

func TestExchange_Success(t *testing.T) {
	t.Parallel()

	minter := &mockMinter{}
	h := handler.NewTokenHandler(verifierFor("abc", coach()), minter)

	req, w := makeChiRequest(http.MethodPost, "/api/chat/token", exchangeBody(2, "abc"), nil)
	h.Exchange(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]interface{}{"customToken": "custom-app_2"}, body)
	assert.Equal(t, "app_2", minter.uid)
	assert.Equal(t, "coach@ysn.com", minter.claims["email"])
}

func TestExchange_BearerFallback(t *testing.T) {
	t.Parallel()

	h := handler.NewTokenHandler(verifierFor("abc", coach()), &mockMinter{})

	req, w := makeChiRequest(http.MethodPost, "/api/chat/token", exchangeBody(2, ""), nil)
	req.Header.Set("Authorization", "Bearer abc")
	h.Exchange(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExchange_OtherUsersToken(t *testing.T) {
	t.Parallel()

	minter := &mockMinter{}
	h := handler.NewTokenHandler(verifierFor("abc", coach()), minter)

	req, w := makeChiRequest(http.MethodPost, "/api/chat/token", exchangeBody(11, "abc"), nil)
	h.Exchange(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "IDENTITY_MISMATCH", errorCode(t, w))
	assert.Empty(t, minter.uid, "nothing is minted")
}

func TestExchange_Validation(t *testing.T) {
	t.Parallel()

	h := handler.NewTokenHandler(verifierFor("abc", coach()), &mockMinter{})

	req, w := makeChiRequest(http.MethodPost, "/api/chat/token", exchangeBody(0, ""), nil)
	h.Exchange(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := parseEnvelope(t, w)
	details := env["error"].(map[string]interface{})["details"].([]interface{})
	assert.Len(t, details, 2)
}

func TestExchange_RejectedToken(t *testing.T) {
	t.Parallel()

	h := handler.NewTokenHandler(verifierFor("abc", coach()), &mockMinter{})

	req, w := makeChiRequest(http.MethodPost, "/api/chat/token", exchangeBody(2, "expired"), nil)
	h.Exchange(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExchange_MintFailure(t *testing.T) {
	t.Parallel()

	h := handler.NewTokenHandler(verifierFor("abc", coach()), &mockMinter{err: errors.New("bad key")})

	req, w := makeChiRequest(http.MethodPost, "/api/chat/token", exchangeBody(2, "abc"), nil)
	h.Exchange(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, w))
}
