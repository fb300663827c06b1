package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-go/backend/internal/types"
)

func TestRegisterEndpoint(t *testing.T) {
	env := newTestEnv(t)

	payload := jsonObj{
		"email":      "vasya@example.com",
		"username":   "vasya",
		"first_name": "Vasya",
		"last_name":  "Pupkin",
		"password":   "supersecret",
	}
	w := env.request(t, http.MethodPost, "/api/users", payload, "")
	requireStatus(t, w, http.StatusCreated)

	var got types.UserResponse
	decodeJSON(t, w, &got)
	assert.Equal(t, "vasya", got.Username)
	assert.False(t, got.IsSubscribed)
	assert.NotContains(t, w.Body.String(), "supersecret")

	// Duplicate registration is rejected.
	w = env.request(t, http.MethodPost, "/api/users", payload, "")
	requireStatus(t, w, http.StatusBadRequest)

	// "me" collides with the profile route and is reserved.
	payload["email"] = "me@example.com"
	payload["username"] = "me"
	w = env.request(t, http.MethodPost, "/api/users", payload, "")
	requireStatus(t, w, http.StatusBadRequest)
}

func TestLoginLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "login")

	w := env.request(t, http.MethodPost, "/api/auth/token/login",
		jsonObj{"email": "login@example.com", "password": "supersecret"}, "")
	requireStatus(t, w, http.StatusOK)

	var token types.TokenResponse
	decodeJSON(t, w, &token)
	require.NotEmpty(t, token.AuthToken)

	w = env.request(t, http.MethodPost, "/api/auth/token/login",
		jsonObj{"email": "login@example.com", "password": "wrong-password"}, "")
	requireStatus(t, w, http.StatusBadRequest)

	w = env.request(t, http.MethodPost, "/api/auth/token/logout", nil, token.AuthToken)
	requireStatus(t, w, http.StatusNoContent)

	w = env.request(t, http.MethodPost, "/api/auth/token/logout", nil, "")
	requireStatus(t, w, http.StatusUnauthorized)
}

func TestMeAndProfileEndpoints(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.signUp(t, "someone")

	w := env.request(t, http.MethodGet, "/api/users/me", nil, token)
	requireStatus(t, w, http.StatusOK)
	var me types.UserResponse
	decodeJSON(t, w, &me)
	assert.Equal(t, user.ID, me.ID)

	w = env.request(t, http.MethodGet, "/api/users/me", nil, "")
	requireStatus(t, w, http.StatusUnauthorized)

	w = env.request(t, http.MethodGet, "/api/users/"+user.ID.String(), nil, "")
	requireStatus(t, w, http.StatusOK)

	w = env.request(t, http.MethodGet, "/api/users/"+uuid.NewString(), nil, "")
	requireStatus(t, w, http.StatusNotFound)
}

func TestSetPasswordEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "rotator")

	w := env.request(t, http.MethodPost, "/api/users/set_password",
		jsonObj{"current_password": "wrong", "new_password": "freshsecret"}, token)
	requireStatus(t, w, http.StatusBadRequest)

	w = env.request(t, http.MethodPost, "/api/users/set_password",
		jsonObj{"current_password": "supersecret", "new_password": "freshsecret"}, token)
	requireStatus(t, w, http.StatusNoContent)

	w = env.request(t, http.MethodPost, "/api/auth/token/login",
		jsonObj{"email": "rotator@example.com", "password": "freshsecret"}, "")
	requireStatus(t, w, http.StatusOK)
}

func TestSubscribeEndpointLifecycle(t *testing.T) {
	env := newTestEnv(t)
	follower, followerToken := env.signUp(t, "follower")
	author, authorToken := env.signUp(t, "author")
	salt := env.seedIngredient(t, "salt", "g")

	w := env.request(t, http.MethodPost, "/api/recipes",
		recipePayload("authored", nil, jsonObj{"id": salt.ID, "amount": 1}), authorToken)
	requireStatus(t, w, http.StatusCreated)

	path := "/api/users/" + author.ID.String() + "/subscribe"

	w = env.request(t, http.MethodPost, path, nil, followerToken)
	requireStatus(t, w, http.StatusCreated)
	var sub types.SubscriptionResponse
	decodeJSON(t, w, &sub)
	assert.Equal(t, author.ID, sub.ID)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, 1, sub.RecipesCount)
	require.Len(t, sub.Recipes, 1)
	assert.Equal(t, "authored", sub.Recipes[0].Name)

	// Duplicate and self subscriptions are both rejected.
	w = env.request(t, http.MethodPost, path, nil, followerToken)
	requireStatus(t, w, http.StatusBadRequest)

	w = env.request(t, http.MethodPost, "/api/users/"+follower.ID.String()+"/subscribe", nil, followerToken)
	requireStatus(t, w, http.StatusBadRequest)

	w = env.request(t, http.MethodGet, "/api/users/subscriptions", nil, followerToken)
	requireStatus(t, w, http.StatusOK)
	var page struct {
		Count   int64                        `json:"count"`
		Results []types.SubscriptionResponse `json:"results"`
	}
	decodeJSON(t, w, &page)
	require.EqualValues(t, 1, page.Count)
	assert.Equal(t, author.ID, page.Results[0].ID)

	w = env.request(t, http.MethodDelete, path, nil, followerToken)
	requireStatus(t, w, http.StatusNoContent)

	w = env.request(t, http.MethodDelete, path, nil, followerToken)
	requireStatus(t, w, http.StatusBadRequest)

	w = env.request(t, http.MethodPost, "/api/users/"+uuid.NewString()+"/subscribe", nil, followerToken)
	requireStatus(t, w, http.StatusNotFound)
}

func TestListUsersEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.signUp(t, "first")
	env.signUp(t, "second")

	w := env.request(t, http.MethodGet, "/api/users?limit=1", nil, "")
	requireStatus(t, w, http.StatusOK)

	var page struct {
		Count   int64                `json:"count"`
		Results []types.UserResponse `json:"results"`
	}
	decodeJSON(t, w, &page)
	assert.EqualValues(t, 2, page.Count)
	assert.Len(t, page.Results, 1)
}
