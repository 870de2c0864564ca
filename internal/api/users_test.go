package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	router, _ := setupTestAPI(t)

	token := registerAndLogin(t, router, "alice")

	w := doRequest(t, router, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, false, body["is_subscribed"])
	assert.NotContains(t, w.Body.String(), "password")

	// No token, no profile.
	w = doRequest(t, router, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	router, _ := setupTestAPI(t)

	base := gin.H{
		"email":      "alice@example.com",
		"username":   "alice",
		"first_name": "Alice",
		"last_name":  "Cooper",
		"password":   "s3cret-pass",
	}

	cases := []struct {
		name     string
		override gin.H
	}{
		{"missing email", gin.H{"email": ""}},
		{"bad email", gin.H{"email": "not-an-email"}},
		{"short password", gin.H{"password": "short"}},
		{"username with spaces", gin.H{"username": "alice cooper"}},
		{"username with comma", gin.H{"username": "alice,cooper"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := gin.H{}
			for k, v := range base {
				payload[k] = v
			}
			for k, v := range tc.override {
				payload[k] = v
			}
			w := doRequest(t, router, http.MethodPost, "/api/users", "", payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterReservedUsername(t *testing.T) {
	router, _ := setupTestAPI(t)

	w := doRequest(t, router, http.MethodPost, "/api/users", "", gin.H{
		"email":      "me@example.com",
		"username":   "me",
		"first_name": "Me",
		"last_name":  "Myself",
		"password":   "s3cret-pass",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), "errors")
}

func TestRegisterDuplicate(t *testing.T) {
	router, _ := setupTestAPI(t)

	registerAndLogin(t, router, "alice")

	w := doRequest(t, router, http.MethodPost, "/api/users", "", gin.H{
		"email":      "alice@example.com",
		"username":   "alice2",
		"first_name": "Alice",
		"last_name":  "Cooper",
		"password":   "s3cret-pass",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), "errors")
}

func TestLoginBadCredentials(t *testing.T) {
	router, _ := setupTestAPI(t)

	registerAndLogin(t, router, "alice")

	w := doRequest(t, router, http.MethodPost, "/api/auth/token/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), "errors")
}

func TestSetPasswordEndpoint(t *testing.T) {
	router, _ := setupTestAPI(t)

	token := registerAndLogin(t, router, "alice")

	w := doRequest(t, router, http.MethodPost, "/api/users/set_password", token, gin.H{
		"current_password": "s3cret-pass",
		"new_password":     "brand-new-pass",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, router, http.MethodPost, "/api/auth/token/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubscribeFlow(t *testing.T) {
	router, db := setupTestAPI(t)

	aliceToken := registerAndLogin(t, router, "alice")
	registerAndLogin(t, router, "bob")
	bobID := userIDByUsername(t, db, "bob")

	w := doRequest(t, router, http.MethodPost, "/api/users/"+bobID+"/subscribe", aliceToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "bob", body["username"])
	assert.Equal(t, true, body["is_subscribed"])
	assert.EqualValues(t, 0, body["recipes_count"])

	// Subscribing twice is a conflict.
	w = doRequest(t, router, http.MethodPost, "/api/users/"+bobID+"/subscribe", aliceToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), "errors")

	// The profile now reports the subscription.
	w = doRequest(t, router, http.MethodGet, "/api/users/"+bobID, aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["is_subscribed"])

	w = doRequest(t, router, http.MethodDelete, "/api/users/"+bobID+"/subscribe", aliceToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(t, router, http.MethodDelete, "/api/users/"+bobID+"/subscribe", aliceToken, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), "errors")
}

func TestSubscribeSelf(t *testing.T) {
	router, db := setupTestAPI(t)

	token := registerAndLogin(t, router, "alice")
	aliceID := userIDByUsername(t, db, "alice")

	w := doRequest(t, router, http.MethodPost, "/api/users/"+aliceID+"/subscribe", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w), "errors")
}

func TestSubscriptionsEnvelope(t *testing.T) {
	router, db := setupTestAPI(t)

	aliceToken := registerAndLogin(t, router, "alice")
	bobToken := registerAndLogin(t, router, "bob")
	bobID := userIDByUsername(t, db, "bob")

	tag := seedTag(t, db, "Dinner", "dinner", "#49B64E")
	salt := seedIngredient(t, db, "Salt", "g")
	w := doRequest(t, router, http.MethodPost, "/api/recipes", bobToken,
		recipePayload("Soup", []uint{tag.ID}, salt.ID, 5))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(t, router, http.MethodPost, "/api/users/"+bobID+"/subscribe", aliceToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, router, http.MethodGet, "/api/users/subscriptions", aliceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["count"])
	assert.Nil(t, body["next"])
	assert.Nil(t, body["previous"])

	results, ok := body["results"].([]interface{})
	require.True(t, ok)
	require.Len(t, results, 1)
	sub := results[0].(map[string]interface{})
	assert.Equal(t, "bob", sub["username"])
	assert.EqualValues(t, 1, sub["recipes_count"])
	recipes := sub["recipes"].([]interface{})
	require.Len(t, recipes, 1)
	light := recipes[0].(map[string]interface{})
	assert.Equal(t, "Soup", light["name"])
	// Abbreviated view only.
	assert.NotContains(t, light, "text")
	assert.NotContains(t, light, "ingredients")
}

func TestSubscriptionsRecipesLimit(t *testing.T) {
	router, db := setupTestAPI(t)

	aliceToken := registerAndLogin(t, router, "alice")
	bobToken := registerAndLogin(t, router, "bob")
	bobID := userIDByUsername(t, db, "bob")

	tag := seedTag(t, db, "Dinner", "dinner", "#49B64E")
	salt := seedIngredient(t, db, "Salt", "g")
	for _, name := range []string{"Soup", "Bread", "Stew"} {
		w := doRequest(t, router, http.MethodPost, "/api/recipes", bobToken,
			recipePayload(name, []uint{tag.ID}, salt.ID, 5))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doRequest(t, router, http.MethodPost, "/api/users/"+bobID+"/subscribe?recipes_limit=2", aliceToken, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	// The count reports all recipes even when the embedded list is capped.
	assert.EqualValues(t, 3, body["recipes_count"])
	assert.Len(t, body["recipes"].([]interface{}), 2)
}

func TestLogout(t *testing.T) {
	router, _ := setupTestAPI(t)

	token := registerAndLogin(t, router, "alice")

	w := doRequest(t, router, http.MethodPost, "/api/auth/token/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
