package steamapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

func testQuery() ConfirmationQuery {
	return ConfirmationQuery{
		DeviceID:  "android:test-device",
		SteamID:   "76561199000000001",
		Key:       "dGVzdC1rZXk=",
		Timestamp: 1700000000,
		Tag:       "list",
		Cookies:   []string{"sessionid=abc", "steamLoginSecure=xyz"},
	}
}

func TestFetchConfirmations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/mobileconf/getlist", r.URL.Path)

		query := r.URL.Query()
		assert.Equal(t, "android:test-device", query.Get("p"))
		assert.Equal(t, "76561199000000001", query.Get("a"))
		assert.Equal(t, "dGVzdC1rZXk=", query.Get("k"))
		assert.Equal(t, "1700000000", query.Get("t"))
		assert.Equal(t, "react", query.Get("m"))
		assert.Equal(t, "list", query.Get("tag"))
		assert.Contains(t, r.Header.Get("Cookie"), "sessionid=abc")
		assert.Equal(t, "okhttp/4.9.2", r.Header.Get("User-Agent"))

		w.Header().Set(eresultHeader, "1")
		_, _ = w.Write([]byte(`{"success":true,"conf":[{"id":"101","nonce":"202","type":2,"headline":"Trade with partner"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	list, meta, err := c.FetchConfirmations(context.Background(), testQuery())

	require.NoError(t, err)
	assert.Equal(t, models.EResultOK, meta.Result)
	assert.True(t, list.Success)
	require.Len(t, list.Confirmations, 1)
	assert.Equal(t, "101", list.Confirmations[0].ID)
	assert.Equal(t, "202", list.Confirmations[0].Nonce)
	assert.Equal(t, models.ConfirmationTypeTrade, list.Confirmations[0].Type)
}

func TestFetchConfirmationDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mobileconf/details/101", r.URL.Path)
		assert.Equal(t, "detail", r.URL.Query().Get("tag"))
		_, _ = w.Write([]byte(`{"success":true,"html":"<div>detail</div>"}`))
	}))
	defer srv.Close()

	q := testQuery()
	q.Tag = "detail"
	c := newTestClient(t, srv.URL)
	raw, _, err := c.FetchConfirmationDetail(context.Background(), q, "101")

	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"html":"<div>detail</div>"}`, string(raw))
}

func TestSendConfirmationOp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/mobileconf/ajaxop", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "allow", r.PostForm.Get("op"))
		assert.Equal(t, "101", r.PostForm.Get("cid"))
		assert.Equal(t, "202", r.PostForm.Get("ck"))
		assert.Equal(t, "accept", r.PostForm.Get("tag"))
		assert.Contains(t, r.Header.Get("Referer"), "/mobileconf/details/101")

		w.Header().Set(eresultHeader, "1")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	q := testQuery()
	q.Tag = "accept"
	c := newTestClient(t, srv.URL)
	result, meta, err := c.SendConfirmationOp(context.Background(), q, "allow", "101", "202")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.EResultOK, meta.Result)
}

func TestFetchConfirmations_HTTPFailureKeepsMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(eresultHeader, "15")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, meta, err := c.FetchConfirmations(context.Background(), testQuery())

	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, http.StatusForbidden, meta.HTTPStatus)
	assert.Equal(t, models.EResultAccessDenied, meta.Result)
}

func TestParseEResultHeader(t *testing.T) {
	assert.Equal(t, models.EResultOK, parseEResultHeader("1"))
	assert.Equal(t, models.EResultExpired, parseEResultHeader(" 27 "))
	assert.Equal(t, models.EResultInvalid, parseEResultHeader(""))
	assert.Equal(t, models.EResultInvalid, parseEResultHeader("nope"))
}
