package friendships

import (
	"context"
	"instauto/pkg/instauto/actions"
	"instauto/pkg/instauto/actions/actionstest"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewChange(t *testing.T) {
	change, err := NewChange("2002")
	require.NoError(t, err)
	require.Equal(t, Change{UserID: "2002", RadioType: "wifi-none"}, change)

	for _, id := range []string{"", "abc", "12_34"} {
		_, err := NewChange(id)
		require.ErrorIs(t, err, actions.ErrValidation, id)
	}
}

func TestChanges(t *testing.T) {
	r := actionstest.New(t)
	m := New(r)
	ctx := context.Background()

	change, err := NewChange("2002")
	require.NoError(t, err)

	submit := []func(context.Context, Change) error{
		func(ctx context.Context, c Change) error { _, err := m.Create(ctx, c); return err },
		func(ctx context.Context, c Change) error { _, err := m.Destroy(ctx, c); return err },
		func(ctx context.Context, c Change) error { _, err := m.Remove(ctx, c); return err },
		func(ctx context.Context, c Change) error { _, err := m.ApproveRequest(ctx, c); return err },
		func(ctx context.Context, c Change) error { _, err := m.IgnoreRequest(ctx, c); return err },
	}
	for _, fn := range submit {
		require.NoError(t, fn(ctx, change))
	}

	expected := []string{
		"/api/v1/friendships/create/2002/",
		"/api/v1/friendships/destroy/2002/",
		"/api/v1/friendships/remove_follower/2002/",
		"/api/v1/friendships/approve/2002/",
		"/api/v1/friendships/ignore/2002/",
	}
	reqs := r.Requests()
	require.Len(t, reqs, len(expected))
	for i, req := range reqs {
		require.Equal(t, http.MethodPost, req.Method)
		require.Equal(t, expected[i], req.Path)

		body := req.Signed(t)
		require.Equal(t, "2002", body["user_id"])
		require.Equal(t, "csrf-token", body["_csrftoken"])
		require.Equal(t, actionstest.DefaultSession.DeviceID, body["device_id"])
	}
}

func TestShowAndPending(t *testing.T) {
	r := actionstest.New(t)
	m := New(r)

	show, err := NewShow("2002")
	require.NoError(t, err)
	_, err = m.Show(context.Background(), show)
	require.NoError(t, err)
	_, err = m.PendingRequests(context.Background())
	require.NoError(t, err)

	reqs := r.Requests()
	require.Equal(t, http.MethodGet, reqs[0].Method)
	require.Equal(t, "/api/v1/friendships/show/2002/", reqs[0].Path)
	require.Equal(t, "/api/v1/friendships/pending/", reqs[1].Path)
}

func TestLists(t *testing.T) {
	r := actionstest.New(t)
	m := New(r)

	list, err := NewList("2002")
	require.NoError(t, err)
	require.NotEmpty(t, list.RankToken)

	_, err = m.GetFollowers(context.Background(), list)
	require.NoError(t, err)

	list.Query = "ali"
	list.MaxID = "QVFE"
	_, err = m.GetFollowing(context.Background(), list)
	require.NoError(t, err)

	reqs := r.Requests()
	require.Equal(t, "/api/v1/friendships/2002/followers/", reqs[0].Path)
	require.Equal(t, "follow_list_page", reqs[0].Query.Get("search_surface"))
	require.Equal(t, list.RankToken, reqs[0].Query.Get("rank_token"))
	require.False(t, reqs[0].Query.Has("max_id"))
	require.False(t, reqs[0].Query.Has("query"))

	require.Equal(t, "/api/v1/friendships/2002/following/", reqs[1].Path)
	require.Equal(t, "ali", reqs[1].Query.Get("query"))
	require.Equal(t, "QVFE", reqs[1].Query.Get("max_id"))
}
