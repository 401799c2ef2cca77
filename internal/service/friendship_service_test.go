package service

import (
	"study_portal_backend/internal/model"
	"study_portal_backend/internal/repository"
	"study_portal_backend/internal/util"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFriendshipService() *FriendshipService {
	return NewFriendshipService(repository.NewFriendshipRepository(), repository.NewUserRepository())
}

func TestFriendship_CreateOrUpdateUser(t *testing.T) {
	svc := newFriendshipService()

	u, err := svc.CreateOrUpdateUser("alice", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)

	u, err = svc.CreateOrUpdateUser("alice", "Alicia")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", u.Name)

	users, err := svc.SearchUsers("alice")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alicia", users[0].Name)

	_, err = svc.CreateOrUpdateUser("", "x")
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestFriendship_SearchIsCaseSensitiveSubstring(t *testing.T) {
	svc := newFriendshipService()
	for _, id := range []string{"student42", "Student7", "teacher_42"} {
		_, err := svc.CreateOrUpdateUser(id, id)
		require.NoError(t, err)
	}

	users, err := svc.SearchUsers("42")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "student42", users[0].UserID)
	assert.Equal(t, "teacher_42", users[1].UserID)

	users, err = svc.SearchUsers("stud")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "student42", users[0].UserID)

	_, err = svc.SearchUsers("")
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestFriendship_RequestLifecycle(t *testing.T) {
	svc := newFriendshipService()
	_, _ = svc.CreateOrUpdateUser("alice", "Alice")
	_, _ = svc.CreateOrUpdateUser("bob", "Bob")

	req, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)

	pending := svc.ListFriendRequests("bob")
	require.Len(t, pending, 1)
	assert.Equal(t, "Alice", pending[0].SenderName)

	updated, err := svc.RespondToRequest(req.ID, model.RequestAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.RequestAccepted, updated.Status)

	assert.True(t, svc.AreFriends("alice", "bob"))
	assert.True(t, svc.AreFriends("bob", "alice"))

	aliceFriends := svc.ListFriends("alice")
	bobFriends := svc.ListFriends("bob")
	require.Len(t, aliceFriends, 1)
	require.Len(t, bobFriends, 1)
	assert.Equal(t, "bob", aliceFriends[0].FriendID)
	assert.Equal(t, "Bob", aliceFriends[0].FriendName)
	assert.Equal(t, "alice", bobFriends[0].FriendID)
	assert.Empty(t, svc.ListFriendRequests("bob"))
}

func TestFriendship_SendRequestConflicts(t *testing.T) {
	svc := newFriendshipService()

	_, err := svc.SendFriendRequest("alice", "alice")
	assert.ErrorIs(t, err, util.ErrValidation)

	req, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)

	_, err = svc.SendFriendRequest("alice", "bob")
	assert.ErrorIs(t, err, util.ErrDuplicateRequest)

	_, err = svc.RespondToRequest(req.ID, model.RequestAccepted)
	require.NoError(t, err)

	_, err = svc.SendFriendRequest("alice", "bob")
	assert.ErrorIs(t, err, util.ErrAlreadyFriends)
	_, err = svc.SendFriendRequest("bob", "alice")
	assert.ErrorIs(t, err, util.ErrAlreadyFriends)
}

func TestFriendship_RespondUnknownAndResolved(t *testing.T) {
	svc := newFriendshipService()

	got, err := svc.RespondToRequest(99, model.RequestAccepted)
	assert.NoError(t, err)
	assert.Nil(t, got)

	req, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)
	_, err = svc.RespondToRequest(req.ID, model.RequestRejected)
	require.NoError(t, err)
	assert.False(t, svc.AreFriends("alice", "bob"))

	_, err = svc.RespondToRequest(req.ID, model.RequestAccepted)
	assert.ErrorIs(t, err, util.ErrRequestResolved)
	assert.Empty(t, svc.ListFriends("alice"))

	_, err = svc.RespondToRequest(req.ID, model.RequestPending)
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestFriendship_MutualRequestsCreateOneFriendship(t *testing.T) {
	svc := newFriendshipService()
	ab, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)
	ba, err := svc.SendFriendRequest("bob", "alice")
	require.NoError(t, err)

	_, err = svc.RespondToRequest(ab.ID, model.RequestAccepted)
	require.NoError(t, err)

	assert.Len(t, svc.ListFriends("alice"), 1)
	assert.Len(t, svc.ListFriends("bob"), 1)
	assert.Empty(t, svc.ListFriendRequests("alice"), "reverse request resolved")

	_, err = svc.RespondToRequest(ba.ID, model.RequestAccepted)
	assert.ErrorIs(t, err, util.ErrRequestResolved)
	assert.Len(t, svc.ListFriends("alice"), 1)
}

func TestFriendship_UnknownNames(t *testing.T) {
	svc := newFriendshipService()
	req, err := svc.SendFriendRequest("ghost", "bob")
	require.NoError(t, err)

	pending := svc.ListFriendRequests("bob")
	require.Len(t, pending, 1)
	assert.Equal(t, model.UnknownName, pending[0].SenderName)

	_, err = svc.RespondToRequest(req.ID, model.RequestAccepted)
	require.NoError(t, err)
	friends := svc.ListFriends("bob")
	require.Len(t, friends, 1)
	assert.Equal(t, model.UnknownName, friends[0].FriendName)
}

func TestFriendship_RemoveFriendDeletesBothEdges(t *testing.T) {
	svc := newFriendshipService()
	req, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)
	_, err = svc.RespondToRequest(req.ID, model.RequestAccepted)
	require.NoError(t, err)

	assert.True(t, svc.RemoveFriend("bob", "alice"))
	assert.Empty(t, svc.ListFriends("alice"))
	assert.Empty(t, svc.ListFriends("bob"))
	assert.False(t, svc.RemoveFriend("alice", "bob"))
}

func TestFriendship_ConcurrentDuplicateRequests(t *testing.T) {
	svc := newFriendshipService()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SendFriendRequest("alice", "bob")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, util.ErrDuplicateRequest)
		}
	}
	assert.Equal(t, 1, created)
	assert.Len(t, svc.ListFriendRequests("bob"), 1)
}
