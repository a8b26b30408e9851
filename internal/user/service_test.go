package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	requestentity "github.com/khidmajo/khidma-api/internal/request/entity"
	requestrepo "github.com/khidmajo/khidma-api/internal/request/repo"
	"github.com/khidmajo/khidma-api/internal/user/entity"
	userrepo "github.com/khidmajo/khidma-api/internal/user/repo"
)

type fakeRevoker struct {
	revoked []string
}

func (f *fakeRevoker) Revoke(userID string) { f.revoked = append(f.revoked, userID) }

func newTestService(t *testing.T) (*Service, *userrepo.MemoryRepo, *requestrepo.MemoryRepo, *fakeRevoker) {
	t.Helper()
	users := userrepo.NewMemoryRepo()
	requests := requestrepo.NewMemoryRepo()
	revoker := &fakeRevoker{}
	return NewService(users, requests, revoker), users, requests, revoker
}

func seedUser(t *testing.T, users *userrepo.MemoryRepo, id, userType string) {
	t.Helper()
	require.NoError(t, users.Create(context.Background(), &entity.User{
		ID:       id,
		Email:    id + "@example.com",
		Name:     "User " + id,
		UserType: userType,
		Active:   true,
	}))
}

func seedRequest(t *testing.T, requests *requestrepo.MemoryRepo, id, providerID, status string) {
	t.Helper()
	req := &requestentity.Request{
		ID:         id,
		CustomerID: "usr_customer",
		CategoryID: "plumbing",
		Title:      "Request " + id,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if providerID != "" {
		req.ProviderID = &providerID
	}
	require.NoError(t, requests.Create(context.Background(), req))
}

func TestService_DeactivationCascade(t *testing.T) {
	svc, users, requests, revoker := newTestService(t)
	ctx := context.Background()
	seedUser(t, users, "usr_p1", entity.TypeProvider)

	seedRequest(t, requests, "req_open", "usr_p1", requestentity.StatusPending)
	seedRequest(t, requests, "req_done", "usr_p1", requestentity.StatusCompleted)

	cancelled, err := svc.SetActive(ctx, "usr_p1", false)
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)

	// the open request is cancelled and unassigned
	open, err := requests.GetByID(ctx, "req_open")
	require.NoError(t, err)
	assert.Equal(t, requestentity.StatusCancelled, open.Status)
	assert.Nil(t, open.ProviderID)

	// the completed request is untouched
	done, err := requests.GetByID(ctx, "req_done")
	require.NoError(t, err)
	assert.Equal(t, requestentity.StatusCompleted, done.Status)
	require.NotNil(t, done.ProviderID)
	assert.Equal(t, "usr_p1", *done.ProviderID)

	// sessions are revoked and the account is off
	assert.Equal(t, []string{"usr_p1"}, revoker.revoked)
	u, err := users.GetByID(ctx, "usr_p1")
	require.NoError(t, err)
	assert.False(t, u.Active)
	assert.NotNil(t, u.DeactivatedAt)
}

func TestService_DeactivationCancelsAllOpenStatuses(t *testing.T) {
	svc, users, requests, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, users, "usr_p1", entity.TypeProvider)

	seedRequest(t, requests, "req_pending", "usr_p1", requestentity.StatusPending)
	seedRequest(t, requests, "req_accepted", "usr_p1", requestentity.StatusAccepted)
	seedRequest(t, requests, "req_working", "usr_p1", requestentity.StatusInProgress)
	seedRequest(t, requests, "req_cancelled", "usr_p1", requestentity.StatusCancelled)

	cancelled, err := svc.SetActive(ctx, "usr_p1", false)
	require.NoError(t, err)
	assert.Equal(t, 3, cancelled)
}

func TestService_ReactivationDoesNotResurrect(t *testing.T) {
	svc, users, requests, _ := newTestService(t)
	ctx := context.Background()
	seedUser(t, users, "usr_p1", entity.TypeProvider)
	seedRequest(t, requests, "req_open", "usr_p1", requestentity.StatusAccepted)

	_, err := svc.SetActive(ctx, "usr_p1", false)
	require.NoError(t, err)

	cancelled, err := svc.SetActive(ctx, "usr_p1", true)
	require.NoError(t, err)
	assert.Zero(t, cancelled)

	u, err := users.GetByID(ctx, "usr_p1")
	require.NoError(t, err)
	assert.True(t, u.Active)
	assert.Nil(t, u.DeactivatedAt)

	req, err := requests.GetByID(ctx, "req_open")
	require.NoError(t, err)
	assert.Equal(t, requestentity.StatusCancelled, req.Status)
}

func TestService_SetActiveUnknownUser(t *testing.T) {
	svc, _, _, revoker := newTestService(t)

	_, err := svc.SetActive(context.Background(), "usr_ghost", false)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, revoker.revoked)
}
