package auth

import (
	"context"
	"testing"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/filestash/internal/domain"
	"github.com/rise-and-shine/filestash/internal/repository"
	"github.com/rise-and-shine/filestash/pkg/hasher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	nextID int64
	users  map[int64]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[int64]domain.User{}}
}

func (m *memUserRepo) Create(_ context.Context, entity *domain.User) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == entity.Email {
			return nil, errx.New(
				"conflict while creating User",
				errx.WithCode(repository.CodeEmailTaken),
				errx.WithType(errx.T_Conflict),
			)
		}
	}
	m.nextID++
	entity.ID = m.nextID
	m.users[entity.ID] = *entity
	return entity, nil
}

func (m *memUserRepo) FirstOrNil(_ context.Context, f repository.UserFilters) (*domain.User, error) {
	for _, u := range m.users {
		if f.ID != nil && u.ID != *f.ID {
			continue
		}
		if f.Email != nil && u.Email != *f.Email {
			continue
		}
		u := u
		return &u, nil
	}
	return nil, nil
}

type fakeSessions struct {
	issued  map[string]int64
	revoked []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{issued: map[string]int64{}}
}

func (f *fakeSessions) Issue(_ context.Context, userID int64) (string, error) {
	tok := "tok-" + string(rune('a'+len(f.issued)))
	f.issued[tok] = userID
	return tok, nil
}

func (f *fakeSessions) Revoke(_ context.Context, rawToken string) error {
	f.revoked = append(f.revoked, rawToken)
	delete(f.issued, rawToken)
	return nil
}

func newTestService() (*Service, *memUserRepo, *fakeSessions) {
	repo := newMemUserRepo()
	sessions := newFakeSessions()
	return NewService(repo, sessions), repo, sessions
}

func errCode(err error) string {
	return errx.AsErrorX(err).Code()
}

func TestRegister(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	view, err := svc.Register(ctx, "bob@dylan.com", "toto1234!")
	require.NoError(t, err)
	assert.Equal(t, int64(1), view.ID)
	assert.Equal(t, "bob@dylan.com", view.Email)

	// stored password is hashed, not plaintext
	stored := repo.users[view.ID]
	assert.NotEqual(t, "toto1234!", stored.Password)
	assert.True(t, hasher.Compare("toto1234!", stored.Password))
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "pw")
	require.Error(t, err)
	assert.Equal(t, CodeMissingEmail, errCode(err))

	_, err = svc.Register(ctx, "a@b.c", "")
	require.Error(t, err)
	assert.Equal(t, CodeMissingPassword, errCode(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@dylan.com", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "bob@dylan.com", "pw2")
	require.Error(t, err)
	assert.Equal(t, repository.CodeEmailTaken, errCode(err))
}

func TestConnect(t *testing.T) {
	svc, _, sessions := newTestService()
	ctx := context.Background()

	view, err := svc.Register(ctx, "bob@dylan.com", "toto1234!")
	require.NoError(t, err)

	tok, err := svc.Connect(ctx, "bob@dylan.com", "toto1234!")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.Equal(t, view.ID, sessions.issued[tok])
}

func TestConnectBadCredentials(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@dylan.com", "toto1234!")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Connect(ctx, "bob@dylan.com", "wrong")
		require.Error(t, err)
		assert.Equal(t, CodeUnauthorized, errCode(err))
		assert.Equal(t, errx.T_Authentication, errx.AsErrorX(err).Type())
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Connect(ctx, "nobody@dylan.com", "toto1234!")
		require.Error(t, err)
		assert.Equal(t, CodeUnauthorized, errCode(err))
	})
}

func TestDisconnect(t *testing.T) {
	svc, _, sessions := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@dylan.com", "pw")
	require.NoError(t, err)

	tok, err := svc.Connect(ctx, "bob@dylan.com", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.Disconnect(ctx, tok))
	assert.Contains(t, sessions.revoked, tok)
}

func TestMe(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	view, err := svc.Register(ctx, "bob@dylan.com", "pw")
	require.NoError(t, err)

	me, err := svc.Me(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view, me)

	_, err = svc.Me(ctx, 999)
	require.Error(t, err)
	assert.Equal(t, CodeUnauthorized, errCode(err))
}
