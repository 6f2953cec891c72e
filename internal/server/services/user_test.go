package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/server/auth"
	"github.com/dmitrijs2005/postplanner/internal/server/config"
	sm "github.com/dmitrijs2005/postplanner/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	s := NewUserService(db, rm, cfg)
	s.hashCost = bcrypt.MinCost
	return s
}

func hashed(t *testing.T, password string) []byte {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestRegister(t *testing.T) {
	db, _ := newSQLMockDB(t)

	t.Run("stores bcrypt hash and normalized email", func(t *testing.T) {
		u := &fakeUsersRepo{}
		s := newUserService(t, db, &fakeRepoManager{u: u})

		got, err := s.Register(context.Background(), "  Alice@Example.COM ", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, "u-new", got.ID)
		assert.Equal(t, "alice@example.com", u.created.Email)
		assert.NotEqual(t, []byte("correct horse"), u.created.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword(u.created.PasswordHash, []byte("correct horse")))
	})

	for name, in := range map[string][2]string{
		"bad email":      {"not-an-email", "long enough"},
		"short password": {"bob@example.com", "short"},
		"empty":          {"", ""},
	} {
		t.Run(name, func(t *testing.T) {
			u := &fakeUsersRepo{}
			s := newUserService(t, db, &fakeRepoManager{u: u})
			_, err := s.Register(context.Background(), in[0], in[1])
			assert.ErrorIs(t, err, common.ErrorValidation)
			assert.Nil(t, u.created)
		})
	}

	t.Run("duplicate email", func(t *testing.T) {
		s := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{createErr: common.ErrorAlreadyExists}})
		_, err := s.Register(context.Background(), "bob@example.com", "long enough")
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)
		assert.ErrorContains(t, err, "error creating user")
	})
}

func TestLogin_Flows(t *testing.T) {
	db, _ := newSQLMockDB(t)
	alice := &sm.User{ID: "u1", Email: "alice@example.com", PasswordHash: hashed(t, "right password")}

	sNF := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{}, r: &fakeRefreshRepo{}})
	_, err := sNF.Login(context.Background(), "ghost@example.com", "whatever1")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	sIE := newUserService(t, db, &fakeRepoManager{u: &fakeUsersRepo{getErr: errBoom{}}, r: &fakeRefreshRepo{}})
	_, err = sIE.Login(context.Background(), "alice@example.com", "right password")
	assert.ErrorIs(t, err, common.ErrorInternal)

	users := &fakeUsersRepo{byEmail: map[string]*sm.User{alice.Email: alice}}

	sWP := newUserService(t, db, &fakeRepoManager{u: users, r: &fakeRefreshRepo{}})
	_, err = sWP.Login(context.Background(), "alice@example.com", "wrong password")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	refresh := &fakeRefreshRepo{}
	sOK := newUserService(t, db, &fakeRepoManager{u: users, r: refresh})
	pair, err := sOK.Login(context.Background(), "ALICE@example.com", "right password")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, []string{pair.RefreshToken}, refresh.created)

	uid, err := auth.GetUserIDFromToken(pair.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	sCE := newUserService(t, db, &fakeRepoManager{u: users, r: &fakeRefreshRepo{createErr: errBoom{}}})
	_, err = sCE.Login(context.Background(), "alice@example.com", "right password")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestRefreshToken_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	refresh := &fakeRefreshRepo{findOut: &sm.RefreshToken{UserID: "u1", Expires: time.Now().Add(10 * time.Minute)}}
	s := newUserService(t, db, &fakeRepoManager{r: refresh})

	pair, err := s.RefreshToken(context.Background(), "refresh-xyz")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, []string{"refresh-xyz"}, refresh.deleted)
	assert.Equal(t, []string{pair.RefreshToken}, refresh.created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_Expired(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, &fakeRepoManager{r: &fakeRefreshRepo{
		findOut: &sm.RefreshToken{UserID: "u1", Expires: time.Now().Add(-time.Minute)},
	}})

	_, err := s.RefreshToken(context.Background(), "r")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}

func TestRefreshToken_FindErrors(t *testing.T) {
	db, _ := newSQLMockDB(t)

	s := newUserService(t, db, &fakeRepoManager{r: &fakeRefreshRepo{findErr: common.ErrorNotFound}})
	_, err := s.RefreshToken(context.Background(), "r")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	s = newUserService(t, db, &fakeRepoManager{r: &fakeRefreshRepo{findErr: errBoom{}}})
	_, err = s.RefreshToken(context.Background(), "r")
	assert.ErrorContains(t, err, "error searching refresh token: boom")
}

func TestRefreshToken_DeleteErrRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := newUserService(t, db, &fakeRepoManager{r: &fakeRefreshRepo{
		findOut: &sm.RefreshToken{UserID: "u1", Expires: time.Now().Add(10 * time.Minute)},
		delErr:  errBoom{},
	}})

	_, err := s.RefreshToken(context.Background(), "r")
	assert.ErrorContains(t, err, "error deleting refresh token: boom")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshToken_CreateErrRollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := newUserService(t, db, &fakeRepoManager{r: &fakeRefreshRepo{
		findOut:   &sm.RefreshToken{UserID: "u1", Expires: time.Now().Add(10 * time.Minute)},
		createErr: errBoom{},
	}})

	_, err := s.RefreshToken(context.Background(), "r")
	assert.ErrorIs(t, err, common.ErrorInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogout(t *testing.T) {
	db, _ := newSQLMockDB(t)
	refresh := &fakeRefreshRepo{}
	s := newUserService(t, db, &fakeRepoManager{r: refresh})

	require.NoError(t, s.Logout(context.Background(), ""))
	require.NoError(t, s.Logout(context.Background(), "tok"))
	assert.Equal(t, []string{"tok"}, refresh.deleted)

	s = newUserService(t, db, &fakeRepoManager{r: &fakeRefreshRepo{delErr: errBoom{}}})
	err := s.Logout(context.Background(), "tok")
	assert.True(t, errors.Is(err, errBoom{}))
}

func TestIdentity(t *testing.T) {
	db, _ := newSQLMockDB(t)
	users := &fakeUsersRepo{byEmail: map[string]*sm.User{"a@b.c": {ID: "u1", Email: "a@b.c"}}}
	s := newUserService(t, db, &fakeRepoManager{u: users})

	id, err := s.Identity(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", id.Email)
	assert.Equal(t, "u1", id.UserID)

	_, err = s.Identity(context.Background(), "gone")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}
