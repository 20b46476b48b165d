package authapi

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medpass-app/medpass/internal/api/middleware/auth"
	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/entity"
)

type memUsers struct {
	byEmail map[string]*entity.User
}

func newMemUsers() *memUsers { return &memUsers{byEmail: map[string]*entity.User{}} }

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return common.ErrDuplicate
	}
	cp := *u
	m.byEmail[u.Email] = &cp
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

type memSessionStore struct {
	rows map[string]string
}

func (m *memSessionStore) Create(_ context.Context, tokenHash, userID string, _ time.Time) error {
	m.rows[tokenHash] = userID
	return nil
}

func (m *memSessionStore) Lookup(_ context.Context, tokenHash string) (string, error) {
	userID, ok := m.rows[tokenHash]
	if !ok {
		return "", common.ErrUnauthorized
	}
	return userID, nil
}

func (m *memSessionStore) Delete(_ context.Context, tokenHash string) error {
	delete(m.rows, tokenHash)
	return nil
}

func newTestHandler() (*Handler, *memUsers, *memSessionStore) {
	users := newMemUsers()
	store := &memSessionStore{rows: map[string]string{}}
	sessions := auth.NewSessions(store, slog.Default())
	return NewHandler(users, sessions, slog.Default(), nil, nil), users, store
}

func signupInputFor(name, email, password string) *signupInput {
	in := &signupInput{}
	in.Body.Name = name
	in.Body.Email = email
	in.Body.Password = password
	return in
}

func TestSignup(t *testing.T) {
	h, users, store := newTestHandler()

	out, err := h.signup(context.Background(), signupInputFor("Priya", "p@example.com", "secret1"))
	require.NoError(t, err)
	assert.True(t, out.Body.OK)
	assert.Equal(t, "Priya", out.Body.User.Name)
	assert.NotEmpty(t, out.Body.User.ID)
	assert.Contains(t, out.SetCookie, auth.CookieName+"=")
	assert.Contains(t, out.SetCookie, "HttpOnly")
	assert.Len(t, store.rows, 1)

	// Password is stored hashed.
	stored := users.byEmail["p@example.com"]
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
}

func TestSignup_DuplicateEmail(t *testing.T) {
	h, _, _ := newTestHandler()
	_, err := h.signup(context.Background(), signupInputFor("A", "dup@example.com", "secret1"))
	require.NoError(t, err)

	_, err = h.signup(context.Background(), signupInputFor("B", "dup@example.com", "secret2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email already registered")
}

func TestLogin(t *testing.T) {
	h, _, _ := newTestHandler()
	_, err := h.signup(context.Background(), signupInputFor("Priya", "p@example.com", "secret1"))
	require.NoError(t, err)

	in := &loginInput{}
	in.Body.Email = "p@example.com"
	in.Body.Password = "secret1"
	out, err := h.login(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, out.Body.OK)
	assert.Equal(t, "p@example.com", out.Body.User.Email)
	assert.Contains(t, out.SetCookie, auth.CookieName+"=")
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h, _, _ := newTestHandler()
	_, err := h.signup(context.Background(), signupInputFor("Priya", "p@example.com", "secret1"))
	require.NoError(t, err)

	in := &loginInput{}
	in.Body.Email = "p@example.com"
	in.Body.Password = "wrong"
	_, err = h.login(context.Background(), in)
	assert.ErrorContains(t, err, "Invalid credentials")

	in.Body.Email = "missing@example.com"
	in.Body.Password = "secret1"
	_, err = h.login(context.Background(), in)
	assert.ErrorContains(t, err, "Invalid credentials")
}

func TestLogout_DestroysSession(t *testing.T) {
	h, _, store := newTestHandler()
	out, err := h.signup(context.Background(), signupInputFor("P", "p@example.com", "secret1"))
	require.NoError(t, err)
	require.Len(t, store.rows, 1)

	// Pull the raw token out of the issued cookie.
	token := strings.TrimPrefix(strings.Split(out.SetCookie, ";")[0], auth.CookieName+"=")
	logoutOut, err := h.logout(context.Background(), &logoutInput{Cookie: auth.CookieName + "=" + token})
	require.NoError(t, err)
	assert.True(t, logoutOut.Body.OK)
	assert.Empty(t, store.rows)
	assert.Contains(t, logoutOut.SetCookie, "Max-Age=0")
}

func TestMe(t *testing.T) {
	h, _, _ := newTestHandler()
	out, err := h.signup(context.Background(), signupInputFor("P", "p@example.com", "secret1"))
	require.NoError(t, err)

	ctx := auth.WithUserID(context.Background(), out.Body.User.ID)
	me, err := h.me(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "p@example.com", me.Body.User.Email)

	_, err = h.me(context.Background(), nil)
	assert.ErrorContains(t, err, "Unauthorized")

	_, err = h.me(auth.WithUserID(context.Background(), "ghost"), nil)
	assert.ErrorContains(t, err, "Unauthorized")
}
