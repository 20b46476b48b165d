package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medpass-app/medpass/internal/api/middleware/auth"
	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/entity"
)

// UserStore is the account persistence surface the auth handler needs.
type UserStore interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type Handler struct {
	users     UserStore
	sessions  *auth.Sessions
	log       *slog.Logger
	public    huma.Middlewares
	protected huma.Middlewares
}

func NewHandler(users UserStore, sessions *auth.Sessions, logger *slog.Logger, public, protected huma.Middlewares) *Handler {
	return &Handler{
		users:     users,
		sessions:  sessions,
		log:       logger,
		public:    public,
		protected: protected,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.signupOp(), h.signup)
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.logoutOp(), h.logout)
	huma.Register(api, h.meOp(), h.me)
}

func (h *Handler) signup(ctx context.Context, input *signupInput) (*signupOutput, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, huma.Error500InternalServerError("signup failed")
	}

	u := &entity.User{
		ID:           uuid.NewString(),
		Name:         input.Body.Name,
		Email:        input.Body.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.users.Create(ctx, u); err != nil {
		if errors.Is(err, common.ErrDuplicate) {
			return nil, huma.Error409Conflict("Email already registered")
		}
		h.log.Error("auth.signup_failed", "error", err)
		return nil, huma.Error500InternalServerError("signup failed")
	}

	token, err := h.sessions.Create(ctx, u.ID)
	if err != nil {
		h.log.Error("auth.session_create_failed", "error", err)
		return nil, huma.Error500InternalServerError("signup failed")
	}

	h.log.Info("auth.signup", "user_id", u.ID)
	return &signupOutput{
		SetCookie: sessionCookie(token, auth.SessionTTL),
		Body: SessionResponse{
			OK: true,
			User: UserResponse{
				ID:        u.ID,
				Email:     u.Email,
				Name:      u.Name,
				CreatedAt: u.CreatedAt.Format(time.RFC3339Nano),
			},
		},
	}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	u, err := h.users.GetByEmail(ctx, input.Body.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, huma.Error401Unauthorized("Invalid credentials")
		}
		h.log.Error("auth.login_failed", "error", err)
		return nil, huma.Error500InternalServerError("login failed")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Body.Password)) != nil {
		return nil, huma.Error401Unauthorized("Invalid credentials")
	}

	token, err := h.sessions.Create(ctx, u.ID)
	if err != nil {
		h.log.Error("auth.session_create_failed", "error", err)
		return nil, huma.Error500InternalServerError("login failed")
	}

	h.log.Info("auth.login", "user_id", u.ID)
	return &loginOutput{
		SetCookie: sessionCookie(token, auth.SessionTTL),
		Body: SessionResponse{
			OK:   true,
			User: UserResponse{ID: u.ID, Email: u.Email, Name: u.Name},
		},
	}, nil
}

func (h *Handler) logout(ctx context.Context, input *logoutInput) (*logoutOutput, error) {
	token := auth.TokenFromHeaders(input.Cookie, input.Authorization)
	if err := h.sessions.Destroy(ctx, token); err != nil {
		h.log.Warn("auth.logout_destroy_failed", "error", err)
	}
	out := &logoutOutput{SetCookie: sessionCookie("", -time.Hour)}
	out.Body.OK = true
	return out, nil
}

func (h *Handler) me(ctx context.Context, _ *struct{}) (*meOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	u, err := h.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, huma.Error401Unauthorized("Unauthorized")
		}
		return nil, huma.Error500InternalServerError("lookup failed")
	}
	return &meOutput{
		Body: SessionResponse{
			OK:   true,
			User: UserResponse{ID: u.ID, Email: u.Email, Name: u.Name},
		},
	}, nil
}

func sessionCookie(token string, maxAge time.Duration) string {
	c := http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	}
	return c.String()
}
