package emergency

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/medpass-app/medpass/internal/api/middleware/auth"
	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/crypto"
	"github.com/medpass-app/medpass/internal/entity"
	"github.com/medpass-app/medpass/internal/notify"
)

// qrPrefix marks the emergency token format inside the QR payload.
const qrPrefix = "mpemg:"

type ProfileStore interface {
	Upsert(ctx context.Context, userID string, blob []byte) error
	Get(ctx context.Context, userID string) ([]byte, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type Handler struct {
	profiles   ProfileStore
	users      UserLookup
	cipher     *crypto.Cipher
	sms        notify.SMSSender
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(profiles ProfileStore, users UserLookup, cipher *crypto.Cipher, sms notify.SMSSender, logger *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		profiles:   profiles,
		users:      users,
		cipher:     cipher,
		sms:        sms,
		log:        logger,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.dataOp(), h.data)
	huma.Register(api, h.qrOp(), h.qr)
	huma.Register(api, h.alertOp(), h.alert)
}

func (h *Handler) data(ctx context.Context, _ *struct{}) (*dataOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	blob, err := h.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &dataOutput{Body: DataResponse{OK: true, Data: nil}}, nil
		}
		return nil, huma.Error500InternalServerError("lookup failed")
	}
	var profile entity.EmergencyProfile
	if err := h.cipher.Open(blob, &profile); err != nil {
		h.log.Error("emergency.decrypt_failed", "user_id", userID, "error", err)
		return nil, huma.Error500InternalServerError("Decrypt failed")
	}
	return &dataOutput{Body: DataResponse{OK: true, Data: &profile, UpdatedAt: profile.UpdatedAt}}, nil
}

func (h *Handler) qr(ctx context.Context, input *qrInput) (*qrOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	name := input.Body.Name
	if name == "" {
		if u, err := h.users.GetByID(ctx, userID); err == nil {
			name = u.Name
			if name == "" {
				name = u.Email
			}
		}
	}

	profile := entity.EmergencyProfile{
		UserID:                userID,
		Name:                  name,
		BloodGroup:            input.Body.BloodGroup,
		Allergies:             input.Body.Allergies,
		Medications:           input.Body.Medications,
		EmergencyContactName:  input.Body.EmergencyContactName,
		EmergencyContactPhone: input.Body.EmergencyContactPhone,
		UpdatedAt:             time.Now().UTC().Format(time.RFC3339Nano),
	}

	blob, err := h.cipher.Seal(&profile)
	if err != nil {
		h.log.Error("emergency.encrypt_failed", "error", err)
		return nil, huma.Error500InternalServerError("QR generation failed")
	}
	if err := h.profiles.Upsert(ctx, userID, blob); err != nil {
		h.log.Error("emergency.store_failed", "error", err)
		return nil, huma.Error500InternalServerError("QR generation failed")
	}

	qrText := qrPrefix + hex.EncodeToString(blob)
	png, err := qrcode.Encode(qrText, qrcode.Medium, 384)
	if err != nil {
		h.log.Error("emergency.qr_encode_failed", "error", err)
		return nil, huma.Error500InternalServerError("QR generation failed")
	}

	return &qrOutput{Body: QRResponse{
		OK:      true,
		DataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		QRText:  qrText,
	}}, nil
}

func (h *Handler) alert(ctx context.Context, input *alertInput) (*alertOutput, error) {
	userID, ok := auth.GetUserID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}
	blob, err := h.profiles.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, huma.Error400BadRequest("No emergency info saved")
		}
		return nil, huma.Error500InternalServerError("Alert failed")
	}
	var profile entity.EmergencyProfile
	if err := h.cipher.Open(blob, &profile); err != nil {
		h.log.Error("emergency.decrypt_failed", "user_id", userID, "error", err)
		return nil, huma.Error500InternalServerError("Alert failed")
	}

	to := strings.TrimSpace(profile.EmergencyContactPhone)
	if to == "" {
		return nil, huma.Error400BadRequest("Missing emergency contact phone")
	}

	text := input.Body.MessageOverride
	if text == "" {
		text = fmt.Sprintf("Emergency Alert: %s may need assistance. Health: %s; Allergies: %s. Shared by MedPass.",
			orDefault(profile.Name, "MedPass User"),
			orDefault(profile.BloodGroup, "N/A"),
			orDefault(profile.Allergies, "N/A"))
	}

	delivered, err := h.sms.Send(ctx, to, text)
	if err != nil {
		h.log.Error("emergency.sms_failed", "error", err)
		return &alertOutput{Body: AlertResponse{OK: true, Delivered: false, Limited: true}}, nil
	}
	return &alertOutput{Body: AlertResponse{OK: true, Delivered: delivered, Limited: !delivered}}, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
