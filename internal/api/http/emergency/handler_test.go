package emergency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medpass-app/medpass/internal/api/middleware/auth"
	"github.com/medpass-app/medpass/internal/common"
	"github.com/medpass-app/medpass/internal/crypto"
	"github.com/medpass-app/medpass/internal/entity"
	"github.com/medpass-app/medpass/internal/notify"
)

type memProfiles struct {
	blobs map[string][]byte
}

func (m *memProfiles) Upsert(_ context.Context, userID string, blob []byte) error {
	m.blobs[userID] = blob
	return nil
}

func (m *memProfiles) Get(_ context.Context, userID string) ([]byte, error) {
	blob, ok := m.blobs[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return blob, nil
}

type memUsers struct{}

func (memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	return &entity.User{ID: id, Name: "Asha", Email: "asha@example.com"}, nil
}

type recordingSender struct {
	to, body  string
	delivered bool
	err       error
}

func (r *recordingSender) Send(_ context.Context, to, body string) (bool, error) {
	r.to, r.body = to, body
	return r.delivered, r.err
}

func newTestHandler(t *testing.T, sms notify.SMSSender) (*Handler, *memProfiles, *crypto.Cipher) {
	t.Helper()
	key := sha256.Sum256([]byte("emergency test key"))
	cipher, err := crypto.NewCipher(key[:])
	require.NoError(t, err)
	profiles := &memProfiles{blobs: map[string][]byte{}}
	if sms == nil {
		sms = notify.NewDevSender(slog.Default())
	}
	return NewHandler(profiles, memUsers{}, cipher, sms, slog.Default(), nil), profiles, cipher
}

func authedCtx(userID string) context.Context {
	return auth.WithUserID(context.Background(), userID)
}

func TestQRThenData(t *testing.T) {
	h, profiles, cipher := newTestHandler(t, nil)

	in := &qrInput{}
	in.Body.BloodGroup = "O+"
	in.Body.Allergies = "penicillin"
	in.Body.EmergencyContactPhone = "+1999"
	out, err := h.qr(authedCtx("u1"), in)
	require.NoError(t, err)
	assert.True(t, out.Body.OK)
	assert.True(t, strings.HasPrefix(out.Body.DataURL, "data:image/png;base64,"))
	require.True(t, strings.HasPrefix(out.Body.QRText, qrPrefix))

	// The QR token is the hex of the stored encrypted blob.
	blob, err := hex.DecodeString(strings.TrimPrefix(out.Body.QRText, qrPrefix))
	require.NoError(t, err)
	assert.Equal(t, profiles.blobs["u1"], blob)

	var profile entity.EmergencyProfile
	require.NoError(t, cipher.Open(blob, &profile))
	assert.Equal(t, "O+", profile.BloodGroup)
	assert.Equal(t, "Asha", profile.Name, "falls back to the account name")

	data, err := h.data(authedCtx("u1"), nil)
	require.NoError(t, err)
	require.NotNil(t, data.Body.Data)
	assert.Equal(t, "penicillin", data.Body.Data.Allergies)
	assert.NotEmpty(t, data.Body.UpdatedAt)
}

func TestData_NoneStored(t *testing.T) {
	h, _, _ := newTestHandler(t, nil)
	out, err := h.data(authedCtx("u1"), nil)
	require.NoError(t, err)
	assert.True(t, out.Body.OK)
	assert.Nil(t, out.Body.Data)
}

func TestAlert(t *testing.T) {
	sender := &recordingSender{delivered: true}
	h, _, _ := newTestHandler(t, sender)

	in := &qrInput{}
	in.Body.Name = "Asha"
	in.Body.BloodGroup = "O+"
	in.Body.EmergencyContactPhone = " +1999 "
	_, err := h.qr(authedCtx("u1"), in)
	require.NoError(t, err)

	out, err := h.alert(authedCtx("u1"), &alertInput{})
	require.NoError(t, err)
	assert.True(t, out.Body.Delivered)
	assert.False(t, out.Body.Limited)
	assert.Equal(t, "+1999", sender.to)
	assert.Contains(t, sender.body, "Emergency Alert: Asha")
	assert.Contains(t, sender.body, "Health: O+")
	assert.Contains(t, sender.body, "Allergies: N/A")
}

func TestAlert_MessageOverride(t *testing.T) {
	sender := &recordingSender{delivered: true}
	h, _, _ := newTestHandler(t, sender)

	in := &qrInput{}
	in.Body.EmergencyContactPhone = "+1999"
	_, err := h.qr(authedCtx("u1"), in)
	require.NoError(t, err)

	alertIn := &alertInput{}
	alertIn.Body.MessageOverride = "custom text"
	_, err = h.alert(authedCtx("u1"), alertIn)
	require.NoError(t, err)
	assert.Equal(t, "custom text", sender.body)
}

func TestAlert_NoProfile(t *testing.T) {
	h, _, _ := newTestHandler(t, nil)
	_, err := h.alert(authedCtx("u1"), &alertInput{})
	assert.ErrorContains(t, err, "No emergency info saved")
}

func TestAlert_MissingPhone(t *testing.T) {
	h, _, _ := newTestHandler(t, nil)
	_, err := h.qr(authedCtx("u1"), &qrInput{})
	require.NoError(t, err)

	_, err = h.alert(authedCtx("u1"), &alertInput{})
	assert.ErrorContains(t, err, "Missing emergency contact phone")
}

func TestAlert_DevSenderIsLimited(t *testing.T) {
	h, _, _ := newTestHandler(t, nil)
	in := &qrInput{}
	in.Body.EmergencyContactPhone = "+1999"
	_, err := h.qr(authedCtx("u1"), in)
	require.NoError(t, err)

	out, err := h.alert(authedCtx("u1"), &alertInput{})
	require.NoError(t, err)
	assert.False(t, out.Body.Delivered)
	assert.True(t, out.Body.Limited)
}
