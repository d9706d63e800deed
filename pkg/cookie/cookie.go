// Package cookie sets plain, signed and sealed cookies with shared defaults.
//
// Signed values are readable by the client but tamper-evident (HMAC-SHA256).
// Sealed values are encrypted with AES-GCM and carry flash messages. Both
// keys are derived from one secret with HKDF, so a signed value can never
// be replayed as a sealed one.
package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"golang.org/x/crypto/hkdf"
)

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrNoSecret  = errors.New("cookie: secret required")
	ErrBadSig    = errors.New("cookie: invalid signature")
	ErrDecrypt   = errors.New("cookie: decryption failed")
	ErrBadSecret = errors.New("cookie: secret must be at least 32 bytes")
)

// MinSecretLen is the shortest secret WithSecret accepts.
const MinSecretLen = 32

const flashPrefix = "flash_"

// Manager reads and writes cookies.
type Manager struct {
	signKey  []byte
	aead     cipher.AEAD
	path     string
	domain   string
	sameSite http.SameSite
	secure   bool
	httpOnly bool
}

type Option func(*Manager)

// New returns a manager with Path "/", HttpOnly and SameSite=Lax.
func New(opts ...Option) *Manager {
	m := &Manager{path: "/", httpOnly: true, sameSite: http.SameSiteLaxMode}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret enables signed and sealed cookies. Secrets shorter than
// MinSecretLen are ignored; check them with ValidateSecret first.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if ValidateSecret(secret) != nil {
			return
		}
		m.signKey = derive(secret, "mwm cookie signing")
		block, err := aes.NewCipher(derive(secret, "mwm cookie sealing"))
		if err != nil {
			return
		}
		if m.aead, err = cipher.NewGCM(block); err != nil {
			m.signKey = nil
		}
	}
}

func WithSecure(secure bool) Option { return func(m *Manager) { m.secure = secure } }

func WithDomain(domain string) Option { return func(m *Manager) { m.domain = domain } }

func WithPath(path string) Option { return func(m *Manager) { m.path = path } }

func WithSameSite(s http.SameSite) Option { return func(m *Manager) { m.sameSite = s } }

// ValidateSecret reports ErrBadSecret for secrets that are too short.
func ValidateSecret(secret string) error {
	if len(secret) < MinSecretLen {
		return ErrBadSecret
	}
	return nil
}

func derive(secret, info string) []byte {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		panic(err)
	}
	return key
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Set writes a plain cookie. maxAge 0 makes it a session cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

// SetSigned writes base64(value).base64(hmac).
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge int) error {
	if m.signKey == nil {
		return ErrNoSecret
	}
	enc := base64.RawURLEncoding
	m.Set(w, name, enc.EncodeToString([]byte(value))+"."+enc.EncodeToString(m.sign(name, value)), maxAge)
	return nil
}

// GetSigned verifies and returns a value written by SetSigned.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if m.signKey == nil {
		return "", ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	v, s, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || !hmac.Equal(sig, m.sign(name, string(value))) {
		return "", ErrBadSig
	}
	return string(value), nil
}

// sign binds the MAC to the cookie name so values cannot be moved between
// cookies.
func (m *Manager) sign(name, value string) []byte {
	mac := hmac.New(sha256.New, m.signKey)
	mac.Write([]byte(name))
	mac.Write([]byte{0})
	mac.Write([]byte(value))
	return mac.Sum(nil)
}

// SetSealed writes an encrypted value.
func (m *Manager) SetSealed(w http.ResponseWriter, name string, value []byte, maxAge int) error {
	if m.aead == nil {
		return ErrNoSecret
	}
	nonce := make([]byte, m.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := m.aead.Seal(nonce, nonce, value, []byte(name))
	m.Set(w, name, base64.RawURLEncoding.EncodeToString(sealed), maxAge)
	return nil
}

// GetSealed decrypts a value written by SetSealed.
func (m *Manager) GetSealed(r *http.Request, name string) ([]byte, error) {
	if m.aead == nil {
		return nil, ErrNoSecret
	}
	raw, err := m.Get(r, name)
	if err != nil {
		return nil, err
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil || len(data) < m.aead.NonceSize() {
		return nil, ErrDecrypt
	}
	n := m.aead.NonceSize()
	plain, err := m.aead.Open(nil, data[:n], data[n:], []byte(name))
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

// SetFlash stores value as JSON in a sealed session cookie.
func (m *Manager) SetFlash(w http.ResponseWriter, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return m.SetSealed(w, flashPrefix+key, data, 0)
}

// Flash decodes the flash under key into dest and deletes it. The cookie is
// deleted even when it fails to decrypt.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, key string, dest any) error {
	name := flashPrefix + key
	data, err := m.GetSealed(r, name)
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoSecret) {
		return err
	}
	m.Delete(w, name)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}
