// Package filerepo persists the session as a single JSON document on disk, optionally sealed
// with AES-256-GCM.
package filerepo

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	clienterrors "github.com/jrsteele09/go-session-client/internal/errors"
	"github.com/jrsteele09/go-session-client/token"
	"golang.org/x/crypto/hkdf"
)

var (
	_ token.Store       = (*FileTokenRepo)(nil)
	_ token.MultiSetter = (*FileTokenRepo)(nil)
)

// ErrSealed is returned when the file cannot be opened with the configured secret
var ErrSealed = fmt.Errorf("token file is sealed with a different secret: %w", clienterrors.ErrStoreUnavailable)

const hkdfInfo = "session-client token file v1"

// envelope is the on-disk form of a sealed file
type envelope struct {
	Version    int    `json:"v"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ct"`
}

// FileTokenRepo stores key/value pairs in one file. Writes go to a temp file that is renamed
// over the target so a crash never leaves a half-written session.
type FileTokenRepo struct {
	path   string
	secret []byte
	lock   sync.Mutex
}

// Option configures a FileTokenRepo
type Option func(*FileTokenRepo)

// WithSecret seals the file contents. An empty secret leaves the file in plain JSON.
func WithSecret(secret string) Option {
	return func(r *FileTokenRepo) {
		if secret != "" {
			r.secret = []byte(secret)
		}
	}
}

func New(path string, opts ...Option) *FileTokenRepo {
	r := &FileTokenRepo{path: path}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *FileTokenRepo) Get(_ context.Context, key string) (string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	values, err := r.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", token.ErrNotFound
	}
	return v, nil
}

func (r *FileTokenRepo) Set(ctx context.Context, key, value string) error {
	return r.SetAll(ctx, map[string]string{key: value})
}

func (r *FileTokenRepo) SetAll(_ context.Context, updates map[string]string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	values, err := r.load()
	if err != nil {
		return err
	}
	for k, v := range updates {
		values[k] = v
	}
	return r.save(values)
}

func (r *FileTokenRepo) RemoveAll(_ context.Context, keys ...string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	values, err := r.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(values, k)
	}
	if len(values) == 0 {
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove token file: %w", err)
		}
		return nil
	}
	return r.save(values)
}

func (r *FileTokenRepo) load() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	if r.secret != nil {
		if data, err = r.open(data); err != nil {
			return nil, err
		}
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return values, nil
}

func (r *FileTokenRepo) save(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode token file: %w", err)
	}
	if r.secret != nil {
		if data, err = r.seal(data); err != nil {
			return err
		}
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp token file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp token file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp token file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

func (r *FileTokenRepo) aead(salt []byte) (cipher.AEAD, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, r.secret, salt, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("derive token file key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (r *FileTokenRepo) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	gcm, err := r.aead(salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return json.Marshal(envelope{
		Version:    1,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: gcm.Seal(nil, nonce, plaintext, nil),
	})
}

func (r *FileTokenRepo) open(data []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.Version != 1 {
		return nil, ErrSealed
	}
	gcm, err := r.aead(env.Salt)
	if err != nil {
		return nil, err
	}
	if len(env.Nonce) != gcm.NonceSize() {
		return nil, ErrSealed
	}
	plaintext, err := gcm.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, ErrSealed
	}
	return plaintext, nil
}
