// Package secrets is a per-user token store (file, 0600) with AES-GCM
// obfuscation. Not a replacement for OS keychains but avoids plain-text config.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	fileName = "tokens.json"

	// GitHub is the provider key for the repository host token.
	GitHub = "github"
)

var (
	ErrProviderRequired = errors.New("provider required")
	ErrTokenNotFound    = errors.New("token not found")
)

type secretFile struct {
	Tokens map[string]string `json:"tokens"` // provider -> base64(ciphertext)
}

// Store reads and writes tokens under Dir.
type Store struct {
	Dir string
}

// NewStore returns a store in the user config dir.
func NewStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &Store{Dir: filepath.Join(dir, "frontfrend")}, nil
}

func (s *Store) StoreToken(provider, token string) error {
	if provider = norm(provider); provider == "" {
		return ErrProviderRequired
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return s.DeleteToken(provider)
	}
	path, err := s.filePath()
	if err != nil {
		return err
	}
	sf, _ := load(path)
	if sf.Tokens == nil {
		sf.Tokens = map[string]string{}
	}
	ct, err := encrypt([]byte(token))
	if err != nil {
		return err
	}
	sf.Tokens[provider] = base64.StdEncoding.EncodeToString(ct)
	return save(path, sf)
}

func (s *Store) FetchToken(provider string) (string, error) {
	if provider = norm(provider); provider == "" {
		return "", ErrProviderRequired
	}
	path, err := s.filePath()
	if err != nil {
		return "", err
	}
	sf, err := load(path)
	if err != nil {
		return "", err
	}
	enc, ok := sf.Tokens[provider]
	if !ok {
		return "", ErrTokenNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", err
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("decrypt %s token: %w", provider, err)
	}
	return string(pt), nil
}

func (s *Store) DeleteToken(provider string) error {
	if provider = norm(provider); provider == "" {
		return ErrProviderRequired
	}
	path, err := s.filePath()
	if err != nil {
		return err
	}
	sf, err := load(path)
	if err != nil {
		return err
	}
	if _, ok := sf.Tokens[provider]; !ok {
		return nil
	}
	delete(sf.Tokens, provider)
	return save(path, sf)
}

func (s *Store) filePath() (string, error) {
	if s.Dir == "" {
		return "", errors.New("secrets: no directory")
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil { // restrict directory
		return "", err
	}
	return filepath.Join(s.Dir, fileName), nil
}

func load(path string) (secretFile, error) {
	var sf secretFile
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return secretFile{}, nil
	}
	if err != nil {
		return sf, err
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, err
	}
	return sf, nil
}

func save(path string, sf secretFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// aead derives a per-user key; it obfuscates rather than protects.
func aead() (cipher.AEAD, error) {
	base := fmt.Sprintf("frontfrend-%s-%s", runtime.GOOS, os.Getenv("USER"))
	key := sha256.Sum256([]byte(base))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize(), gcm.NonceSize()+len(plain)+gcm.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(sealed []byte) ([]byte, error) {
	gcm, err := aead()
	if err != nil {
		return nil, err
	}
	n := gcm.NonceSize()
	if len(sealed) < n {
		return nil, errors.New("ciphertext too short")
	}
	return gcm.Open(nil, sealed[:n], sealed[n:], nil)
}

// Resolve prefers the env variable, then the stored token. Missing is "".
func (s *Store) Resolve(provider, env string) string {
	if env = strings.TrimSpace(env); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	if s == nil {
		return ""
	}
	tok, err := s.FetchToken(provider)
	if err != nil {
		return ""
	}
	return tok
}
