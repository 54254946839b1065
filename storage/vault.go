package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/electr1fy0/storyshelf/crypto"
	"github.com/electr1fy0/storyshelf/story"
	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

var ErrLocked = errors.New("library is encrypted; a passphrase is required")

// vaultFile is what lands on disk: either a plain library or an
// encrypted envelope around its JSON, never both.
type vaultFile struct {
	Library   *Library         `json:"library,omitempty"`
	Encrypted *crypto.Envelope `json:"encrypted,omitempty"`
}

type Vault struct {
	Path string
}

func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "storyshelf", "library.json"), nil
}

func (v Vault) Exists() (bool, error) {
	_, err := os.Stat(v.Path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Locked reports whether the library on disk is encrypted.
func (v Vault) Locked() (bool, error) {
	vf, err := v.read()
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return vf.Encrypted != nil, nil
}

func (v Vault) read() (vaultFile, error) {
	var vf vaultFile
	data, err := os.ReadFile(v.Path)
	if err != nil {
		return vf, err
	}
	if err := json.Unmarshal(data, &vf); err != nil {
		return vf, fmt.Errorf("parse %s: %w", v.Path, err)
	}
	return vf, nil
}

// Load reads the library. A missing file yields a fresh library.
func (v Vault) Load(passphrase string) (*Library, error) {
	vf, err := v.read()
	if err != nil {
		if os.IsNotExist(err) {
			return NewLibrary(), nil
		}
		return nil, err
	}

	lib := vf.Library
	if vf.Encrypted != nil {
		if passphrase == "" {
			return nil, ErrLocked
		}
		plain, err := crypto.Open(*vf.Encrypted, passphrase)
		if err != nil {
			return nil, err
		}
		lib = &Library{}
		if err := json.Unmarshal(plain, lib); err != nil {
			return nil, fmt.Errorf("decode library: %w", err)
		}
	}
	if lib == nil {
		lib = NewLibrary()
	}
	if lib.Entries == nil {
		lib.Entries = make(map[uuid.UUID]story.Story)
	}
	return lib, nil
}

// Save writes lib atomically, encrypted when passphrase is non-empty.
func (v Vault) Save(lib *Library, passphrase string) error {
	var vf vaultFile
	if passphrase == "" {
		vf.Library = lib
	} else {
		plain, err := json.Marshal(lib)
		if err != nil {
			return err
		}
		env, err := crypto.Seal(plain, passphrase)
		if err != nil {
			return fmt.Errorf("encrypt library: %w", err)
		}
		vf.Encrypted = env
	}

	data, err := json.MarshalIndent(vf, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(v.Path), 0o700); err != nil {
		return fmt.Errorf("create library dir: %w", err)
	}
	return atomic.WriteFile(v.Path, bytes.NewReader(data))
}
