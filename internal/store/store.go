package store

import (
	"os"
	"path/filepath"
)

const (
	storageFileName  = "storage.sqlite"
	tuiStateFileName = "tui_state.json"
)

// Store is the client's local state directory.
type Store struct {
	Dir string
}

// Open resolves the config directory (see ConfigDir) unless dir is set.
func Open(dir string) (Store, error) {
	if dir == "" {
		d, err := ConfigDir()
		if err != nil {
			return Store{}, err
		}
		dir = d
	}
	return Store{Dir: dir}, nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o700)
}

func (s Store) storagePath() string {
	return filepath.Join(s.Dir, storageFileName)
}

// LocalStorage returns the durable key/value storage for the given origin.
func (s Store) LocalStorage(origin string) LocalStorage {
	return LocalStorage{path: s.storagePath(), ensure: s.Ensure, Origin: origin}
}

// Credentials returns the credential store for the service at serviceURL.
func (s Store) Credentials(serviceURL string) (*Credentials, error) {
	origin, err := OriginOf(serviceURL)
	if err != nil {
		return nil, err
	}
	return &Credentials{Storage: s.LocalStorage(origin)}, nil
}
