package auth

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/allblack/restaurant-app/models"
)

// Identity is the part of an account that may be cached on the device.
type Identity struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Phone      string `json:"phone"`
	IsAdmin    bool   `json:"is_admin"`
	IsEmployee bool   `json:"is_employee"`
	Slug       string `json:"slug"`
}

func IdentityFromAccount(a models.Account) Identity {
	return Identity{
		ID:         a.ID,
		Username:   a.Username,
		Phone:      a.Phone,
		IsAdmin:    a.IsAdmin,
		IsEmployee: a.IsEmployee,
		Slug:       a.Slug,
	}
}

func (i Identity) IsStaff() bool {
	return i.IsAdmin || i.IsEmployee
}

func (i Identity) Role() string {
	switch {
	case i.IsAdmin:
		return models.RoleAdmin
	case i.IsEmployee:
		return models.RoleEmployee
	default:
		return models.RoleCustomer
	}
}

// persisted blanks the fields that must not be written to the device.
func (i Identity) persisted() Identity {
	i.Phone = ""
	return i
}

// IdentityStore is the device-local slot holding the current identity.
// Load returns nil, nil when nothing is stored.
type IdentityStore interface {
	Load() (*Identity, error)
	Save(Identity) error
	Clear() error
}

// FileIdentityStore keeps the identity as one JSON file.
type FileIdentityStore struct {
	Path string
}

func NewFileIdentityStore(path string) *FileIdentityStore {
	return &FileIdentityStore{Path: path}
}

func (s *FileIdentityStore) Load() (*Identity, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// Fields missing from the record decode as empty / false.
	var identity Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Save writes to a temporary file and renames it over the old record.
func (s *FileIdentityStore) Save(identity Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), filepath.Base(s.Path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

func (s *FileIdentityStore) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
