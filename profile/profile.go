package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/monerokon/xmrpos-login/fileutil"
	"github.com/monerokon/xmrpos-login/loginform"
	"github.com/monerokon/xmrpos-login/login"
	"github.com/monerokon/xmrpos-login/urlutil"
)

// FormatVersion tags the on-disk envelope.
const FormatVersion = "1"

// FileName is the default profile file name inside the config directory.
const FileName = "profile.json"

// Profile is the remembered login identity.
type Profile struct {
	InstanceURL urlutil.NormalizedURL `json:"instanceUrl"`
	VendorID    int                   `json:"vendorId"`
	Username    string                `json:"username"`
	SavedAt     time.Time             `json:"savedAt"`
}

// Prefill copies a loaded profile into the empty fields of form. Fields the
// caller already set are left alone; Password is never touched. Vendor 0 is
// a valid saved ID and is copied like any other.
func (p Profile) Prefill(form *loginform.Form) {
	if form.InstanceURL == "" && !p.InstanceURL.IsZero() {
		form.InstanceURL = p.InstanceURL.String()
	}
	if form.VendorID == "" {
		form.VendorID = strconv.Itoa(p.VendorID)
	}
	if form.Username == "" {
		form.Username = p.Username
	}
}

// FromState builds a profile from a Succeeded state. It reports false for any
// other state or when the state carries no session.
func FromState(st login.State) (Profile, bool) {
	if !st.Succeeded() || st.Session == nil {
		return Profile{}, false
	}
	return Profile{
		InstanceURL: st.Session.InstanceURL,
		VendorID:    st.Session.VendorID,
		Username:    st.Session.Username,
		SavedAt:     time.Now().UTC(),
	}, true
}

type metadata struct {
	Version string    `json:"version"`
	SavedAt time.Time `json:"savedAt"`
}

type envelope struct {
	Metadata metadata        `json:"_profile"`
	Data     json.RawMessage `json:"data"`
}

// Store reads and writes one profile file. It is safe for concurrent use.
type Store struct {
	path string
	mu   sync.RWMutex
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// AppDir is the directory name used under the user config directory.
const AppDir = "xmrpos"

// ConfigDir returns $XDG_CONFIG_HOME/xmrpos, or the platform user config
// directory equivalent. Every file the CLI persists lives here.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, AppDir), nil
}

// DefaultPath returns profile.json inside ConfigDir.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored profile. It reports false when no usable profile
// exists, including one written with a different FormatVersion.
func (s *Store) Load() (Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var env envelope
	found, err := fileutil.ReadJSON(s.path, &env)
	if err != nil {
		return Profile{}, false, fmt.Errorf("failed to load profile: %w", err)
	}
	if !found || env.Metadata.Version != FormatVersion {
		return Profile{}, false, nil
	}

	var p Profile
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return Profile{}, false, fmt.Errorf("failed to decode profile: %w", err)
	}
	return p, true, nil
}

// Save writes p atomically, replacing any previous profile.
func (s *Store) Save(p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.SavedAt.IsZero() {
		p.SavedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	env := envelope{
		Metadata: metadata{Version: FormatVersion, SavedAt: p.SavedAt},
		Data:     raw,
	}
	if err := fileutil.AtomicWriteJSON(s.path, env); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Clear removes the stored profile.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fileutil.RemoveIfExists(s.path)
}
