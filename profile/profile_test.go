package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monerokon/xmrpos-login/authclient"
	"github.com/monerokon/xmrpos-login/login"
	"github.com/monerokon/xmrpos-login/loginform"
	"github.com/monerokon/xmrpos-login/urlutil"
)

func TestStore_SaveLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "xmrpos", FileName))

	saved := Profile{
		InstanceURL: urlutil.MustNormalize("pos.example.com"),
		VendorID:    42,
		Username:    "alice",
		SavedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.Save(saved))

	got, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "https://pos.example.com", got.InstanceURL.String())
	assert.Equal(t, 42, got.VendorID)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, saved.SavedAt.Equal(got.SavedAt))
}

func TestStore_NeverWritesSecrets(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), FileName))

	st := login.State{
		Phase: login.PhaseSucceeded,
		Session: &authclient.Session{
			InstanceURL:  urlutil.MustNormalize("https://pos.example.com"),
			VendorID:     1,
			Username:     "bob",
			AccessToken:  "access-secret",
			RefreshToken: "refresh-secret",
		},
	}
	p, ok := FromState(st)
	require.True(t, ok)
	require.NoError(t, store.Save(p))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), `"version": "1"`)
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), FileName))
	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_LoadVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `{"_profile":{"version":"0"},"data":{"instanceUrl":"https://a.example","vendorId":1,"username":"x"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, found, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, _, err := NewStore(path).Load()
	assert.Error(t, err)
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, store.Save(Profile{Username: "alice"}))
	require.NoError(t, store.Clear())

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)
	require.NoError(t, store.Clear())
}

func TestFromState(t *testing.T) {
	tests := []struct {
		name string
		st   login.State
		ok   bool
	}{
		{"idle", login.State{Phase: login.PhaseIdle}, false},
		{"failed", login.State{Phase: login.PhaseFailed, Err: &login.Error{Message: "x"}}, false},
		{"succeeded without session", login.State{Phase: login.PhaseSucceeded}, false},
		{"succeeded", login.State{Phase: login.PhaseSucceeded, Session: &authclient.Session{Username: "a"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := FromState(tt.st)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, "a", p.Username)
				assert.False(t, p.SavedAt.IsZero())
			}
		})
	}
}

func TestProfile_Prefill(t *testing.T) {
	p := Profile{
		InstanceURL: urlutil.MustNormalize("https://pos.example.com"),
		VendorID:    7,
		Username:    "alice",
	}

	t.Run("empty form", func(t *testing.T) {
		form := loginform.Form{}
		p.Prefill(&form)
		assert.Equal(t, loginform.Form{
			InstanceURL: "https://pos.example.com",
			VendorID:    "7",
			Username:    "alice",
		}, form)
	})

	t.Run("caller values win", func(t *testing.T) {
		form := loginform.Form{InstanceURL: "other.example", Username: "bob", Password: "pw"}
		p.Prefill(&form)
		assert.Equal(t, "other.example", form.InstanceURL)
		assert.Equal(t, "7", form.VendorID)
		assert.Equal(t, "bob", form.Username)
		assert.Equal(t, "pw", form.Password)
	})

	t.Run("caller vendor wins", func(t *testing.T) {
		form := loginform.Form{VendorID: "9"}
		p.Prefill(&form)
		assert.Equal(t, "9", form.VendorID)
	})
}

func TestProfile_PrefillVendorZero(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, store.Save(Profile{
		InstanceURL: urlutil.MustNormalize("pos.example.com"),
		VendorID:    0,
		Username:    "alice",
	}))

	saved, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)

	form := loginform.Form{}
	saved.Prefill(&form)
	assert.Equal(t, "https://pos.example.com", form.InstanceURL)
	assert.Equal(t, "0", form.VendorID)
	assert.Equal(t, "alice", form.Username)
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)

	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, AppDir), dir)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)
}
