package auth

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Keystore maps static API keys to roles. Keys live in a JSON file
// ({"key": "role", ...}) so they can be rotated without a restart; lookups
// go through a small expirable cache so the file is re-read at most once
// per TTL.
type Keystore struct {
	path   string
	static map[string]Role
	cache  *expirable.LRU[string, map[string]Role]
}

const keyCacheSlot = "keys"

var defaultKeys = map[string]Role{
	"demo-view":  RoleViewer,
	"demo-edit":  RoleEditor,
	"demo-admin": RoleAdmin,
}

func NewKeystore(path string, ttl time.Duration) *Keystore {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Keystore{
		path:   path,
		static: map[string]Role{},
		cache:  expirable.NewLRU[string, map[string]Role](1, nil, ttl),
	}
}

// SetStatic registers a key that wins over the key file. Used for the
// WEB_API_KEY style deploy-time key; call before serving requests.
func (k *Keystore) SetStatic(apiKey string, role Role) {
	if apiKey == "" {
		return
	}
	k.static[apiKey] = role
	k.cache.Purge()
}

// Lookup resolves an API key to its role. Unknown keys return RoleNone.
func (k *Keystore) Lookup(ctx context.Context, apiKey string) Role {
	if apiKey == "" {
		return RoleNone
	}
	if role, ok := k.static[apiKey]; ok {
		return role
	}
	keys, ok := k.cache.Get(keyCacheSlot)
	if !ok {
		keys = k.load(ctx)
		k.cache.Add(keyCacheSlot, keys)
	}
	return keys[apiKey]
}

func (k *Keystore) load(ctx context.Context) map[string]Role {
	if k.path == "" {
		return defaultKeys
	}
	raw, err := os.ReadFile(k.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logutil.GetLogger(ctx).Warn("read api key file failed", zap.String("path", k.path), zap.Error(err))
		}
		return defaultKeys
	}
	var parsed map[string]string
	if err := json.Unmarshal(raw, &parsed); err != nil {
		logutil.GetLogger(ctx).Warn("parse api key file failed", zap.String("path", k.path), zap.Error(err))
		return defaultKeys
	}
	keys := make(map[string]Role, len(parsed))
	for key, role := range parsed {
		keys[key] = ParseRole(role)
	}
	return keys
}
