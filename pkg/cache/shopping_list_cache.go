package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const shoppingListKeyPrefix = "shopping_list"

// CachedShoppingLine is one merged shopping-list line as served to clients.
type CachedShoppingLine struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity float64   `json:"quantity"`
	Unit     string    `json:"unit"`
	Obtained bool      `json:"obtained"`
}

// cachedShoppingList is the stored value: the merged lines tagged with the
// user version they were built from.
type cachedShoppingList struct {
	Version int64                `json:"version"`
	Lines   []CachedShoppingLine `json:"lines"`
}

// setIfNewer stores ARGV[2] unless the key already holds a list built from
// the same or a later user version. ARGV[3] is the TTL in milliseconds.
var setIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local ok, doc = pcall(cjson.decode, cur)
  if ok and type(doc) == 'table' and tonumber(doc.version) and tonumber(doc.version) >= tonumber(ARGV[1]) then
    return 0
  end
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// ShoppingListCache stores each user's merged shopping list with the user
// version it reflects. Key format: "shopping_list:{userID}".
//
// Set never replaces a list with one built from an older version, so a slow
// reader filling the cache cannot undo a concurrent toggle or recompute.
// Writers call Set with the version they committed.
type ShoppingListCache struct {
	client *RedisClient
	ttl    time.Duration
}

// NewShoppingListCache creates a ShoppingListCache whose entries expire after ttl.
func NewShoppingListCache(r *RedisClient, ttl time.Duration) *ShoppingListCache {
	return &ShoppingListCache{client: r, ttl: ttl}
}

// Get returns the cached list. The bool is false on a cache miss.
func (c *ShoppingListCache) Get(ctx context.Context, userID uuid.UUID) ([]CachedShoppingLine, bool, error) {
	raw, err := c.client.Client().Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get shopping list: %w", err)
	}

	entry, err := decodeShoppingList(raw)
	if err != nil {
		return nil, false, err
	}
	return entry.Lines, true, nil
}

// Set stores lines built from the given user version. It reports false when
// the cache already holds the same or a newer version.
func (c *ShoppingListCache) Set(ctx context.Context, userID uuid.UUID, version int64, lines []CachedShoppingLine) (bool, error) {
	raw, err := encodeShoppingList(version, lines)
	if err != nil {
		return false, err
	}
	stored, err := setIfNewer.Run(ctx, c.client.Client(), []string{c.key(userID)}, version, raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("cache set shopping list: %w", err)
	}
	return stored == 1, nil
}

// Delete drops the cached list for the given users.
func (c *ShoppingListCache) Delete(ctx context.Context, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = c.key(id)
	}
	if err := c.client.Client().Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete shopping list: %w", err)
	}
	return nil
}

func (c *ShoppingListCache) key(userID uuid.UUID) string {
	return c.client.Key(shoppingListKeyPrefix, userID.String())
}

func encodeShoppingList(version int64, lines []CachedShoppingLine) ([]byte, error) {
	if lines == nil {
		lines = []CachedShoppingLine{}
	}
	raw, err := json.Marshal(cachedShoppingList{Version: version, Lines: lines})
	if err != nil {
		return nil, fmt.Errorf("cache encode shopping list: %w", err)
	}
	return raw, nil
}

func decodeShoppingList(raw []byte) (cachedShoppingList, error) {
	var entry cachedShoppingList
	if err := json.Unmarshal(raw, &entry); err != nil {
		return cachedShoppingList{}, fmt.Errorf("cache decode shopping list: %w", err)
	}
	if entry.Lines == nil {
		return cachedShoppingList{}, fmt.Errorf("cache decode shopping list: missing lines")
	}
	return entry, nil
}
