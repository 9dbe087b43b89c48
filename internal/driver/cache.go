package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"
)

// Current schema version - increment when CacheEntry format changes
const cacheSchemaVersion uint16 = 1

// engineRevision is mixed into every cache key; bump it whenever the
// formatter output changes for some input.
const engineRevision = "chplfmt-engine/1"

// Digest is a blake3 hash.
type Digest [32]byte

// String returns the hex form of d.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// CacheKey hashes the engine revision together with the decoded file text.
func CacheKey(content []byte) Digest {
	h := blake3.New()
	_, _ = h.Write([]byte(engineRevision))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(content)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// CacheEntry remembers what the formatter made of one content hash.
type CacheEntry struct {
	Schema        uint16
	Path          string // последний файл с этим содержимым, для отладки
	Clean         bool   // content is already formatted
	FormattedHash Digest // CacheKey of the formatted text
	Stored        time.Time
}

// Cache stores CacheEntry values on disk keyed by content hash.
// Thread-safe; writers from other processes are serialized with a lock file.
type Cache struct {
	mu   sync.RWMutex
	dir  string
	lock *flock.Flock
}

// DefaultCacheDir returns $XDG_CACHE_HOME/chplfmt, falling back to
// ~/.cache/chplfmt.
func DefaultCacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "chplfmt"), nil
}

// OpenCache initializes a cache in dir, or in DefaultCacheDir when dir is empty.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultCacheDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &Cache{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".lock")),
	}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Digest) string {
	hexKey := key.String()
	// два символа подкаталога, чтобы не держать всё в одной директории
	return filepath.Join(c.dir, "entries", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes an entry. The write is atomic (temp + rename).
func (c *Cache) Put(key Digest, entry *CacheEntry) (err error) {
	if c == nil || entry == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("cache lock: %w", err)
	}
	defer func() {
		if unlockErr := c.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmpName := f.Name()
	defer func() {
		// после успешного Rename файла уже нет
		if removeErr := os.Remove(tmpName); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) && err == nil {
			err = removeErr
		}
	}()

	stored := *entry
	stored.Schema = cacheSchemaVersion
	if stored.Stored.IsZero() {
		stored.Stored = time.Now().UTC()
	}
	if err := msgpack.NewEncoder(f).Encode(&stored); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmpName, p)
}

// Get reads an entry. Missing entries and entries written with another
// schema report ok == false.
func (c *Cache) Get(key Digest) (entry CacheEntry, ok bool, err error) {
	if c == nil {
		return CacheEntry{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CacheEntry{}, false, nil
		}
		return CacheEntry{}, false, err
	}
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return CacheEntry{}, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	if entry.Schema != cacheSchemaVersion {
		return CacheEntry{}, false, nil
	}
	return entry, true, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("cache lock: %w", err)
	}
	defer func() {
		if unlockErr := c.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}()

	// тривиально: переименуем каталог и удалим
	entries := filepath.Join(c.dir, "entries")
	old := entries + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(entries, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
