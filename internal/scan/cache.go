package scan

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when cachePayload format changes
const cacheSchemaVersion uint16 = 1

// Digest identifies an artifact by the SHA-256 of its content.
type Digest [sha256.Size]byte

// Cache stores per-artifact ldd results on disk so unchanged artifacts skip
// re-resolution. Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// cachePayload is the msgpack-encoded record for one artifact.
type cachePayload struct {
	Schema uint16
	Path   string
	Size   uint64
	Deps   []Dependency
}

// OpenCache initializes and returns the cache at the standard location.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// OpenCacheAt initializes a cache rooted at dir. Tests use this to avoid
// touching the user cache.
func OpenCacheAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "scan", hexKey+".mp")
}

// put serializes and writes a payload to the cache atomically.
func (c *Cache) put(key Digest, payload *cachePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// get reads a payload from the cache. A schema mismatch counts as a miss.
func (c *Cache) get(key Digest, out *cachePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	if out.Schema != cacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// fileDigest hashes the artifact content and returns its size.
func fileDigest(path string) (Digest, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, 0, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return Digest{}, 0, fmt.Errorf("hash %s: %w", path, err)
	}
	size, err := safecast.Conv[uint64](n)
	if err != nil {
		return Digest{}, 0, fmt.Errorf("size of %s: %w", path, err)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, size, nil
}
