// Package boltcache is a bbolt-backed, persistent implementation of
// keyset.Store. Keys are written once per refresh cycle; there is no
// background polling here — callers fetch keys themselves and hand them
// to Put.
package boltcache

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/uid2-io/uid2-client-go/keyset"
)

var (
	bucketKeysByID   = []byte("keys_by_id")
	bucketSiteIndex  = []byte("site_index") // site_id(4) || created_unix_ms(8) -> key_id(8)
	bucketMeta       = []byte("meta")
	metaRefreshedKey = []byte("refreshed_unix_ms")
)

// Cache is a disk-backed keyset.Store. It is safe for concurrent reads and
// writes; all access serializes through bbolt's own transaction locking.
type Cache struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bolt-backed key cache at path.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltcache: open: %w", err)
	}
	c := &Cache{db: db}
	if err := c.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketKeysByID, bucketSiteIndex, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the underlying bolt database handle.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Put persists k and marks the cache refreshed as of now.
func (c *Cache) Put(k keyset.Key, now time.Time) error {
	rec := encodeKey(k)
	idKey := encodeID(k.ID)
	siteKey := encodeSiteIndexKey(k.SiteID, k.Created)

	return c.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketKeysByID).Put(idKey, rec); err != nil {
			return err
		}
		if err := tx.Bucket(bucketSiteIndex).Put(siteKey, idKey); err != nil {
			return err
		}
		var ts [8]byte
		binary.BigEndian.PutUint64(ts[:], uint64(now.UnixMilli()))
		return tx.Bucket(bucketMeta).Put(metaRefreshedKey, ts[:])
	})
}

// TryGetKey implements keyset.Store.
func (c *Cache) TryGetKey(id int64) (keyset.Key, bool) {
	var k keyset.Key
	var ok bool
	_ = c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketKeysByID).Get(encodeID(id))
		if v == nil {
			return nil
		}
		decoded, err := decodeKey(v)
		if err != nil {
			return nil
		}
		k, ok = decoded, true
		return nil
	})
	return k, ok
}

// TryGetActiveSiteKey implements keyset.Store. It scans the site index in
// descending creation order and returns the first key active at now.
func (c *Cache) TryGetActiveSiteKey(siteID int32, now time.Time) (keyset.Key, bool) {
	var result keyset.Key
	var ok bool
	_ = c.db.View(func(tx *bolt.Tx) error {
		idsBucket := tx.Bucket(bucketKeysByID)
		idx := tx.Bucket(bucketSiteIndex)
		cur := idx.Cursor()
		prefix := encodeSiteIndexPrefix(siteID)
		// Bucket keys are ordered ascending; walk backward from the last
		// key under this site's prefix to prefer the most recently created.
		var keys, vals [][]byte
		for k, v := cur.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = cur.Next() {
			keys = append(keys, append([]byte(nil), k...))
			vals = append(vals, append([]byte(nil), v...))
		}
		for i := len(vals) - 1; i >= 0; i-- {
			raw := idsBucket.Get(vals[i])
			if raw == nil {
				continue
			}
			k, err := decodeKey(raw)
			if err != nil {
				continue
			}
			if k.IsActiveAt(now) {
				result, ok = k, true
				return nil
			}
		}
		return nil
	})
	return result, ok
}

// IsValid implements keyset.Store.
func (c *Cache) IsValid(now time.Time) bool {
	var refreshed time.Time
	_ = c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketMeta).Get(metaRefreshedKey)
		if len(v) != 8 {
			return nil
		}
		refreshed = time.UnixMilli(int64(binary.BigEndian.Uint64(v)))
		return nil
	})
	if refreshed.IsZero() {
		return false
	}
	const maxAge = 2 * time.Hour
	return now.Sub(refreshed) <= maxAge
}

func encodeID(id int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

func encodeSiteIndexPrefix(siteID int32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(siteID))
	return b[:]
}

func encodeSiteIndexKey(siteID int32, created time.Time) []byte {
	b := make([]byte, 12)
	binary.BigEndian.PutUint32(b[0:4], uint32(siteID))
	binary.BigEndian.PutUint64(b[4:12], uint64(created.UnixMilli()))
	return b
}

func hasPrefix(b, prefix []byte) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == string(prefix)
}

// encodeKey / decodeKey serialize a keyset.Key as a fixed-header record
// followed by the variable-length secret, mirroring the fixed-header +
// tail-bytes convention the envelope codec itself uses on the wire.
func encodeKey(k keyset.Key) []byte {
	b := make([]byte, 0, 8+4+8+8+8+4+len(k.Secret))
	var tmp [8]byte

	binary.BigEndian.PutUint64(tmp[:], uint64(k.ID))
	b = append(b, tmp[:]...)

	var tmp4 [4]byte
	binary.BigEndian.PutUint32(tmp4[:], uint32(k.SiteID))
	b = append(b, tmp4[:]...)

	binary.BigEndian.PutUint64(tmp[:], uint64(k.Created.UnixMilli()))
	b = append(b, tmp[:]...)
	binary.BigEndian.PutUint64(tmp[:], uint64(k.Activates.UnixMilli()))
	b = append(b, tmp[:]...)
	binary.BigEndian.PutUint64(tmp[:], uint64(k.Expires.UnixMilli()))
	b = append(b, tmp[:]...)

	binary.BigEndian.PutUint32(tmp4[:], uint32(len(k.Secret)))
	b = append(b, tmp4[:]...)
	b = append(b, k.Secret...)
	return b
}

func decodeKey(b []byte) (keyset.Key, error) {
	const headerLen = 8 + 4 + 8 + 8 + 8 + 4
	if len(b) < headerLen {
		return keyset.Key{}, fmt.Errorf("boltcache: truncated key record")
	}
	id := int64(binary.BigEndian.Uint64(b[0:8]))
	siteID := int32(binary.BigEndian.Uint32(b[8:12]))
	created := time.UnixMilli(int64(binary.BigEndian.Uint64(b[12:20])))
	activates := time.UnixMilli(int64(binary.BigEndian.Uint64(b[20:28])))
	expires := time.UnixMilli(int64(binary.BigEndian.Uint64(b[28:36])))
	secretLen := int(binary.BigEndian.Uint32(b[36:40]))
	if len(b) < headerLen+secretLen {
		return keyset.Key{}, fmt.Errorf("boltcache: truncated key secret")
	}
	secret := append([]byte(nil), b[headerLen:headerLen+secretLen]...)
	return keyset.Key{
		ID: id, SiteID: siteID, Secret: secret,
		Created: created, Activates: activates, Expires: expires,
	}, nil
}
