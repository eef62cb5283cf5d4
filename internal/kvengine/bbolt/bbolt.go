// Package bbolt adapts go.etcd.io/bbolt to the kvengine.Engine interface
// (C8): one bbolt database file, its top-level buckets standing in for
// column families, and nested buckets standing in for per-segment
// sub-columns. bbolt's bucket model is a direct match for
// "per-column-family scoping" — reverse iteration over segment ids uses a
// cursor seeked to the end of a bucket and walked backward, which is
// exactly the segmentsCoveringFrom access pattern (C3).
package bbolt

import (
	"encoding/binary"

	bolt "go.etcd.io/bbolt"

	"github.com/embeddedkv/versionedstore/internal/kvengine"
	apperrors "github.com/embeddedkv/versionedstore/pkg/errors"
)

// Engine is a kvengine.Engine backed by one bbolt database file.
type Engine struct {
	db   *bolt.DB
	path string
}

// Open opens (creating if necessary) a bbolt database file at path.
func Open(path string) (*Engine, error) {
	db, err := bolt.Open(path, 0644, nil)
	if err != nil {
		return nil, apperrors.ClassifyOpenError(err, path)
	}
	return &Engine{db: db, path: path}, nil
}

func (e *Engine) Column(name string) (kvengine.Column, error) {
	err := e.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, apperrors.NewEngineError(err, apperrors.ErrorCodeTxFailure, "failed to create column family").
			WithBucket(name).WithOperation("create_column")
	}
	return &column{db: e.db, path: [][]byte{[]byte(name)}}, nil
}

func (e *Engine) Flush() error {
	if err := e.db.Sync(); err != nil {
		return apperrors.ClassifyFlushError(err, e.path)
	}
	return nil
}

func (e *Engine) Close() error {
	if err := e.db.Close(); err != nil {
		return apperrors.NewEngineError(err, apperrors.ErrorCodeIO, "failed to close backing engine").
			WithBucket(e.path).WithOperation("close")
	}
	return nil
}

// column addresses a (possibly nested) bucket by the chain of names leading
// to it. bbolt buckets are only valid within the transaction that produced
// them, so column re-descends the chain on every call rather than holding a
// long-lived *bolt.Bucket.
type column struct {
	db   *bolt.DB
	path [][]byte
}

func segKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

func (c *column) descend(tx *bolt.Tx, create bool) (*bolt.Bucket, error) {
	var b *bolt.Bucket
	for i, name := range c.path {
		if i == 0 {
			if create {
				bb, err := tx.CreateBucketIfNotExists(name)
				if err != nil {
					return nil, err
				}
				b = bb
				continue
			}
			b = tx.Bucket(name)
		} else if create {
			bb, err := b.CreateBucketIfNotExists(name)
			if err != nil {
				return nil, err
			}
			b = bb
		} else {
			b = b.Bucket(name)
		}
		if b == nil {
			return nil, nil
		}
	}
	return b, nil
}

func (c *column) bucketName() string {
	if len(c.path) == 0 {
		return ""
	}
	return string(c.path[len(c.path)-1])
}

func (c *column) Get(key []byte) ([]byte, error) {
	var val []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		b, err := c.descend(tx, false)
		if err != nil || b == nil {
			return err
		}
		if v := b.Get(key); v != nil {
			val = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewEngineError(err, apperrors.ErrorCodeTxFailure, "get failed").
			WithBucket(c.bucketName()).WithOperation("get")
	}
	return val, nil
}

func (c *column) Put(key, value []byte) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		b, err := c.descend(tx, true)
		if err != nil {
			return err
		}
		return b.Put(key, value)
	})
	if err != nil {
		return apperrors.NewEngineError(err, apperrors.ErrorCodeTxFailure, "put failed").
			WithBucket(c.bucketName()).WithOperation("put")
	}
	return nil
}

func (c *column) Delete(key []byte) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		b, err := c.descend(tx, false)
		if err != nil || b == nil {
			return err
		}
		return b.Delete(key)
	})
	if err != nil {
		return apperrors.NewEngineError(err, apperrors.ErrorCodeTxFailure, "delete failed").
			WithBucket(c.bucketName()).WithOperation("delete")
	}
	return nil
}

func (c *column) child(id uint64) *column {
	path := make([][]byte, len(c.path)+1)
	copy(path, c.path)
	path[len(c.path)] = segKey(id)
	return &column{db: c.db, path: path}
}

func (c *column) SubColumn(id uint64) (kvengine.Column, bool, error) {
	var existed bool
	err := c.db.View(func(tx *bolt.Tx) error {
		b, err := c.descend(tx, false)
		if err != nil || b == nil {
			return err
		}
		existed = b.Bucket(segKey(id)) != nil
		return nil
	})
	if err != nil {
		return nil, false, apperrors.NewEngineError(err, apperrors.ErrorCodeTxFailure, "sub-column lookup failed").
			WithBucket(c.bucketName()).WithSegmentID(id).WithOperation("sub_column")
	}
	if !existed {
		return nil, false, nil
	}
	return c.child(id), true, nil
}

func (c *column) CreateSubColumnIfNotExists(id uint64) (kvengine.Column, error) {
	err := c.db.Update(func(tx *bolt.Tx) error {
		b, err := c.descend(tx, true)
		if err != nil {
			return err
		}
		_, err = b.CreateBucketIfNotExists(segKey(id))
		return err
	})
	if err != nil {
		return nil, apperrors.NewEngineError(err, apperrors.ErrorCodeTxFailure, "failed to create sub-column").
			WithBucket(c.bucketName()).WithSegmentID(id).WithOperation("create_sub_column")
	}
	return c.child(id), nil
}

// DeleteSubColumn drops a segment's sub-bucket in one transaction — the
// transaction either commits the whole removal or nothing changes, so a
// crash mid-expiry never partially un-writes a segment.
func (c *column) DeleteSubColumn(id uint64) error {
	err := c.db.Update(func(tx *bolt.Tx) error {
		b, err := c.descend(tx, false)
		if err != nil || b == nil {
			return err
		}
		if b.Bucket(segKey(id)) == nil {
			return nil
		}
		return b.DeleteBucket(segKey(id))
	})
	if err != nil {
		return apperrors.NewEngineError(err, apperrors.ErrorCodeTxFailure, "failed to delete sub-column").
			WithBucket(c.bucketName()).WithSegmentID(id).WithOperation("delete_sub_column")
	}
	return nil
}

func (c *column) SubColumnIDsDescendingFrom(minID uint64) ([]uint64, error) {
	var ids []uint64
	err := c.db.View(func(tx *bolt.Tx) error {
		b, err := c.descend(tx, false)
		if err != nil || b == nil {
			return err
		}
		cursor := b.Cursor()
		floor := segKey(minID)
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			if v != nil {
				// Not a nested bucket entry.
				continue
			}
			if string(k) < string(floor) {
				break
			}
			ids = append(ids, binary.BigEndian.Uint64(k))
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.NewEngineError(err, apperrors.ErrorCodeTxFailure, "failed to list sub-columns").
			WithBucket(c.bucketName()).WithOperation("list_sub_columns")
	}
	return ids, nil
}
