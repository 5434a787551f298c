package bolt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"
	bberrors "go.etcd.io/bbolt/errors"

	"github.com/haukened/rr-stats/internal/stats/domain"
	"github.com/haukened/rr-stats/internal/stats/repos/wildcard"
)

var (
	bucketExact  = []byte("exact")
	bucketSuffix = []byte("suffix")
	bucketMeta   = []byte("meta")

	keyVersion = []byte("version")
	keyUpdated = []byte("updated")
)

// boltStore implements wildcard.Store using bbolt. Exact names are keyed
// as-is; suffix anchors are keyed reversed.
type boltStore struct {
	db *bbolt.DB
}

// New opens (or creates) a Bolt database at path and ensures buckets exist.
func New(path string) (wildcard.Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening wildcard db %q: %w", path, err)
	}
	if err := db.Update(ensureBuckets); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &boltStore{db: db}, nil
}

func ensureBuckets(tx *bbolt.Tx) error {
	for _, name := range [][]byte{bucketExact, bucketSuffix, bucketMeta} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *boltStore) Close() error { return s.db.Close() }

// GetFirstMatch checks the exact bucket, then walks suffix anchors from the
// full name up to the last label.
func (s *boltStore) GetFirstMatch(name string) (domain.BlockRule, bool, error) {
	var (
		rule  domain.BlockRule
		found bool
	)
	err := s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketExact); b != nil {
			if v := b.Get([]byte(name)); v != nil {
				r, err := decodeRule(name, v)
				if err != nil {
					return err
				}
				rule, found = r, true
				return nil
			}
		}
		b := tx.Bucket(bucketSuffix)
		if b == nil {
			return nil
		}
		anchor := name
		for anchor != "" {
			if v := b.Get([]byte(reverse(anchor))); v != nil {
				r, err := decodeRule(anchor, v)
				if err != nil {
					return err
				}
				rule, found = r, true
				return nil
			}
			i := strings.IndexByte(anchor, '.')
			if i < 0 {
				break
			}
			anchor = anchor[i+1:]
		}
		return nil
	})
	return rule, found, err
}

// RebuildAll replaces every rule and the snapshot metadata in one transaction.
// Rules with an unsupported kind are skipped.
func (s *boltStore) RebuildAll(rules []domain.BlockRule, version uint64, updatedUnix int64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := dropBuckets(tx); err != nil {
			return err
		}
		if err := ensureBuckets(tx); err != nil {
			return err
		}
		exact := tx.Bucket(bucketExact)
		suffix := tx.Bucket(bucketSuffix)
		for _, r := range rules {
			v := encodeRule(r)
			var err error
			switch r.Kind {
			case domain.BlockRuleExact:
				err = exact.Put([]byte(r.Name), v)
			case domain.BlockRuleSuffix:
				err = suffix.Put([]byte(reverse(r.Name)), v)
			default:
				continue
			}
			if err != nil {
				return fmt.Errorf("storing rule %q: %w", r.Name, err)
			}
		}
		meta := tx.Bucket(bucketMeta)
		if err := meta.Put(keyVersion, u64(version)); err != nil {
			return err
		}
		return meta.Put(keyUpdated, u64(uint64(updatedUnix)))
	})
}

// Purge removes all rules and metadata.
func (s *boltStore) Purge() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := dropBuckets(tx); err != nil {
			return err
		}
		return ensureBuckets(tx)
	})
}

func (s *boltStore) Stats() wildcard.StoreStats {
	st := wildcard.StoreStats{}
	_ = s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket(bucketExact); b != nil {
			st.ExactKeys = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketSuffix); b != nil {
			st.SuffixKeys = uint64(b.Stats().KeyN)
		}
		if b := tx.Bucket(bucketMeta); b != nil {
			if v := b.Get(keyVersion); len(v) == 8 {
				st.Version = binary.BigEndian.Uint64(v)
			}
			if v := b.Get(keyUpdated); len(v) == 8 {
				st.UpdatedUnix = int64(binary.BigEndian.Uint64(v))
			}
		}
		return nil
	})
	return st
}

func dropBuckets(tx *bbolt.Tx) error {
	for _, name := range [][]byte{bucketExact, bucketSuffix, bucketMeta} {
		if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bberrors.ErrBucketNotFound) {
			return err
		}
	}
	return nil
}

// value layout: kind(1) | len(source)(2, big endian) | source
func encodeRule(r domain.BlockRule) []byte {
	src := r.Source
	if len(src) > 0xFFFF {
		src = src[:0xFFFF]
	}
	buf := make([]byte, 3+len(src))
	buf[0] = byte(r.Kind)
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(src)))
	copy(buf[3:], src)
	return buf
}

func decodeRule(name string, v []byte) (domain.BlockRule, error) {
	if len(v) < 3 {
		return domain.BlockRule{}, fmt.Errorf("corrupt rule value for %q", name)
	}
	n := int(binary.BigEndian.Uint16(v[1:3]))
	if len(v) < 3+n {
		return domain.BlockRule{}, fmt.Errorf("corrupt rule source for %q", name)
	}
	return domain.BlockRule{
		Name:   name,
		Kind:   domain.BlockRuleKind(v[0]),
		Source: string(v[3 : 3+n]),
	}, nil
}

func u64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// reverse must stay in step with the repository's bloom key reversal.
func reverse(s string) string {
	rs := []rune(s)
	for i, j := 0, len(rs)-1; i < j; i, j = i+1, j-1 {
		rs[i], rs[j] = rs[j], rs[i]
	}
	return string(rs)
}
