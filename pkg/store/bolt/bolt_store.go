package boltstore

import (
	"bytes"
	"strings"

	"github.com/boltdb/bolt"

	"github.com/tourops/backoffice/pkg/store"
)

type boltstore struct {
	storePath  string
	bucketName []byte

	db     *bolt.DB
	opened bool
}

func New(storePath string, bucketName string) store.Store {
	return &boltstore{storePath: storePath, bucketName: []byte(bucketName)}
}

func (s *boltstore) open() (err error) {
	if s.opened {
		return
	}

	s.db, err = bolt.Open(s.storePath, 0600, nil)
	if err != nil {
		return
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists(s.bucketName)
		return err
	})

	if err == nil {
		s.opened = true
	}

	return
}

func (s *boltstore) Get(key string) (val []byte, err error) {
	err = s.open()
	if err != nil {
		return
	}

	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucketName)
		v := b.Get([]byte(key))
		if v != nil {
			val = append([]byte{}, v...)
		}
		return nil
	})

	return
}

func (s *boltstore) Set(key string, val []byte, options *store.WriteOptions) (err error) {
	err = s.open()
	if err != nil {
		return
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucketName)
		return b.Put([]byte(key), val)
	})
}

func (s *boltstore) Delete(key string) (err error) {
	err = s.open()
	if err != nil {
		return
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucketName)
		return b.Delete([]byte(key))
	})
}

func (s *boltstore) DeleteAll(pattern string) (err error) {
	err = s.open()
	if err != nil {
		return
	}

	prefix := patternPrefix(pattern)
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucketName)
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *boltstore) Exists(key string) (exists bool, err error) {
	err = s.open()
	if err != nil {
		return
	}

	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucketName)
		exists = b.Get([]byte(key)) != nil
		return nil
	})

	return
}

func (s *boltstore) Scan(pattern string, skip int, limit int, fn func(key string, val []byte)) (err error) {
	err = s.open()
	if err != nil {
		return
	}

	prefix := patternPrefix(pattern)
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucketName)
		c := b.Cursor()
		i := 0
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if i < skip {
				i++
				continue
			}
			if limit > 0 && i >= skip+limit {
				break
			}
			fn(string(k), append([]byte{}, v...))
			i++
		}
		return nil
	})
}

func (s *boltstore) Count(pattern string) (count int) {
	if s.open() != nil {
		return 0
	}

	prefix := patternPrefix(pattern)
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucketName)
		c := b.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			count++
		}
		return nil
	})

	return
}

func (s *boltstore) Close() error {
	if !s.opened {
		return nil
	}
	s.opened = false
	return s.db.Close()
}

func patternPrefix(pattern string) []byte {
	return []byte(strings.TrimSuffix(pattern, "*"))
}
