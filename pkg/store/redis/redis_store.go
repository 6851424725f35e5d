package redistore

import (
	"sort"

	"github.com/gomodule/redigo/redis"

	"github.com/tourops/backoffice/pkg/store"
)

var (
	DEL_SCRIPT = redis.NewScript(0, `for i, k in ipairs(redis.call('KEYS', ARGV[1])) do redis.call('DEL', k) end`)
)

type redistore struct {
	pool *redis.Pool
}

func New(redisURL string) store.Store {
	return &redistore{
		pool: &redis.Pool{
			MaxActive: 5,
			MaxIdle:   5,
			Wait:      true,
			Dial: func() (redis.Conn, error) {
				return redis.DialURL(redisURL)
			},
		},
	}
}

func (s *redistore) Get(key string) ([]byte, error) {
	c := s.pool.Get()
	defer c.Close()

	res, err := c.Do("GET", key)
	if res != nil {
		return redis.Bytes(res, err)
	}
	return nil, err
}

func (s *redistore) Set(key string, value []byte, options *store.WriteOptions) error {
	c := s.pool.Get()
	defer c.Close()

	if options != nil && options.TTL > 0 {
		_, err := c.Do("SETEX", key, options.TTL, value)
		return err
	}

	_, err := c.Do("SET", key, value)
	return err
}

func (s *redistore) Delete(key string) error {
	c := s.pool.Get()
	defer c.Close()

	_, err := c.Do("DEL", key)
	return err
}

func (s *redistore) DeleteAll(pattern string) error {
	c := s.pool.Get()
	defer c.Close()

	_, err := DEL_SCRIPT.Do(c, pattern)
	return err
}

func (s *redistore) Exists(key string) (bool, error) {
	c := s.pool.Get()
	defer c.Close()

	return redis.Bool(c.Do("EXISTS", key))
}

func (s *redistore) Scan(pattern string, skip int, limit int, fn func(key string, val []byte)) error {
	keys, err := s.keys(pattern)
	if err != nil {
		return err
	}
	sort.Strings(keys)

	i := 0
	for _, key := range keys {
		if i < skip {
			i++
			continue
		}
		if limit > 0 && i >= skip+limit {
			break
		}
		val, err := s.Get(key)
		if err != nil {
			return err
		}
		fn(key, val)
		i++
	}
	return nil
}

func (s *redistore) Count(pattern string) int {
	keys, err := s.keys(pattern)
	if err != nil {
		return 0
	}
	return len(keys)
}

func (s *redistore) Close() error {
	return s.pool.Close()
}

func (s *redistore) keys(pattern string) ([]string, error) {
	c := s.pool.Get()
	defer c.Close()

	keys := []string{}
	cursor := 0
	for {
		res, err := redis.Values(c.Do("SCAN", cursor, "MATCH", pattern))
		if err != nil {
			return nil, err
		}
		cursor, _ = redis.Int(res[0], nil)
		batch, _ := redis.Strings(res[1], nil)
		keys = append(keys, batch...)
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}
