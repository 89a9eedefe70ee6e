package store

import (
	"github.com/arthur-debert/linkvault/pkg/store/codec"
)

// compressed encodes values on the way in and decodes them on the way out
type compressed struct {
	Backend
	codec codec.Codec
}

func (c *compressed) Put(tree string, key, value []byte) error {
	encoded, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	return c.Backend.Put(tree, key, encoded)
}

func (c *compressed) Get(tree string, key []byte) ([]byte, error) {
	raw, err := c.Backend.Get(tree, key)
	if err != nil {
		return nil, err
	}
	return c.codec.Decode(raw)
}

func (c *compressed) Iterate(tree string, fn func(key, value []byte) error) error {
	return c.Backend.Iterate(tree, func(key, raw []byte) error {
		value, err := c.codec.Decode(raw)
		if err != nil {
			return err
		}
		return fn(key, value)
	})
}
