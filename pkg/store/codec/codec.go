// Package codec compresses record store values.
//
// Every encoded value starts with a one-byte tag naming the codec that
// produced it, so values written under one compression setting stay readable
// after the setting changes.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/arthur-debert/linkvault/pkg/errors"
)

// Tag identifies the codec of an encoded value
type Tag byte

const (
	TagNone   Tag = 0
	TagSnappy Tag = 1
	TagZstd   Tag = 2
	TagGzip   Tag = 3
)

// Codec encodes and decodes stored values
type Codec interface {
	Name() string
	Encode(src []byte) ([]byte, error)
	Decode(src []byte) ([]byte, error)
}

// ForName returns the codec for a store.compression setting
func ForName(name string) (Codec, error) {
	switch name {
	case "none", "":
		return tagged{tag: TagNone}, nil
	case "snappy":
		return tagged{tag: TagSnappy}, nil
	case "zstd":
		return tagged{tag: TagZstd}, nil
	case "gzip":
		return tagged{tag: TagGzip}, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unsupported compression %q", name)
	}
}

type tagged struct {
	tag Tag
}

func (t tagged) Name() string {
	switch t.tag {
	case TagSnappy:
		return "snappy"
	case TagZstd:
		return "zstd"
	case TagGzip:
		return "gzip"
	default:
		return "none"
	}
}

func (t tagged) Encode(src []byte) ([]byte, error) {
	body, err := compress(t.tag, src)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, byte(t.tag))
	return append(out, body...), nil
}

// Decode ignores the receiver's own codec and honours the value's tag
func (t tagged) Decode(src []byte) ([]byte, error) {
	return Decode(src)
}

// Decode decodes a tagged value produced by any codec
func Decode(src []byte) ([]byte, error) {
	if len(src) == 0 {
		return nil, errors.New(errors.ErrRecordCorrupt, "empty encoded value")
	}
	tag, body := Tag(src[0]), src[1:]

	switch tag {
	case TagNone:
		return append([]byte(nil), body...), nil
	case TagSnappy:
		out, err := snappy.Decode(nil, body)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrRecordCorrupt, "snappy decode failed")
		}
		return out, nil
	case TagZstd:
		out, err := zstdDecoder().DecodeAll(body, nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrRecordCorrupt, "zstd decode failed")
		}
		return out, nil
	case TagGzip:
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrRecordCorrupt, "gzip decode failed")
		}
		defer func() { _ = r.Close() }()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrRecordCorrupt, "gzip decode failed")
		}
		return out, nil
	default:
		return nil, errors.Newf(errors.ErrRecordCorrupt, "unknown codec tag %d", tag)
	}
}

func compress(tag Tag, src []byte) ([]byte, error) {
	switch tag {
	case TagNone:
		return src, nil
	case TagSnappy:
		return snappy.Encode(nil, src), nil
	case TagZstd:
		return zstdEncoder().EncodeAll(src, nil), nil
	case TagGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(src); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "gzip encode failed")
		}
		if err := w.Close(); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "gzip encode failed")
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown codec tag %d", tag)
	}
}

// A single encoder and decoder are shared; EncodeAll and DecodeAll are safe
// for concurrent use.
var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
)

func initZstd() {
	var err error
	zstdEnc, err = zstd.NewWriter(nil)
	if err != nil {
		panic(fmt.Sprintf("zstd encoder: %v", err))
	}
	zstdDec, err = zstd.NewReader(nil)
	if err != nil {
		panic(fmt.Sprintf("zstd decoder: %v", err))
	}
}

func zstdEncoder() *zstd.Encoder {
	zstdOnce.Do(initZstd)
	return zstdEnc
}

func zstdDecoder() *zstd.Decoder {
	zstdOnce.Do(initZstd)
	return zstdDec
}
