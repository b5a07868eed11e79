// Package hashid encodes record ids into short opaque strings for public
// URLs and file names.
package hashid

import (
	"github.com/pkg/errors"
	"github.com/speps/go-hashids/v2"
)

// Codec is a reversible id <-> string mapping.
type Codec struct {
	h *hashids.HashID
}

// New returns a Codec keyed by salt. Encoded ids are at least minLength long.
func New(salt string, minLength int) (*Codec, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = minLength
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, errors.Wrap(err, "hashid: invalid configuration")
	}
	return &Codec{h: h}, nil
}

// Encode returns the opaque form of id
func (c *Codec) Encode(id uint) (string, error) {
	s, err := c.h.EncodeInt64([]int64{int64(id)})
	if err != nil {
		return "", errors.Wrapf(err, "hashid: cannot encode %d", id)
	}
	return s, nil
}

// Decode returns the id encoded in s
func (c *Codec) Decode(s string) (uint, error) {
	ids, err := c.h.DecodeInt64WithError(s)
	if err != nil {
		return 0, errors.Wrap(err, "hashid: invalid id")
	}
	if len(ids) != 1 || ids[0] < 0 {
		return 0, errors.Errorf("hashid: invalid id '%s'", s)
	}
	return uint(ids[0]), nil
}
