// Package digest implements ports.Digester for the hash functions a target
// list may have been produced with. Standard-library hashes cover the common
// cases; golang.org/x/crypto supplies SHA-3 and BLAKE2.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"sort"
	"strings"

	"github.com/corey/rube/internal/ports"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// Default is the algorithm target lists use unless configured otherwise.
const Default = "sha256"

var ErrUnknownAlgorithm = errors.New("unknown digest algorithm")

// hasher adapts a hash.Hash constructor. A fresh hash is built per Sum so
// the digester is safe for concurrent workers.
type hasher struct {
	name string
	size int
	new  func() hash.Hash
}

func (h hasher) Name() string { return h.name }
func (h hasher) Size() int    { return h.size }

func (h hasher) Sum(p []byte) []byte {
	hh := h.new()
	hh.Write(p)
	return hh.Sum(nil)
}

func mustBlake2b256() hash.Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err) // only fails for an oversized key
	}
	return h
}

func mustBlake2s256() hash.Hash {
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

var registry = map[string]hasher{
	"md5":         {"md5", md5.Size, md5.New},
	"sha1":        {"sha1", sha1.Size, sha1.New},
	"sha256":      {"sha256", sha256.Size, sha256.New},
	"sha512":      {"sha512", sha512.Size, sha512.New},
	"sha3-256":    {"sha3-256", 32, sha3.New256},
	"blake2b-256": {"blake2b-256", blake2b.Size256, mustBlake2b256},
	"blake2s-256": {"blake2s-256", blake2s.Size, mustBlake2s256},
}

// Lookup returns the digester registered under name (case-insensitive).
func Lookup(name string) (ports.Digester, error) {
	h, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownAlgorithm, name, strings.Join(Names(), ", "))
	}
	return h, nil
}

// Names lists registered algorithms in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
