// Package md5 implements the MD5 message-digest algorithm as defined in
// [RFC 1321].
//
// It backs the RFC 2617 digest computations in package digest.
//
// [RFC 1321]: https://www.rfc-editor.org/rfc/rfc1321.html
package md5

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"
	"math/bits"
)

const (
	// Size is the size of an MD5 checksum in bytes.
	Size = 16

	// BlockSize is the block size of MD5 in bytes.
	BlockSize = 64
)

const (
	init0 = 0x67452301
	init1 = 0xefcdab89
	init2 = 0x98badcfe
	init3 = 0x10325476
)

// Per-step left rotation amounts, one row of four per round.
var shifts = [64]int{
	7, 12, 17, 22, 7, 12, 17, 22, 7, 12, 17, 22, 7, 12, 17, 22,
	5, 9, 14, 20, 5, 9, 14, 20, 5, 9, 14, 20, 5, 9, 14, 20,
	4, 11, 16, 23, 4, 11, 16, 23, 4, 11, 16, 23, 4, 11, 16, 23,
	6, 10, 15, 21, 6, 10, 15, 21, 6, 10, 15, 21, 6, 10, 15, 21,
}

// table[i] is the integer part of 2^32 * abs(sin(i+1)), see RFC 1321 §3.4.
var table = func() (t [64]uint32) {
	for i := range t {
		t[i] = uint32(math.Floor(math.Abs(math.Sin(float64(i+1))) * (1 << 32)))
	}
	return t
}()

type digest struct {
	s   [4]uint32
	x   [BlockSize]byte
	nx  int
	len uint64
}

// New returns a new hash.Hash computing the MD5 checksum.
func New() hash.Hash {
	d := new(digest)
	d.Reset()
	return d
}

// Sum returns the MD5 checksum of data.
func Sum(data []byte) [Size]byte {
	var d digest
	d.Reset()
	_, _ = d.Write(data)
	return d.checkSum()
}

// Hex returns the MD5 checksum of s as 32 lowercase hexadecimal characters.
func Hex(s string) string {
	sum := Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (d *digest) Reset() {
	d.s = [4]uint32{init0, init1, init2, init3}
	d.nx = 0
	d.len = 0
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return BlockSize }

func (d *digest) Write(p []byte) (int, error) {
	n := len(p)
	d.len += uint64(n)

	if d.nx > 0 {
		c := copy(d.x[d.nx:], p)
		d.nx += c
		if d.nx == BlockSize {
			block(&d.s, d.x[:])
			d.nx = 0
		}
		p = p[c:]
	}

	for len(p) >= BlockSize {
		block(&d.s, p[:BlockSize])
		p = p[BlockSize:]
	}

	if len(p) > 0 {
		d.nx = copy(d.x[:], p)
	}

	return n, nil
}

// Sum appends the current checksum to in. It does not change the underlying
// state, so callers may keep writing afterwards.
func (d *digest) Sum(in []byte) []byte {
	d0 := *d
	sum := d0.checkSum()
	return append(in, sum[:]...)
}

func (d *digest) checkSum() [Size]byte {
	bitLen := d.len << 3

	// Pad with 0x80 and zeros until the length is 56 mod 64, leaving room for
	// the 64-bit length field.
	var pad [BlockSize + 8]byte
	pad[0] = 0x80
	rem := d.len % BlockSize
	padLen := 56 - rem
	if rem >= 56 {
		padLen = BlockSize + 56 - rem
	}
	binary.LittleEndian.PutUint64(pad[padLen:], bitLen)
	_, _ = d.Write(pad[:padLen+8])

	if d.nx != 0 {
		panic("md5: padding left a partial block")
	}

	var out [Size]byte
	for i, v := range d.s {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

func block(s *[4]uint32, p []byte) {
	var m [16]uint32
	for i := range m {
		m[i] = binary.LittleEndian.Uint32(p[i*4:])
	}

	a, b, c, d := s[0], s[1], s[2], s[3]

	for i := 0; i < 64; i++ {
		var f uint32
		var g int
		switch {
		case i < 16:
			f = (b & c) | (^b & d)
			g = i
		case i < 32:
			f = (d & b) | (^d & c)
			g = (5*i + 1) % 16
		case i < 48:
			f = b ^ c ^ d
			g = (3*i + 5) % 16
		default:
			f = c ^ (b | ^d)
			g = (7 * i) % 16
		}
		f += a + table[i] + m[g]
		a, d, c = d, c, b
		b += bits.RotateLeft32(f, shifts[i])
	}

	s[0] += a
	s[1] += b
	s[2] += c
	s[3] += d
}
