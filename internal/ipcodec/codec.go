// Package ipcodec converts textual IP addresses to and from a fixed-width,
// big-endian binary key whose lexicographic byte order matches the numeric
// order of the address within its family. Keys are 4 bytes for IPv4 and
// 16 bytes for IPv6, so keys of different families never share a width.
package ipcodec

import (
	"errors"
	"fmt"
	"net/netip"
)

const (
	// KeyLenV4 is the encoded key width for IPv4 addresses.
	KeyLenV4 = 4
	// KeyLenV6 is the encoded key width for IPv6 addresses.
	KeyLenV6 = 16
)

var (
	// ErrInvalidAddressFormat reports text that is neither a dotted-quad
	// IPv4 address nor a colon-hex IPv6 address.
	ErrInvalidAddressFormat = errors.New("ipcodec: invalid address format")

	// ErrInvalidEncodingLength reports a stored key whose width matches
	// neither address family. It indicates corrupted data, not bad input.
	ErrInvalidEncodingLength = errors.New("ipcodec: invalid encoding length")
)

// Parse converts a textual IP address into its canonical netip.Addr form.
// IPv4-mapped IPv6 addresses are unmapped so that "::ffff:10.0.0.1" and
// "10.0.0.1" produce the same key. Zoned addresses are rejected because they
// have no canonical binary form.
func Parse(text string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(text)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %q", ErrInvalidAddressFormat, text)
	}
	if addr.Zone() != "" {
		return netip.Addr{}, fmt.Errorf("%w: %q has a zone", ErrInvalidAddressFormat, text)
	}
	return addr.Unmap(), nil
}

// Encode returns the network-byte-order key for addr: 4 bytes for IPv4,
// 16 bytes for IPv6. For two addresses of the same family, bytes.Compare on
// their keys orders them exactly as their numeric values do.
func Encode(addr netip.Addr) ([]byte, error) {
	switch {
	case addr.Is4():
		key := addr.As4()
		return key[:], nil
	case addr.Is6():
		key := addr.As16()
		return key[:], nil
	default:
		return nil, fmt.Errorf("%w: zero address", ErrInvalidAddressFormat)
	}
}

// Decode is the inverse of Encode. The key width selects the family.
func Decode(key []byte) (netip.Addr, error) {
	switch len(key) {
	case KeyLenV4:
		return netip.AddrFrom4([4]byte(key)), nil
	case KeyLenV6:
		return netip.AddrFrom16([16]byte(key)), nil
	default:
		return netip.Addr{}, fmt.Errorf("%w: %d bytes", ErrInvalidEncodingLength, len(key))
	}
}

// EncodeText parses and encodes in one step.
func EncodeText(text string) ([]byte, error) {
	addr, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return Encode(addr)
}
