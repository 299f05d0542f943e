package core

import "crypto/rand"

// RandomNonce returns a fresh uniform random u32, the direct translation of
// forwarder.cpp's onOutgoingInterest use of
// boost::random::uniform_int_distribution<uint32_t> over the global RNG,
// and matching the teacher's own std/engine/basic/timer.go Timer.Nonce()
// (crypto/rand, no manual seeding needed since Go 1.20).
func RandomNonce() uint32 {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read on a supported platform does not fail; if it
		// somehow does, a zero nonce is still safe (just never matches a
		// real duplicate), so we don't propagate an error here.
		return 0
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
}
