// Package invite produces shareable location descriptors for rooms.
//
// A descriptor is the room name followed by an invite link:
//
//	Lobby: https://rw.example/invite/6f1c...?exp=1769594400&sig=9a4e...
//
// Each link carries a random code, an expiry and a signature. The signature
// is an HMAC-SHA256 over code and expiry, keyed with a per-room key derived
// from the service secret with HKDF-SHA256. Verify checks all three.
package invite
