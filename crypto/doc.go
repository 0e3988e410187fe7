/*
Package crypto provides the hashing and secp256k1 primitives shared by the
wallet configuration and signature packages.

All hashing is Keccak-256, matching the on-chain verifier. Static signatures
are 66 bytes long: the usual 65 byte r, s, v triple followed by a single
SigType byte that selects how the digest was prepared.
*/
package crypto
