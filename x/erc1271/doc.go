/*
Package erc1271 validates signatures of contract signers.

A contract signer accepts a signature when its isValidSignature(bytes32,bytes)
method returns the magic value 0x1626ba7e, as defined by ERC-1271. The
Validator in this package checks dynamic signature parts against a node
exposing the Ethereum JSON-RPC API. Dynamic parts carrying an ECDSA
signature are recovered locally and no call is made.
*/
package erc1271
