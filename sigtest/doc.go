/*
Package sigtest provides helpers for tests of packages handling wallet
configurations and signatures: random keys, addresses and hashes.
*/
package sigtest
