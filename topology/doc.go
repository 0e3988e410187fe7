/*
Package topology models a wallet configuration: a weighted threshold policy
over signers arranged as a binary tree.

A tree is built from Node values and four kinds of leaves. A SignerLeaf
contributes the weight of a signer, a SubdigestLeaf contributes an unbounded
weight when its subdigest is pre-approved, a NestedLeaf contributes its weight
only when its own subtree reaches its own threshold, and a NodeLeaf is the
hash of a pruned subtree that contributes nothing.

Trees are values. Once built they are never modified; a configuration change
is a new WalletConfig with a greater checkpoint. The hash of every tree is
computed the same way the on-chain verifier does, and the image hash of a
configuration derives the wallet address.
*/
package topology
