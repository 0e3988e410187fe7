/*
Package signature implements the binary signature format of a tree shaped
wallet configuration.

A signature starts with a type byte. Legacy, Dynamic and NoChainIDDynamic
signatures carry the threshold, the checkpoint and the configuration tree in
which signers that signed are replaced by their signature. Subtrees that do
not contribute any weight are pruned down to their hash. A Chained signature
is a sequence of such signatures, each one proving the transition to the
configuration used by the previous one.

Decode turns bytes into an unrecovered signature. Recovery resolves every
signature part into a signer address for the signed subdigest. ECDSA
signatures are recovered directly, contract signatures are checked by a
Validator. Trim removes from an encoded signature everything that is not
required to reach its threshold.
*/
package signature
