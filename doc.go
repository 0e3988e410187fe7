/*
Package walletsig holds what is shared by all walletsig packages.

The wallet configuration tree lives in the topology package, the signature
format in the signature package and the contract signature validator in
x/erc1271.

We pass context.Context through every operation that may block or log. To
do so, walletsig defines the keys used to store shared values in the
context. For every XYZ of type T there exist two functions:

	WithXYZ(Context, T) Context
	GetXYZ(Context) T
*/
package walletsig
