/*
Package das runs data availability sampling over the blocks announced by a full node.

For every new block header the DASer picks a handful of random cells of the block's
erasure-coded data matrix and retrieves them, first from the cell DHT and then, for the cells no
peer holds, from the full node's RPC. Cells retrieved over RPC are published back into the DHT so
other light nodes can find them. The sampled cells are verified against the row commitments
carried by the header. The amount of verified cells gives the confidence that the whole block is
available: every verified sample halves the chance of the block being withheld, so n verified
samples give a confidence of 100*(1-2^-n) percent.

Confidence is stored per block in the ConfidenceStore and is exposed in a packed form,
(block << 32) | floor(confidence * 10^7), by SerializeConfidence.

Once a block is confidently available and the node follows an application, the DASer additionally
fetches and verifies every cell of the application's rows. Finally, the block is announced on the
Notifications channel for downstream consumers.
*/
package das
