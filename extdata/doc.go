// Package extdata implements the on-chain external-data module.
//
// The module owns a single storage slot holding at most one value of
// the configured type per block:
//
//   - Empty -> Set via the privileged set call, accepted only from the
//     none origin and only once per block (ErrAlreadySet otherwise).
//   - Set -> Empty unconditionally in OnInitialize, at the start of
//     every block.
//
// On the consensus side the module turns the block's inherent-data bag
// into the set call (CreateInherent), recognises that call
// (IsInherent), and reports that a block lacking the inherent must be
// rejected whenever the bag offered decodable data
// (IsInherentRequired).
//
// A missing envelope and an envelope that fails to decode are treated
// identically: both mean "no data".
package extdata
