// Package ballotengine implements the Ballot Selection and Validation Engine
// inside the voter-experience context.
//
// The module owns the voter journey for one election: candidate
// categorization, presentation ordering, per-contest selection state with
// synchronous validation, ballot encode/decode/hash, and the
// selecting/reviewing/casting flow with a pre-cast audit branch. It keeps
// business rules in application/domain layers and isolates infrastructure
// concerns behind ports and adapters.
package ballotengine
