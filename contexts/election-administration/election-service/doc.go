// Package electionservice implements the admin console inside the
// election-administration context.
//
// The module owns election event configuration, the voting status lifecycle
// (open/pause/close with outbox-backed status events), and ballot style
// publication per voting area. The ballot style query by tenant, election and
// area is the interface the voter-facing engine loads its ballots through.
package electionservice
