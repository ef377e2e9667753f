// Package identity manages named nostr identities: a durable registry of
// ncryptsec-encrypted keys, a session cache of unlocked keys, and the choice
// of which unlocked identity signs for the process.
package identity
