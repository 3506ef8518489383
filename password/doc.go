// Package password hashes and verifies user passwords with Argon2id.
//
// Hashes are PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<key>
//
// Compare uses the parameters embedded in the hash, so hashes produced under
// older settings keep verifying. NeedsRehash reports when a stored hash should
// be replaced after the next successful login.
//
// The package never stores passwords and never logs them.
package password
