// Package provision sequences the controller's network bring-up.
//
// On every boot the sequence is the same: honor a held reset button, try
// the stored credentials in client mode with a bounded number of retries,
// and fall back to the captive configuration portal when neither works.
// Saving credentials through the portal always ends in a reboot so the
// stored-credential fast path is the only path that ever reaches the
// polling loop.
package provision
