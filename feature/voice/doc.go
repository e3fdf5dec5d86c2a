// Package voice adds slide narration. Its voice model and phoneme table are
// heavy bundles fetched lazily from object storage. The feature is optional;
// nothing about the platform fails when narration cannot load.
package voice
