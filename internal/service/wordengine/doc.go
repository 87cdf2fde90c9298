// Package wordengine produces practice word lists. It owns the built-in
// Spanish dictionary, the difficulty scorer and the generator that mixes
// persisted words with dictionary words it stores on the fly.
package wordengine
