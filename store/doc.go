// Package store persists the settings record.
//
// FileStore keeps a single JSON document next to a BLAKE2b-256 digest of the
// record so a truncated or hand-mangled file is detected on load rather than
// half-applied. Async wraps any settings.Store so that saving never blocks
// the caller: writes are queued, coalesced to the latest record and
// performed on a background goroutine.
//
//	fs := store.NewFileStore(path)
//	st := store.NewAsync(fs)
//	defer st.Close()
//	bank := settings.NewBank(st)
package store
