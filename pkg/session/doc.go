// Package session stores in-memory conversation transcripts keyed by session ID.
//
// Invariants:
// - A transcript only ever grows; reset removes the session outright.
// - GetOrCreate hands out a detached copy; changes become visible only after Save.
// - Concurrent saves for the same ID resolve to the last writer.
//
// Usage:
//
//	store := session.NewStore()
//	sess := store.GetOrCreate("session:1")
//	sess.AppendUser("hello")
//	sess.AppendAssistant("hi there")
//	store.Save(sess)
package session
