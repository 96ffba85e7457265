// Package assets manages the lifetime of voice payloads.
//
// # Overview
//
// Voice records never hold audio bytes. They hold a Handle, a key in a
// core.Store allocated before the record is inserted and released when the
// record is deleted. Because the record store and the blob store cannot
// commit together, callers pair every failed insert with a Release, and
// Audit finds what a crash between the two steps leaves behind.
//
// Key Types
//
//   - Handle: "voices/<yyyy>/<mm>/<dd>/<uuid>".
//   - Manager: Allocate, Open, Release, PresignURL and Audit over a
//     core.Store.
//   - Report: dangling and orphaned handles found by Audit.
//
// Typical Usage
//
//	m := assets.NewManager(store, assets.WithMetrics(met), assets.WithLogger(log))
//	h, err := m.Allocate(ctx, payload, "audio/wav")
//	...
//	if err := insert(h); err != nil {
//		_ = m.Release(ctx, h)
//	}
package assets
