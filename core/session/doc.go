// Package session keeps the working state of reconciliation sessions in
// memory: at most one challan and an append-only log of scanned stickers.
//
// Sessions are independent. Writes to one session are serialized by that
// session's lock, and every value handed out is a copy, so a caller may
// run reconciliation on a snapshot while stickers keep arriving.
//
// Nothing here is persisted; a restart starts from an empty store.
//
// # Usage
//
//	store := session.NewStore(cfg.Session)
//	id, _ := store.Create()
//	_ = store.SetChallan(id, challan)
//	_, _ = store.AppendStickers(id, sticker)
//	snap, _ := store.Snapshot(id)
//	report, err := reconcile.Reconcile(snap.Challan, snap.Stickers)
package session
