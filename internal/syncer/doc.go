// Package syncer implements the reconciliation engine: it enumerates a
// remote playlist, snapshots the local directory, fetches items missing
// locally through the acquisition client, and maintains the optional m3u
// index. Targets are processed sequentially; a failing target aborts
// only that target, a failing item fetch aborts only that item.
package syncer
