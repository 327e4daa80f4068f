/*
Package ports defines the driven ports (interfaces) of the Strata document engine.

These interfaces decouple the tree core from external observers and from
persistence, allowing documents to live in memory, on disk, in Redis or in a Loam
repository.

# Key Interfaces

  - GraphListener: observer notified before and after every structural mutation.
  - Refresher: receives the dirty region computed after a node is detached.
  - DocumentStore: persists and loads document snapshots.
  - DocumentLoader: read-only source of document snapshots (e.g. Loam, memory).
  - DistributedLocker: distributed locking for concurrent document access.
*/
package ports
