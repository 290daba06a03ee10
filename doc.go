// Package stm implements a word-based software transactional memory
// runtime using write-back, encounter-time locking (WB-ETL): a shared
// striped lock table plus a monotonic global version clock give
// optimistic concurrency control over word-sized memory locations,
// with automatic conflict detection, rollback and retry.
//
// The design follows the classic TL2/TinySTM family of algorithms:
// locks are taken at the moment of first write (encounter time, not
// commit time), writes are buffered in a per-transaction write-back log
// and only published to memory at commit, and reads are validated
// against a snapshot interval that is extended (rather than aborted)
// whenever possible.
package stm
