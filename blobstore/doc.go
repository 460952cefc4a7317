// Package blobstore provides the non-volatile storage behind persisted device
// state.
//
// A Store holds small named blobs and replaces them atomically. Persisted
// state is read once at boot and written from the slow context after every
// confirmed preset switch, so implementations favour simplicity over
// throughput. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on the local file system (flash on the device)
//   - MemoryStore: in-process, for tests and the simulator
//   - s3.Store: Amazon S3, for fleets that back up device state
//   - s3.DDBStore: DynamoDB with versioned conditional writes
//   - minio.Store: MinIO and other S3-compatible servers
package blobstore
