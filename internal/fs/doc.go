// Package fs provides a file system abstraction for persisted device state.
//
//   - [FileSystem] covers the handful of operations the local blob store needs.
//   - [LocalFS] is the production implementation on top of package os.
//   - [FaultyFS] injects write, sync, close and rename failures for tests.
//
// Production code uses fs.Default:
//
//	f, err := fs.Default.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
//
// Tests wrap it to simulate worn or full flash:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp", fs.Fault{FailOnSync: true})
//
// Operations take no context.Context. They are short syscalls on the device's
// own flash and run on the slow context only.
package fs
