// Package ports defines the interfaces that connect the application layer to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [Validator]: Sends a presented credential to the access-control server
//   - [HistoryRepository]: Persists the append-only attempt log
//   - [Presenter]: Shows results, cues and notifications to the operator
//   - [Source]: An input channel feeding presentations into a [ScanSink]
//   - [NFCSession]: A hardware NFC reader session
//   - [Clock]: Time and timers, replaceable in tests
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (HTTP, file system, devices, zerolog, console).
package ports
