// Package domain contains the core entities and value objects for scankiosk.
//
// This package has no dependencies on infrastructure concerns (HTTP, file
// system, logging) and contains only the rules of the scan pipeline.
//
// # Entities
//
//   - [Channel]: The input modality a credential was presented through
//   - [ScanEvent]: One credential presentation, immutable once created
//   - [Outcome]: The remote server's verdict for a presented credential
//   - [HistoryEntry]: One logged attempt, either an Outcome or a Failure
//   - [FacialCapture]: The two-phase accumulation state for facial mode
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
