// Package domain defines the core business entities for pilah.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - WasteItem: A seed row describing a kind of waste and its category
//   - Detection: One bounding box returned by the object detector
//   - OutputCode: The single byte sent to the sorting actuator per frame
//   - IndexedDocument: A retrievable text built from the seed store
//   - Answer: A tagged chatbot answer (success, no information, error)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
