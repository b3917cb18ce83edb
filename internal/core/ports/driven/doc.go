// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Detection pipeline
//
//   - FrameSource: Reads frames from the network camera
//   - Detector: Runs the external object detection model
//   - Actuator: Writes one output code per frame to the sorter
//   - Display: Shows annotated frames and reports the quit key
//
// # Chat pipeline
//
//   - WasteStore: Seed table persistence
//   - VectorIndex: Document and vector storage with similarity search
//   - EmbeddingService: Generates vector embeddings
//   - LLMService: Hosted generative model
//   - PromptStore: User-editable prompt templates
//
// # Shared
//
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
