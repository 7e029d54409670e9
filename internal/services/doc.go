// Package services defines the shared error taxonomy for pipeline components.
//
// Every failure a component can surface is tagged with one of the exported
// sentinel errors so the orchestrator and CLI can classify it with errors.Is
// without inspecting message text. Wrap attaches component and operation
// context while preserving the marker and the underlying cause.
package services
