// Package vm evaluates VM disk blueprints into disk configurations.
//
// This package orchestrates the low-level components (loader, disk builder,
// package compiler, resolvers) to provide one high-level operation:
//   - Evaluate: run every disk intent of a blueprint through a fresh builder
//     session and finalize the boot selection
//
// Error Handling:
//
// Evaluation stops at the first failing intent. Errors carry the intent's
// field path (disks[2]) and wrap the builder's sentinel errors, so callers
// can match them with errors.Is.
//
// Context Support:
//
// Evaluate accepts a context.Context that is checked before each intent and
// passed to the resolvers.
package vm
