// Package services implements the driving port interfaces.
// Services contain the aggregation and ranking logic and orchestrate
// calls to driven ports (adapters).
//
// Services never touch tool storage directly; all I/O goes through the
// driven ports so every service is testable with in-memory fakes.
package services
