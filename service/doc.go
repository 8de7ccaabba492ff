// Package service orchestrates the core components of the engine:
// the book, the write-ahead log, the event outbox, and snapshots.
//
// BookService is the only write entry point. Transports (HTTP,
// websocket) and background jobs never touch the book directly.
package service
