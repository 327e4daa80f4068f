/*
Package session implements document session management and persistence orchestration.

A Manager keeps the open documents of a process, serializes writers per document
while letting readers traverse concurrently, optionally coordinates replicas
through a distributed lock, and persists every successful write to a
DocumentStore.
*/
package session
