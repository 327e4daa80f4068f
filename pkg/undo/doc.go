// Package undo provides a linear undo history of structural commands with
// nested macros, a history limit and a clean (saved) marker.
package undo
