// Package abiexport turns compiled contract artifacts into export tables:
// every ABI item gets a unique, collision-free name that generated source
// modules can use as an identifier.
package abiexport
