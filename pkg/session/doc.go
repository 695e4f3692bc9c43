/*
Package session serialises operations against the same target server.

A Manager keeps one reference-counted mutex per target key in memory and, when
configured with a ports.DistributedLocker, also holds a distributed lock so that
installer replicas on different hosts never run against the same target at once.
*/
package session
