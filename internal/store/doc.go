// Package store defines the client contract of the remote document store:
// snapshot subscriptions plus create/update/delete/get keyed by opaque ids.
//
// # Overview
//
// The package provides:
//  1. The Store and Subscription interfaces consumed by the mirror and the
//     mutation service.
//  2. A JSON codec (EncodeFields/DecodeFields) that round-trips field maps
//     while preserving the temporal type, so every backend delivers
//     identically typed documents.
//
// Concrete backends live in the subpackages memory, redis and postgres.
//
// # Error Handling
//
// Absent documents are reported as common.ErrorNotFound. Subscription
// failures arrive on the subscription's error channel and never panic;
// callers decide whether to resubscribe.
package store
