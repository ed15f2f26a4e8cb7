// Package models defines the core domain models for High / Low / Buffalo.
//
// # Models
//
//   - Reflection: a dated High / Low / Buffalo entry with a sharing scope and
//     embedded engagement (curiosity reactions, follow-up flag)
//   - User: a registered account
//   - Friend: a trusted user the owner may target in SharedWith
//   - Herd / HerdMember: a named sharing group with owner/member roles
//   - UserSettings: per-user reminder cadence
//
// # Design Principles
//
//  1. Relationships are ID strings, never pointers.
//  2. Engagement is stored as sets of reactor IDs; counts are always derived.
//  3. SharedWith is a list of scope IDs even though clients currently send one.
//  4. JSON field names match the wire format used by the web client.
package models
