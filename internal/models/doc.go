// Package models defines the core domain models for Billmate.
//
// # Models
//
//   - User: a registered account holder
//   - Bill: a payable obligation, optionally visible to a paired partner
//   - ConnectionCode: a short-lived single-use pairing invitation
//   - SharedConnection: a two-sided pairing between exactly two users
//   - BillActivity: an append-only audit entry for a bill
//   - BillSplit: per-side percentage split for a shared bill
//   - NotificationPreference: per-user reminder configuration
//
// # Design Principles
//
//  1. One canonical in-process representation: the snake_case column shape of
//     the storage layer never leaks above the storage package.
//  2. Avoid circular references: relationships use ID strings, not pointers.
//  3. Timestamps are Unix seconds except Bill.DueDate, which is a calendar
//     date (time-of-day is meaningless for a due date).
package models
