// Package models defines the core domain models for splitfree.
//
// # Models
//
//   - Group: a set of members sharing expenses
//   - Member: one participant of a group, ordered by join position
//   - Expense: an amount paid by one member and shared by some members
//   - Balance: a member's signed net position in their group
//   - Debt: a recommended transfer derived from the balances
//
// # Sign convention
//
// A negative balance means the member is owed money, a positive balance means
// the member owes money. The balances of a group always sum to exactly zero.
//
// # Design Principles
//
//  1. Money is decimal.Decimal, never float64
//  2. Relationships use ID strings instead of pointers
//  3. Debts are derived data: the whole set for a group is regenerated after
//     every balance change and never edited in place
package models
