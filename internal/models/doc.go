// Package models defines the core domain models for Wayfarer.
//
// A Group is a single trip: it owns a day-by-day itinerary
// (TourDay -> Location -> Event), a membership list, a deposit/expense
// ledger, and announcements. Users exist globally and join groups with a
// group-scoped role.
//
// Design principles:
//
//  1. IDs are string UUIDs assigned by the storage layer.
//  2. Relationships use ID strings instead of pointers to avoid cycles.
//  3. Money is decimal.Decimal everywhere; never float64.
//  4. Timestamps are Unix seconds.
package models
