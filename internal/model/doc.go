// Package model defines the shared data types of the collector.
//
// Conventions:
//   - Quantities: float64, zero when the upstream payload omits the field
//   - Timestamps: raw NSE strings, never reformatted before persistence
//   - Dates: "YYYY-MM-DD" strings in the IST trading-day convention
package model
