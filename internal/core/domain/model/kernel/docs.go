// Package kernel provides the shared value objects of the order domain.
//
// The package includes:
//   - UUID: the order identifier, wrapping github.com/google/uuid
//   - Price: a positive two-digit decimal amount, wrapping github.com/shopspring/decimal
//
// Both reject their zero values through Validate, so values rebuilt from
// storage or message payloads can be checked before use.
package kernel
