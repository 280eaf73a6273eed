// Package utils provides common utility functions for the stock-sync application.
// It includes helper functions for type conversion of loosely-typed source row
// values (strings, numbers, decimals) and other shared logic that doesn't fit
// into domain-specific packages.
package utils
