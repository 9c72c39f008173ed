// Package utils provides common utility functions for tablesync.
// It holds the strict scalar conversions shared by the entity model and the codec:
// each conversion reports an error instead of silently truncating or zeroing a value.
package utils
