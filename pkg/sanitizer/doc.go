// Package sanitizer normalizes customer input before validation and storage.
//
// All functions are idempotent. Input that cannot be normalized is returned
// trimmed so that validation reports it instead of it being dropped silently.
//
//   - Phone numbers: E.164 (+[country][number]), national numbers read in the default region
//   - Names: collapse whitespace, trim
//   - Emails: trim, lowercase
package sanitizer
