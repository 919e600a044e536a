// Package leaf holds the small terminal behaviors that need no state of
// their own: fixed responses and redirects.
package leaf
